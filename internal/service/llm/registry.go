package llm

import (
	"fmt"
	"sync"
)

// ProviderRegistry routes model strings to transports.
// Uses ParseModel to pick the provider, then ProviderFactory to create instances.
type ProviderRegistry struct {
	factory         *ProviderFactory
	defaultProvider string
	cache           map[string]Transport
	mu              sync.RWMutex
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry(factory *ProviderFactory, defaultProvider string) *ProviderRegistry {
	return &ProviderRegistry{
		factory:         factory,
		defaultProvider: defaultProvider,
		cache:           make(map[string]Transport),
	}
}

// Resolve parses modelStr and returns the transport that serves it along with
// the provider-local model id.
func (r *ProviderRegistry) Resolve(modelStr string) (Transport, *ModelInfo, error) {
	info, err := ParseModel(modelStr, r.defaultProvider)
	if err != nil {
		return nil, nil, err
	}
	transport, err := r.GetProvider(info.Provider)
	if err != nil {
		return nil, nil, err
	}
	return transport, info, nil
}

// GetProvider returns the transport for the given provider name, creating and
// caching it on first use.
func (r *ProviderRegistry) GetProvider(provider string) (Transport, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	// Fast path: cache hit under read lock
	r.mu.RLock()
	if cached, exists := r.cache[provider]; exists {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have created it while we waited for the lock
	if cached, exists := r.cache[provider]; exists {
		return cached, nil
	}

	transport, err := r.factory.GetTransport(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider '%s': %w", provider, err)
	}
	r.cache[provider] = transport
	return transport, nil
}

// Validate checks if the factory is properly configured.
// Should be called at startup to fail fast if misconfigured.
func (r *ProviderRegistry) Validate() error {
	if r.factory == nil {
		return fmt.Errorf("provider factory is not configured")
	}
	_, err := r.GetProvider(r.defaultProvider)
	return err
}
