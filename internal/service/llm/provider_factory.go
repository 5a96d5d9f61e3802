package llm

import (
	"fmt"
	"log/slog"

	"stride/internal/config"
	domainllm "stride/internal/domain/services/llm"
	"stride/internal/service/llm/providers"
	"stride/internal/service/llm/providers/anthropic"
	"stride/internal/service/llm/providers/openai"
)

// Transport is what the factory hands out: a model transport that can also
// list its models.
type Transport interface {
	domainllm.Transport
	domainllm.ModelLister
}

// ProviderFactory creates transports from configuration.
type ProviderFactory struct {
	config *config.Config
	logger *slog.Logger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, logger *slog.Logger) *ProviderFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderFactory{
		config: cfg,
		logger: logger,
	}
}

// GetTransport returns a transport for the given provider name
//
// Supported providers:
//   - "anthropic" - native Messages API
//   - "openai" - OpenAI chat completions
//   - "openrouter" - OpenRouter (OpenAI-compatible)
//   - "ollama" - local Ollama server (OpenAI-compatible, no key)
func (f *ProviderFactory) GetTransport(providerName string) (Transport, error) {
	opts := providers.ClientOptions{
		Timeout:           f.config.RequestTimeout,
		RequestsPerSecond: f.config.RequestsPerSecond,
		Logger:            f.logger,
	}

	// LLM_BASE_URL targets the configured provider only.
	baseURL := ""
	if providerName == f.config.Provider {
		baseURL = f.config.BaseURL
	}

	switch providerName {
	case config.ProviderAnthropic:
		if f.config.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		transport, err := anthropic.NewTransport(anthropic.Config{
			APIKey:  f.config.AnthropicAPIKey,
			BaseURL: baseURL,
			Client:  opts,
		})
		if err != nil {
			return nil, err
		}
		return transport, nil

	case config.ProviderOpenAI, config.ProviderOpenRouter, config.ProviderOllama:
		backend, _ := openai.BackendByName(providerName)
		key := f.keyFor(providerName)
		if backend.RequiresKey && key == "" {
			return nil, fmt.Errorf("%s API key not set", providerName)
		}
		transport, err := openai.NewTransport(openai.Config{
			Backend: backend,
			APIKey:  key,
			BaseURL: baseURL,
			Client:  opts,
		})
		if err != nil {
			return nil, err
		}
		return transport, nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func (f *ProviderFactory) keyFor(providerName string) string {
	switch providerName {
	case config.ProviderOpenAI:
		return f.config.OpenAIAPIKey
	case config.ProviderOpenRouter:
		return f.config.OpenRouterAPIKey
	default:
		return ""
	}
}

// NewTransport builds the transport for the configured provider.
func NewTransport(cfg *config.Config, logger *slog.Logger) (Transport, error) {
	return NewProviderFactory(cfg, logger).GetTransport(cfg.Provider)
}
