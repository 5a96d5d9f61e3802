package llm

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainllm "stride/internal/domain/services/llm"
)

// ModelCatalog caches a provider's model list for a fixed TTL.
// Concurrent callers during a refresh share one upstream request.
type ModelCatalog struct {
	lister domainllm.ModelLister
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	models    []string
	fetchedAt time.Time
}

// NewModelCatalog creates a catalog. A nil now uses time.Now.
func NewModelCatalog(lister domainllm.ModelLister, ttl time.Duration, now func() time.Time) *ModelCatalog {
	if now == nil {
		now = time.Now
	}
	return &ModelCatalog{
		lister: lister,
		ttl:    ttl,
		now:    now,
	}
}

// Models returns the cached list, refreshing it once it is older than the TTL.
// When a refresh fails and an older list exists, the older list is returned
// together with the error.
func (c *ModelCatalog) Models(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	cached, fetchedAt := c.models, c.fetchedAt
	c.mu.RUnlock()

	if cached != nil && c.now().Sub(fetchedAt) < c.ttl {
		return copyModels(cached), nil
	}

	v, err, _ := c.group.Do("models", func() (interface{}, error) {
		// A refresh that finished just before this call started is reused.
		c.mu.RLock()
		fresh := c.models != nil && c.now().Sub(c.fetchedAt) < c.ttl
		models := c.models
		c.mu.RUnlock()
		if fresh {
			return models, nil
		}

		models, err := c.lister.ListModels(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.models = models
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return models, nil
	})
	if err != nil {
		if cached != nil {
			return copyModels(cached), err
		}
		return nil, err
	}
	return copyModels(v.([]string)), nil
}

// Invalidate forces the next Models call to refetch.
func (c *ModelCatalog) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

func copyModels(models []string) []string {
	out := make([]string, len(models))
	copy(out, models)
	return out
}
