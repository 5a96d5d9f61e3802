package plan

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stride/internal/domain"
)

// SessionRegistry tracks generations by ID.
//
// Finished generations are kept for the retention period so clients can
// still read their result, then removed by Cleanup. Running generations are
// never removed.
type SessionRegistry struct {
	generations map[string]*Generation
	mu          sync.RWMutex

	retention time.Duration
	now       func() time.Time
}

// NewSessionRegistry creates a registry. A nil clock uses time.Now.
func NewSessionRegistry(retention time.Duration, now func() time.Time) *SessionRegistry {
	if now == nil {
		now = time.Now
	}
	return &SessionRegistry{
		generations: make(map[string]*Generation),
		retention:   retention,
		now:         now,
	}
}

// Register adds a generation. It fails if the ID is already taken.
func (r *SessionRegistry) Register(g *Generation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generations[g.ID()]; exists {
		return &domain.ConflictError{Message: fmt.Sprintf("generation %s already registered", g.ID())}
	}
	r.generations[g.ID()] = g
	return nil
}

// Get retrieves a generation.
// Returns domain.ErrNotFound when unknown or already cleaned up.
func (r *SessionRegistry) Get(id string) (*Generation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.generations[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("generation %s not found", id)}
	}
	return g, nil
}

// Remove removes a generation. Safe to call for unknown IDs.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.generations, id)
}

// Count returns the number of tracked generations.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.generations)
}

// IDs returns the tracked generation IDs, sorted.
func (r *SessionRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.generations))
	for id := range r.generations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cleanup removes generations that finished more than the retention period
// ago and returns how many were removed.
func (r *SessionRegistry) Cleanup() int {
	cutoff := r.now().Add(-r.retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, g := range r.generations {
		if g.finishedSince(cutoff) {
			delete(r.generations, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (r *SessionRegistry) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cleanup()
		}
	}
}
