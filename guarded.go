package roster

import (
	"context"
	"sync"

	"github.com/hupe1980/roster/hashtable"
)

// Guarded serializes access to a Manager for hosts with concurrent callers.
// Mutations and Load take the write lock; reads share the read lock.
type Guarded[K comparable, E any] struct {
	mu sync.RWMutex
	m  *Manager[K, E]
}

// NewGuarded wraps m. m must not be used directly afterwards.
func NewGuarded[K comparable, E any](m *Manager[K, E]) *Guarded[K, E] {
	return &Guarded[K, E]{m: m}
}

// Load calls Manager.Load under the write lock. Readers block until it
// returns, so they never observe a half-loaded index.
func (g *Guarded[K, E]) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.Load(ctx)
}

// Add calls Manager.Add under the write lock.
func (g *Guarded[K, E]) Add(ctx context.Context, e E) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.Add(ctx, e)
}

// Update calls Manager.Update under the write lock.
func (g *Guarded[K, E]) Update(ctx context.Context, e E) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.Update(ctx, e)
}

// Delete calls Manager.Delete under the write lock.
func (g *Guarded[K, E]) Delete(ctx context.Context, key K) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.Delete(ctx, key)
}

// Save calls Manager.Save under the write lock.
func (g *Guarded[K, E]) Save(ctx context.Context, e E) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.Save(ctx, e)
}

// Find calls Manager.Find under the read lock. Find only records metrics,
// and the collector is safe for concurrent use.
func (g *Guarded[K, E]) Find(key K) (E, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.m.Find(key)
}

// Exists reports whether key is indexed.
func (g *Guarded[K, E]) Exists(key K) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.m.Exists(key)
}

// All returns every indexed entity.
func (g *Guarded[K, E]) All() []E {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.m.All()
}

// Filter returns the indexed entities for which keep returns true.
// keep runs under the read lock and must not call back into g.
func (g *Guarded[K, E]) Filter(keep func(E) bool) []E {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.m.Filter(keep)
}

// Count returns the number of indexed entities.
func (g *Guarded[K, E]) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.m.Count()
}

// Loaded reports whether a Load has succeeded.
func (g *Guarded[K, E]) Loaded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.m.Loaded()
}

// Stats returns the underlying table statistics.
func (g *Guarded[K, E]) Stats() hashtable.Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.m.Stats()
}
