package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-memory Store for tests and ephemeral setups.
// Thread-safe for concurrent reads and writes.
type MemoryStore[K comparable, E any] struct {
	mu    sync.RWMutex
	keyOf func(E) K
	data  map[K]E
	order []K
}

// Compile-time check.
var _ Store[int, struct{}] = (*MemoryStore[int, struct{}])(nil)

// NewMemoryStore creates an empty MemoryStore. Seed entities, if any, are
// inserted as-is; later duplicates replace earlier ones.
func NewMemoryStore[K comparable, E any](keyOf func(E) K, seed ...E) *MemoryStore[K, E] {
	m := &MemoryStore[K, E]{
		keyOf: keyOf,
		data:  make(map[K]E, len(seed)),
	}
	for _, e := range seed {
		k := keyOf(e)
		if _, ok := m.data[k]; !ok {
			m.order = append(m.order, k)
		}
		m.data[k] = e
	}
	return m
}

// FetchAll returns every entity in insertion order.
func (m *MemoryStore[K, E]) FetchAll(ctx context.Context) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]E, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.data[k])
	}
	return out, nil
}

// Insert stores e or returns ErrAlreadyExists.
func (m *MemoryStore[K, E]) Insert(ctx context.Context, e E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.keyOf(e)
	if _, ok := m.data[k]; ok {
		return ErrAlreadyExists
	}
	m.data[k] = e
	m.order = append(m.order, k)
	return nil
}

// Update replaces e or returns ErrNotFound.
func (m *MemoryStore[K, E]) Update(ctx context.Context, e E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.keyOf(e)
	if _, ok := m.data[k]; !ok {
		return ErrNotFound
	}
	m.data[k] = e
	return nil
}

// Delete removes key or returns ErrNotFound.
func (m *MemoryStore[K, E]) Delete(ctx context.Context, key K) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	m.order = slices.DeleteFunc(m.order, func(k K) bool { return k == key })
	return nil
}

// Get returns the stored entity for key. It bypasses any cache and is meant
// for assertions in tests.
func (m *MemoryStore[K, E]) Get(key K) (E, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.data[key]
	return e, ok
}

// Len returns the number of stored entities.
func (m *MemoryStore[K, E]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
