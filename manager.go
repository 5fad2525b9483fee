package roster

import (
	"context"
	"time"

	"github.com/hupe1980/roster/hashtable"
	"github.com/hupe1980/roster/index"
	"github.com/hupe1980/roster/store"
)

// Manager keeps an in-memory index consistent with a durable store.
//
// Every mutation is written to the store first and mirrored into the index
// only after the store accepted it. Reads are served from the index alone and
// may be stale relative to writers that bypass this Manager.
//
// Manager is not safe for concurrent use; see Guarded.
type Manager[K comparable, E any] struct {
	store   store.Store[K, E]
	index   *index.Index[K, E]
	loaded  bool
	metrics MetricsCollector
	logger  *Logger
}

// New creates a Manager over st and idx. Neither is owned by the Manager.
// Call Load before trusting reads.
func New[K comparable, E any](st store.Store[K, E], idx *index.Index[K, E], optFns ...Option) *Manager[K, E] {
	o := applyOptions(optFns)
	return &Manager[K, E]{
		store:   st,
		index:   idx,
		metrics: o.metricsCollector,
		logger:  o.logger,
	}
}

// Load fetches every record from the store and replaces the index content
// with it. If the fetch fails the index keeps its previous content and the
// returned error matches ErrDurableLoadFailed. Records sharing a key resolve
// to the last one fetched.
func (m *Manager[K, E]) Load(ctx context.Context) error {
	start := time.Now()

	records, err := m.store.FetchAll(ctx)
	if err != nil {
		err = &DurableError{Op: OpLoad, cause: err}
		m.metrics.RecordLoad(m.index.Count(), time.Since(start), err)
		m.logger.LogLoad(ctx, 0, 0, err)
		return err
	}

	dups := m.index.Replace(records)
	m.loaded = true

	m.metrics.RecordLoad(m.index.Count(), time.Since(start), nil)
	m.logger.LogLoad(ctx, m.index.Count(), dups, nil)
	return nil
}

// Loaded reports whether at least one Load succeeded.
func (m *Manager[K, E]) Loaded() bool {
	return m.loaded
}

// Add stores e and indexes it. It returns false without touching the store
// if e's key is already indexed.
func (m *Manager[K, E]) Add(ctx context.Context, e E) (bool, error) {
	key := m.index.KeyOf(e)
	if !m.index.ValidKey(key) {
		return false, ErrInvalidKey
	}
	if m.index.Exists(key) {
		return false, nil
	}

	start := time.Now()
	err := m.store.Insert(ctx, e)
	if err != nil {
		err = &DurableError{Op: OpAdd, Key: key, cause: err}
	} else {
		m.index.Add(e)
	}

	m.metrics.RecordAdd(time.Since(start), err)
	m.logger.LogAdd(ctx, key, err)
	return err == nil, err
}

// Update stores e over the existing record and mirrors it into the index.
// It returns false without touching the store if e's key is not indexed.
func (m *Manager[K, E]) Update(ctx context.Context, e E) (bool, error) {
	key := m.index.KeyOf(e)
	if !m.index.Exists(key) {
		return false, nil
	}

	start := time.Now()
	err := m.store.Update(ctx, e)
	if err != nil {
		err = &DurableError{Op: OpUpdate, Key: key, cause: err}
	} else {
		m.index.Update(e)
	}

	m.metrics.RecordUpdate(time.Since(start), err)
	m.logger.LogUpdate(ctx, key, err)
	return err == nil, err
}

// Delete removes key from the store and the index. It returns false without
// touching the store if key is not indexed.
func (m *Manager[K, E]) Delete(ctx context.Context, key K) (bool, error) {
	if !m.index.Exists(key) {
		return false, nil
	}

	start := time.Now()
	err := m.store.Delete(ctx, key)
	if err != nil {
		err = &DurableError{Op: OpDelete, Key: key, cause: err}
	} else {
		m.index.Remove(key)
	}

	m.metrics.RecordDelete(time.Since(start), err)
	m.logger.LogDelete(ctx, key, err)
	return err == nil, err
}

// Save adds e if its key is not indexed and updates it otherwise.
// created reports which of the two happened.
func (m *Manager[K, E]) Save(ctx context.Context, e E) (created bool, err error) {
	if m.index.Exists(m.index.KeyOf(e)) {
		_, err = m.Update(ctx, e)
		return false, err
	}
	return m.Add(ctx, e)
}

// Find returns the indexed entity for key.
func (m *Manager[K, E]) Find(key K) (E, bool) {
	e, ok := m.index.Find(key)
	m.metrics.RecordFind(ok)
	return e, ok
}

// Exists reports whether key is indexed.
func (m *Manager[K, E]) Exists(key K) bool {
	return m.index.Exists(key)
}

// All returns every indexed entity in no particular order.
func (m *Manager[K, E]) All() []E {
	return m.index.All()
}

// Filter returns the indexed entities for which keep returns true.
func (m *Manager[K, E]) Filter(keep func(E) bool) []E {
	return m.index.Filter(keep)
}

// Count returns the number of indexed entities.
func (m *Manager[K, E]) Count() int {
	return m.index.Count()
}

// Stats returns the shape of the index's hash table.
func (m *Manager[K, E]) Stats() hashtable.Stats {
	return m.index.Stats()
}
