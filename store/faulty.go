package store

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is the default error returned by a FaultyStore rule.
var ErrInjected = errors.New("store: injected fault")

// Op names a Store method for fault rules.
type Op string

// Store operations.
const (
	OpFetchAll Op = "fetch_all"
	OpInsert   Op = "insert"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
)

// FaultyStore wraps a Store and fails selected operations on demand.
// It also counts calls per operation, which lets tests assert that a
// method was never reached.
type FaultyStore[K comparable, E any] struct {
	inner Store[K, E]

	mu     sync.Mutex
	faults map[Op]error
	calls  map[Op]int
}

// NewFaultyStore wraps inner. No faults are active initially.
func NewFaultyStore[K comparable, E any](inner Store[K, E]) *FaultyStore[K, E] {
	return &FaultyStore[K, E]{
		inner:  inner,
		faults: make(map[Op]error),
		calls:  make(map[Op]int),
	}
}

// Fail makes every subsequent call of op return err (ErrInjected if nil)
// without reaching the wrapped store.
func (f *FaultyStore[K, E]) Fail(op Op, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = err
}

// Heal clears the rule for op.
func (f *FaultyStore[K, E]) Heal(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.faults, op)
}

// Calls returns how many times op was invoked, failed calls included.
func (f *FaultyStore[K, E]) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyStore[K, E]) check(op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.faults[op]
}

// FetchAll implements Store.
func (f *FaultyStore[K, E]) FetchAll(ctx context.Context) ([]E, error) {
	if err := f.check(OpFetchAll); err != nil {
		return nil, err
	}
	return f.inner.FetchAll(ctx)
}

// Insert implements Store.
func (f *FaultyStore[K, E]) Insert(ctx context.Context, e E) error {
	if err := f.check(OpInsert); err != nil {
		return err
	}
	return f.inner.Insert(ctx, e)
}

// Update implements Store.
func (f *FaultyStore[K, E]) Update(ctx context.Context, e E) error {
	if err := f.check(OpUpdate); err != nil {
		return err
	}
	return f.inner.Update(ctx, e)
}

// Delete implements Store.
func (f *FaultyStore[K, E]) Delete(ctx context.Context, key K) error {
	if err := f.check(OpDelete); err != nil {
		return err
	}
	return f.inner.Delete(ctx, key)
}
