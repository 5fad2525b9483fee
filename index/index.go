// Package index provides a keyed entity view over a hashtable.Table.
//
// An Index adds identity semantics the raw table does not enforce: Add refuses
// an existing key, Update refuses a missing one. Every result is a boolean or
// an optional; lookup misses are never errors at this layer.
package index

import "github.com/hupe1980/roster/hashtable"

// Index maps entity keys to entities.
type Index[K comparable, E any] struct {
	table  *hashtable.Table[K, E]
	keyOf  func(E) K
	optFns []hashtable.Option[K]
}

// New creates an empty Index. keyOf extracts the identity of an entity; the
// options configure the underlying table (capacity, hasher, key validator).
func New[K comparable, E any](keyOf func(E) K, optFns ...hashtable.Option[K]) *Index[K, E] {
	return &Index[K, E]{
		table:  hashtable.New[K, E](optFns...),
		keyOf:  keyOf,
		optFns: optFns,
	}
}

// KeyOf returns the key of e.
func (idx *Index[K, E]) KeyOf(e E) K {
	return idx.keyOf(e)
}

// ValidKey reports whether key can be stored at all.
func (idx *Index[K, E]) ValidKey(key K) bool {
	return idx.table.ValidKey(key)
}

// Add inserts e if its key is not indexed yet. It returns false for a
// duplicate or an invalid key; the stored entity is left unchanged.
func (idx *Index[K, E]) Add(e E) bool {
	key := idx.keyOf(e)
	if idx.table.ContainsKey(key) {
		return false
	}
	return idx.table.Insert(key, e) == nil
}

// Update replaces the entity stored under e's key. It returns false and
// inserts nothing if the key is not indexed.
func (idx *Index[K, E]) Update(e E) bool {
	key := idx.keyOf(e)
	if !idx.table.ContainsKey(key) {
		return false
	}
	return idx.table.Insert(key, e) == nil
}

// Put inserts or replaces e. It returns false only for an invalid key.
func (idx *Index[K, E]) Put(e E) bool {
	return idx.table.Insert(idx.keyOf(e), e) == nil
}

// Remove deletes the entity stored under key.
func (idx *Index[K, E]) Remove(key K) bool {
	return idx.table.Delete(key)
}

// Find returns the entity stored under key.
func (idx *Index[K, E]) Find(key K) (E, bool) {
	return idx.table.TryGet(key)
}

// Exists reports whether key is indexed.
func (idx *Index[K, E]) Exists(key K) bool {
	return idx.table.ContainsKey(key)
}

// All returns every entity in table iteration order.
func (idx *Index[K, E]) All() []E {
	return idx.table.Values()
}

// Filter returns the entities for which keep returns true. It scans the
// whole index.
func (idx *Index[K, E]) Filter(keep func(E) bool) []E {
	var out []E
	for _, e := range idx.table.All() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of indexed entities.
func (idx *Index[K, E]) Count() int {
	return idx.table.Len()
}

// Clear removes every entity.
func (idx *Index[K, E]) Clear() {
	idx.table.Clear()
}

// Replace swaps the whole content for es. Later entities win over earlier
// ones with the same key; entities with invalid keys are skipped. It returns
// the number of entities that were not stored as distinct entries.
//
// The new table is built before the old one is dropped, so a panic in keyOf
// leaves the previous content in place.
func (idx *Index[K, E]) Replace(es []E) int {
	table := hashtable.New[K, E](idx.optFns...)
	for _, e := range es {
		_ = table.Insert(idx.keyOf(e), e)
	}
	idx.table = table
	return len(es) - table.Len()
}

// Stats returns the shape of the underlying table.
func (idx *Index[K, E]) Stats() hashtable.Stats {
	return idx.table.Stats()
}
