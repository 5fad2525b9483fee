package hashtable

import "iter"

// LoadFactorThreshold is the size/capacity ratio at which the next Insert
// grows the table.
const LoadFactorThreshold = 0.75

// Entry is a key-value pair stored in a Table.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// bucket holds one chain. The head of the chain is the last element of the
// slice, so prepending is an append.
type bucket[K comparable, V any] []Entry[K, V]

// Table is a hash table with separate chaining and automatic doubling.
//
// The zero value is not usable; construct tables with New.
type Table[K comparable, V any] struct {
	buckets   []bucket[K, V]
	size      int
	hasher    Hasher[K]
	validator func(K) bool
	resizes   int
}

// Stats describes the shape of a Table at a point in time.
type Stats struct {
	Size         int
	Capacity     int
	UsedBuckets  int
	LongestChain int
	Resizes      int
	LoadFactor   float64
}

// New creates an empty Table.
func New[K comparable, V any](optFns ...Option[K]) *Table[K, V] {
	o := options[K]{capacity: DefaultCapacity}
	for _, fn := range optFns {
		fn(&o)
	}

	if o.capacity < 1 {
		o.capacity = 1
	}
	if o.hasher == nil {
		o.hasher = ComparableHasher[K]()
	}
	if o.validator == nil {
		o.validator = func(k K) bool { return !isNilKey(k) }
	}

	return &Table[K, V]{
		buckets:   make([]bucket[K, V], o.capacity),
		hasher:    o.hasher,
		validator: o.validator,
	}
}

// ValidKey reports whether key passes the table's key validator.
func (t *Table[K, V]) ValidKey(key K) bool {
	return t.validator(key)
}

func (t *Table[K, V]) index(key K, capacity int) int {
	return int(t.hasher(key) % uint64(capacity))
}

// find returns the bucket index and the position of key inside its chain,
// or -1 if absent.
func (t *Table[K, V]) find(key K) (int, int) {
	bi := t.index(key, len(t.buckets))
	b := t.buckets[bi]
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Key == key {
			return bi, i
		}
	}
	return bi, -1
}

// Insert stores value under key. An existing key keeps its position and gets
// the new value; a new key becomes the head of its chain.
//
// If the table is at or above LoadFactorThreshold, it grows before the
// insertion is applied.
func (t *Table[K, V]) Insert(key K, value V) error {
	if !t.validator(key) {
		return ErrInvalidKey
	}

	if float64(t.size)/float64(len(t.buckets)) >= LoadFactorThreshold {
		t.resize()
	}

	bi, pos := t.find(key)
	if pos >= 0 {
		t.buckets[bi][pos].Value = value
		return nil
	}

	t.buckets[bi] = append(t.buckets[bi], Entry[K, V]{Key: key, Value: value})
	t.size++
	return nil
}

// Search returns the value stored under key.
func (t *Table[K, V]) Search(key K) (V, error) {
	var zero V
	if !t.validator(key) {
		return zero, ErrInvalidKey
	}
	bi, pos := t.find(key)
	if pos < 0 {
		return zero, ErrKeyNotFound
	}
	return t.buckets[bi][pos].Value, nil
}

// TryGet returns the value stored under key and whether it was present.
func (t *Table[K, V]) TryGet(key K) (V, bool) {
	var zero V
	if !t.validator(key) {
		return zero, false
	}
	bi, pos := t.find(key)
	if pos < 0 {
		return zero, false
	}
	return t.buckets[bi][pos].Value, true
}

// ContainsKey reports whether key is present.
func (t *Table[K, V]) ContainsKey(key K) bool {
	_, ok := t.TryGet(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (t *Table[K, V]) Delete(key K) bool {
	if !t.validator(key) {
		return false
	}
	bi, pos := t.find(key)
	if pos < 0 {
		return false
	}
	var zero Entry[K, V]
	b := t.buckets[bi]
	last := len(b) - 1
	copy(b[pos:], b[pos+1:])
	b[last] = zero // drop references held by the vacated slot
	t.buckets[bi] = b[:last]
	t.size--
	return true
}

// All iterates over every pair in bucket order, each chain head first.
// The table must not be modified during iteration.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, b := range t.buckets {
			for i := len(b) - 1; i >= 0; i-- {
				if !yield(b[i].Key, b[i].Value) {
					return
				}
			}
		}
	}
}

// Values returns every value in iteration order.
func (t *Table[K, V]) Values() []V {
	values := make([]V, 0, t.size)
	for _, v := range t.All() {
		values = append(values, v)
	}
	return values
}

// Entries returns every key-value pair in iteration order.
func (t *Table[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, t.size)
	for k, v := range t.All() {
		entries = append(entries, Entry[K, V]{Key: k, Value: v})
	}
	return entries
}

// Len returns the number of stored pairs.
func (t *Table[K, V]) Len() int { return t.size }

// IsEmpty reports whether the table holds no pairs.
func (t *Table[K, V]) IsEmpty() bool { return t.size == 0 }

// Capacity returns the current bucket count.
func (t *Table[K, V]) Capacity() int { return len(t.buckets) }

// LoadFactor returns size / capacity.
func (t *Table[K, V]) LoadFactor() float64 {
	return float64(t.size) / float64(len(t.buckets))
}

// Clear removes every pair. The capacity is kept.
func (t *Table[K, V]) Clear() {
	t.buckets = make([]bucket[K, V], len(t.buckets))
	t.size = 0
}

// Stats returns a snapshot of the table shape.
func (t *Table[K, V]) Stats() Stats {
	s := Stats{
		Size:       t.size,
		Capacity:   len(t.buckets),
		Resizes:    t.resizes,
		LoadFactor: t.LoadFactor(),
	}
	for _, b := range t.buckets {
		if len(b) == 0 {
			continue
		}
		s.UsedBuckets++
		s.LongestChain = max(s.LongestChain, len(b))
	}
	return s
}

// resize doubles the bucket count and rehashes every pair. Chains are
// replayed oldest first so relative recency survives inside a bucket.
func (t *Table[K, V]) resize() {
	capacity := len(t.buckets) * 2
	buckets := make([]bucket[K, V], capacity)

	for _, b := range t.buckets {
		for _, e := range b {
			bi := t.index(e.Key, capacity)
			buckets[bi] = append(buckets[bi], e)
		}
	}

	t.buckets = buckets
	t.resizes++
}
