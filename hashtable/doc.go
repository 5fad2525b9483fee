// Package hashtable provides a generic hash table with separate chaining.
//
// Each bucket owns an ordered slice of entries. Inserting a new key places it
// at the head of its chain, so iteration within one bucket yields the most
// recently inserted key first. When the load factor (size / capacity) reaches
// 0.75 the next Insert doubles the bucket count and rehashes every pair before
// it proceeds.
//
// # Hashing
//
// The table never invents a hash function. Each key type gets a Hasher:
//
//	t := hashtable.New[int, Student](hashtable.WithHasher(hashtable.IntHasher))
//	u := hashtable.New[string, Admin](hashtable.WithHasher(hashtable.StringHasher))
//
// Without WithHasher the table uses ComparableHasher, a seeded maphash over
// any comparable type. A badly distributed hasher degrades every operation to
// O(n); that is a documented worst case, not a bug.
//
// # Iteration order
//
// All, Values and Entries walk buckets in index order and each chain from
// head to tail. The order is not stable across growth: a resize rehashes every
// key and may reorder anything.
//
// # Concurrency
//
// Table holds no locks. Callers with concurrent access must serialize it.
package hashtable
