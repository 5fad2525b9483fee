package hashtable

import (
	"hash/maphash"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to a 64-bit hash. Equal keys must produce equal hashes.
type Hasher[K comparable] func(key K) uint64

// IntHasher mixes an int with the splitmix64 finalizer so that sequential
// IDs spread over all buckets instead of clustering in the low ones.
func IntHasher(key int) uint64 {
	x := uint64(key)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// StringHasher hashes a string with xxHash64.
func StringHasher(key string) uint64 {
	return xxhash.Sum64String(key)
}

// ComparableHasher returns a Hasher for any comparable type backed by
// hash/maphash with a fresh random seed. Hashes are only stable for the
// lifetime of the returned function.
func ComparableHasher[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

// isNilKey reports whether key is the nil value of a nillable kind.
func isNilKey[K comparable](key K) bool {
	v := reflect.ValueOf(any(key))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}
