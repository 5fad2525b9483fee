package hashtable

// DefaultCapacity is the bucket count used when no capacity is configured.
const DefaultCapacity = 16

type options[K comparable] struct {
	capacity  int
	hasher    Hasher[K]
	validator func(K) bool
}

// Option configures a Table.
type Option[K comparable] func(*options[K])

// WithInitialCapacity sets the initial bucket count. Values below 1 are
// treated as 1.
func WithInitialCapacity[K comparable](n int) Option[K] {
	return func(o *options[K]) {
		o.capacity = n
	}
}

// WithHasher sets the hash function for K. If nil is passed,
// ComparableHasher is used.
func WithHasher[K comparable](h Hasher[K]) Option[K] {
	return func(o *options[K]) {
		o.hasher = h
	}
}

// WithKeyValidator sets the predicate deciding which keys are usable.
// Keys for which valid returns false are rejected with ErrInvalidKey on
// Insert and treated as absent everywhere else.
//
// Example rejecting empty usernames:
//
//	hashtable.New[string, Admin](hashtable.WithKeyValidator(func(k string) bool {
//	    return k != ""
//	}))
func WithKeyValidator[K comparable](valid func(K) bool) Option[K] {
	return func(o *options[K]) {
		o.validator = valid
	}
}
