package hashtable

import "errors"

var (
	// ErrInvalidKey is returned when a key fails the table's key validator
	// (by default: a nil pointer, chan or interface).
	ErrInvalidKey = errors.New("hashtable: invalid key")

	// ErrKeyNotFound is returned by Search when the key is absent.
	ErrKeyNotFound = errors.New("hashtable: key not found")
)
