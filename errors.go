package roster

import (
	"errors"
	"fmt"

	"github.com/hupe1980/roster/hashtable"
)

var (
	// ErrInvalidKey is returned when an entity's key cannot be indexed.
	ErrInvalidKey = hashtable.ErrInvalidKey

	// ErrDurableWriteFailed is matched by every error caused by a rejected
	// store Insert, Update or Delete. The index is unchanged when it occurs.
	ErrDurableWriteFailed = errors.New("durable write failed")

	// ErrDurableLoadFailed is matched by every error caused by a failed
	// FetchAll. The index keeps its previous content when it occurs.
	ErrDurableLoadFailed = errors.New("durable load failed")
)

// Op identifies the manager operation that touched the store.
type Op string

// Manager operations.
const (
	OpLoad   Op = "load"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// DurableError reports a store failure observed by a Manager.
//
// The store's error can be accessed via errors.Unwrap; errors.Is also
// matches ErrDurableLoadFailed for OpLoad and ErrDurableWriteFailed otherwise.
type DurableError struct {
	Op    Op
	Key   any
	cause error
}

func (e *DurableError) Error() string {
	if e.Op == OpLoad {
		return fmt.Sprintf("%s: %v", ErrDurableLoadFailed, e.cause)
	}
	return fmt.Sprintf("%s: %s %v: %v", ErrDurableWriteFailed, e.Op, e.Key, e.cause)
}

func (e *DurableError) Unwrap() error { return e.cause }

// Is matches the sentinel that corresponds to e.Op.
func (e *DurableError) Is(target error) bool {
	if e.Op == OpLoad {
		return target == ErrDurableLoadFailed
	}
	return target == ErrDurableWriteFailed
}
