// Package student models the student records of the roster and keeps them in
// a roster.Manager keyed by student ID.
package student

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hupe1980/roster"
	"github.com/hupe1980/roster/hashtable"
	"github.com/hupe1980/roster/index"
	"github.com/hupe1980/roster/store"
)

// InitialCapacity is the bucket count of a fresh student index.
const InitialCapacity = 64

// ErrInvalidStudent is returned for records that fail Validate.
var ErrInvalidStudent = errors.New("student: invalid record")

// Student is one enrolled student.
type Student struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Gender      string     `json:"gender,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Course      string     `json:"course,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// KeyOf returns the student ID.
func KeyOf(s Student) int { return s.ID }

// ValidID reports whether id can identify a student.
func ValidID(id int) bool { return id > 0 && int64(id) <= math.MaxUint32 }

// Validate checks the fields a record needs to be stored.
func (s Student) Validate() error {
	if !ValidID(s.ID) {
		return fmt.Errorf("%w: id %d out of range", ErrInvalidStudent, s.ID)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidStudent)
	}
	return nil
}

// NewIndex returns an empty student index. Options in extra are applied after the
// defaults, e.g. to override the initial capacity.
func NewIndex(extra ...hashtable.Option[int]) *index.Index[int, Student] {
	opts := []hashtable.Option[int]{
		hashtable.WithHasher(hashtable.IntHasher),
		hashtable.WithInitialCapacity[int](InitialCapacity),
		hashtable.WithKeyValidator(ValidID),
	}
	return index.New(KeyOf, append(opts, extra...)...)
}

// NewManager wires st to a fresh student index.
func NewManager(st store.Store[int, Student], optFns ...roster.Option) *roster.Manager[int, Student] {
	return roster.New(st, NewIndex(), optFns...)
}
