// Package store defines the durable record store contract consumed by
// roster.Manager, plus in-memory and fault-injecting implementations.
//
// Implementations must give read-your-writes consistency within one process:
// a successful Insert, Update or Delete is visible to the next FetchAll.
//
// Backends live in subpackages:
//
//   - store/blobs: one framed blob per record on any blobstore.BlobStore
//     (local disk, memory, S3, MinIO)
//   - store/dynamo: one DynamoDB item per record with conditional writes
package store

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyExists is returned by Insert when the key is taken.
	ErrAlreadyExists = errors.New("store: record already exists")

	// ErrNotFound is returned by Update and Delete when the key is absent.
	ErrNotFound = errors.New("store: record not found")
)

// Store is a durable collection of entities of type E identified by K.
type Store[K comparable, E any] interface {
	// FetchAll returns every stored entity.
	FetchAll(ctx context.Context) ([]E, error)

	// Insert stores a new entity.
	Insert(ctx context.Context, e E) error

	// Update replaces an existing entity.
	Update(ctx context.Context, e E) error

	// Delete removes the entity stored under key.
	Delete(ctx context.Context, key K) error
}
