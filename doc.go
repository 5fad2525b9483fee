// Package roster keeps an in-memory hash index consistent with a durable
// record store.
//
// A Manager composes an index.Index (a keyed view over a chained
// hashtable.Table) with a store.Store. Mutations are written through to the
// store synchronously and mirrored into the index only on success, so a
// failed write never leaves the index ahead of the store. Reads are served
// from the index alone.
//
// # Quick Start
//
//	idx := index.New(student.KeyOf, hashtable.WithHasher(hashtable.IntHasher))
//	m := roster.New(st, idx, roster.WithLogLevel(slog.LevelInfo))
//	if err := m.Load(ctx); err != nil {
//	    return err // errors.Is(err, roster.ErrDurableLoadFailed)
//	}
//	ok, err := m.Add(ctx, s) // ok is false if s.ID is already indexed
//
// # Stores
//
// Any store.Store works. The repository ships:
//
//   - store.MemoryStore: in-process, for tests and ephemeral setups
//   - store/blobs: one compressed, checksummed blob per record on local
//     disk, S3 or MinIO (package blobstore)
//   - store/dynamo: one DynamoDB item per record with conditional writes
//
// # Consistency
//
// The only guarantee is ordering: store before index. A crash between the
// store's acknowledgement and the index update leaves the index stale until
// the next Load. Writes made by other processes are not observed until Load.
//
// # Concurrency
//
// Manager and the types below it hold no locks. Hosts with concurrent
// callers wrap the Manager in a Guarded.
package roster
