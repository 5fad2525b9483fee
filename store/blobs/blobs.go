// Package blobs implements store.Store on top of a blobstore.BlobStore.
//
// Every record is one blob named <prefix><escaped key>.rec whose content is a
// codec frame (codec name, optional compression, CRC32C). FetchAll lists the
// prefix and reads the blobs in parallel, throttled by a resource controller.
//
// Keys are path-escaped and every upper-case ASCII letter is written as its
// %XX escape, so keys differing only in case ("Admin", "admin") never share a
// blob on a case-insensitive filesystem.
//
// Uniqueness checks are check-then-write. They are atomic within one process;
// LocalStore's directory lock keeps a second process out.
package blobs

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/hupe1980/roster/blobstore"
	"github.com/hupe1980/roster/codec"
	"github.com/hupe1980/roster/internal/resource"
	"github.com/hupe1980/roster/store"
	"golang.org/x/sync/errgroup"
)

// Extension is the suffix of record blobs.
const Extension = ".rec"

// Options configures a Store.
type Options struct {
	// Prefix namespaces the records, e.g. "students/".
	Prefix string

	// Codec encodes records. Default: codec.Default.
	Codec codec.Codec

	// Compression is applied to each record body. Default: none.
	Compression codec.Compression

	// Resources throttles FetchAll. Nil means one read at a time, unthrottled.
	Resources *resource.Controller
}

// Store keeps one blob per entity.
type Store[K comparable, E any] struct {
	blobs  blobstore.BlobStore
	keyOf  func(E) K
	prefix string
	frame  *codec.Frame
	rc     *resource.Controller

	mu sync.Mutex // serializes check-then-write
}

var _ store.Store[int, struct{}] = (*Store[int, struct{}])(nil)

// New creates a Store over bs.
func New[K comparable, E any](bs blobstore.BlobStore, keyOf func(E) K, optFns ...func(*Options)) *Store[K, E] {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store[K, E]{
		blobs:  bs,
		keyOf:  keyOf,
		prefix: opts.Prefix,
		frame:  codec.NewFrame(opts.Codec, opts.Compression),
		rc:     opts.Resources,
	}
}

// BlobName returns the blob that holds key.
func (s *Store[K, E]) BlobName(key K) string {
	return s.prefix + escapeKey(fmt.Sprint(key)) + Extension
}

// escapeKey is url.PathEscape with upper-case letters escaped as well. The
// result is unambiguous under case folding and still url.PathUnescape-able.
func escapeKey(key string) string {
	escaped := url.PathEscape(key)

	var sb strings.Builder
	sb.Grow(len(escaped))
	for i := 0; i < len(escaped); i++ {
		c := escaped[i]
		switch {
		case c == '%':
			// Existing escape: copy it whole so its hex digits stay upper case.
			sb.WriteString(escaped[i : i+3])
			i += 2
		case 'A' <= c && c <= 'Z':
			fmt.Fprintf(&sb, "%%%02X", c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// FetchAll reads and decodes every record under the prefix. The result
// follows the sorted blob listing.
func (s *Store[K, E]) FetchAll(ctx context.Context) ([]E, error) {
	names, err := s.blobs.List(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", s.prefix, err)
	}
	names = filterRecords(names, s.prefix)

	out := make([]E, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.rc.Concurrency())

	for i, name := range names {
		g.Go(func() error {
			if err := s.rc.Acquire(gctx); err != nil {
				return err
			}
			defer s.rc.Release()

			return s.read(gctx, name, &out[i])
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func filterRecords(names []string, prefix string) []string {
	out := names[:0]
	for _, name := range names {
		rest := strings.TrimPrefix(name, prefix)
		// Only direct children of the prefix are records.
		if strings.HasSuffix(rest, Extension) && !strings.Contains(rest, "/") {
			out = append(out, name)
		}
	}
	return out
}

func (s *Store[K, E]) read(ctx context.Context, name string, dst *E) error {
	b, err := s.blobs.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = b.Close() }()

	size := b.Size()
	if err := s.rc.AcquireMemory(size); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	defer s.rc.ReleaseMemory(size)

	if err := s.rc.AcquireIO(ctx, int(size)); err != nil {
		return err
	}

	data, err := blobstore.ReadBlob(ctx, b, name)
	if err != nil {
		return err
	}
	if err := codec.Decode(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Insert writes e. It returns store.ErrAlreadyExists if e's blob exists.
func (s *Store[K, E]) Insert(ctx context.Context, e E) error {
	return s.write(ctx, e, false)
}

// Update overwrites e. It returns store.ErrNotFound if e's blob is missing.
func (s *Store[K, E]) Update(ctx context.Context, e E) error {
	return s.write(ctx, e, true)
}

func (s *Store[K, E]) write(ctx context.Context, e E, mustExist bool) error {
	data, err := s.frame.Encode(e)
	if err != nil {
		return err
	}
	name := s.BlobName(s.keyOf(e))

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := blobstore.Exists(ctx, s.blobs, name)
	if err != nil {
		return err
	}
	switch {
	case mustExist && !exists:
		return store.ErrNotFound
	case !mustExist && exists:
		return store.ErrAlreadyExists
	}
	return s.blobs.Put(ctx, name, data)
}

// Delete removes key's blob. It returns store.ErrNotFound if it is missing.
func (s *Store[K, E]) Delete(ctx context.Context, key K) error {
	name := s.BlobName(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := blobstore.Exists(ctx, s.blobs, name)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return s.blobs.Delete(ctx, name)
}
