package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hupe1980/roster/internal/fs"
	"github.com/hupe1980/roster/internal/lock"
)

const tempPrefix = ".tmp-"

// LocalOptions configures a LocalStore.
type LocalOptions struct {
	// FS is the file system used for all I/O. Defaults to the local OS.
	FS fs.FileSystem

	// Lock takes an exclusive lock on the root directory so that a second
	// process opening the same root fails fast. Default: true.
	Lock bool

	// SyncWrites fsyncs every blob before it is renamed into place.
	// Default: true.
	SyncWrites bool
}

// LocalStore implements BlobStore using the local file system.
// Blob names use forward slashes and map to paths below the root.
type LocalStore struct {
	root string
	fs   fs.FileSystem
	sync bool
	lock *lock.Lock
}

// NewLocalStore creates the root directory if needed and opens a LocalStore on it.
func NewLocalStore(root string, optFns ...func(*LocalOptions)) (*LocalStore, error) {
	opts := LocalOptions{
		FS:         fs.Default,
		Lock:       true,
		SyncWrites: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := opts.FS.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}

	s := &LocalStore{root: root, fs: opts.FS, sync: opts.SyncWrites}
	if opts.Lock {
		l, err := lock.Acquire(root)
		if err != nil {
			return nil, err
		}
		s.lock = l
	}
	return s, nil
}

// Close releases the directory lock, if held.
func (s *LocalStore) Close() error {
	return s.lock.Unlock()
}

func (s *LocalStore) path(name string) (string, error) {
	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean != name {
		return "", fmt.Errorf("blobstore: invalid blob name %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Open opens a blob for reading.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.OpenFile(p, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &localBlob{f: f, size: info.Size()}, nil
}

// Put writes data to a temp file next to the target and renames it into
// place, so readers never observe a partial blob.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := s.fs.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = s.fs.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if s.sync {
		if err = tmp.Sync(); err != nil {
			return err
		}
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return s.fs.Rename(tmp.Name(), p)
}

// Delete removes a blob.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns all blobs matching the prefix. Temp files and the lock file
// are skipped.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk(ctx, s.root, "", prefix, &names); err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func (s *LocalStore) walk(ctx context.Context, dir, rel, prefix string, names *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, tempPrefix) || (rel == "" && name == lock.FileName) {
			continue
		}
		full := path.Join(rel, name)
		if e.IsDir() {
			// Skip subtrees that cannot contain a match.
			if !strings.HasPrefix(full+"/", prefix) && !strings.HasPrefix(prefix, full+"/") {
				continue
			}
			if err := s.walk(ctx, filepath.Join(dir, name), full, prefix, names); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(full, prefix) {
			*names = append(*names, full)
		}
	}
	return nil
}

type localBlob struct {
	f    fs.File
	size int64
}

func (b *localBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	return b.f.ReadAt(p, off)
}

func (b *localBlob) Close() error {
	return b.f.Close()
}

func (b *localBlob) Size() int64 {
	return b.size
}
