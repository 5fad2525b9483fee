// Package lock provides an exclusive, process-wide lock on a directory.
//
// The lock is advisory and backed by a lock file inside the directory. It is
// released when the holder calls Unlock or the process exits.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the name of the lock file created inside a locked directory.
const FileName = ".lock"

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("lock: directory is locked by another process")

// Lock is a held directory lock.
type Lock struct {
	f *os.File
}

// Acquire takes the lock on dir without blocking. dir must exist.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock: open %s: %w", path, err)
	}
	if err := tryLock(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Lock{f: f}, nil
}

// Unlock releases the lock. Calling Unlock more than once is a no-op.
func (l *Lock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
