package blobstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/roster/internal/fs"
	"github.com/hupe1980/roster/internal/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewLocalStore(tmpDir)
	require.NoError(t, err)
	defer store.Close()

	ctx := t.Context()
	name := "students/000001.rec"
	data := []byte("hello world, this is a test blob")

	require.NoError(t, store.Put(ctx, name, data))

	_, err = os.Stat(filepath.Join(tmpDir, "students", "000001.rec"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))
	require.NoError(t, blob.Close())

	got, err := ReadAll(ctx, store, name)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Overwrite replaces content.
	require.NoError(t, store.Put(ctx, name, []byte("v2")))
	got, err = ReadAll(ctx, store, name)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, store.Delete(ctx, name))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error.
	assert.NoError(t, store.Delete(ctx, name))
}

func TestLocalStore_List(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := t.Context()
	for _, name := range []string{"students/2.rec", "students/1.rec", "admins/a.rec", "top.rec"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"admins/a.rec", "students/1.rec", "students/2.rec", "top.rec"}, all)

	students, err := store.List(ctx, "students/")
	require.NoError(t, err)
	assert.Equal(t, []string{"students/1.rec", "students/2.rec"}, students)

	none, err := store.List(ctx, "staff/")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLocalStore_InvalidName(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), func(o *LocalOptions) { o.Lock = false })
	require.NoError(t, err)

	for _, name := range []string{"", "../escape", "a//b", "/abs"} {
		assert.Error(t, store.Put(t.Context(), name, nil), name)
	}
}

func TestLocalStore_Lock(t *testing.T) {
	dir := t.TempDir()
	first, err := NewLocalStore(dir)
	require.NoError(t, err)

	_, err = NewLocalStore(dir)
	assert.ErrorIs(t, err, lock.ErrLocked)

	require.NoError(t, first.Close())
	second, err := NewLocalStore(dir)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestLocalStore_FailedPutLeavesPrevious(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	dir := t.TempDir()
	store, err := NewLocalStore(dir, func(o *LocalOptions) {
		o.FS = ffs
		o.Lock = false
	})
	require.NoError(t, err)

	ctx := t.Context()
	require.NoError(t, store.Put(ctx, "r.rec", []byte("old")))

	ffs.AddRule("r.rec", fs.Fault{FailAfterBytes: -1, FailOnRename: true})
	assert.ErrorIs(t, store.Put(ctx, "r.rec", []byte("new")), fs.ErrInjected)

	got, err := ReadAll(ctx, store, "r.rec")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"r.rec"}, names, "temp file must be cleaned up")
}

func TestMemoryStore(t *testing.T) {
	ctx := t.Context()
	store := NewMemoryStore()

	data := []byte("payload")
	require.NoError(t, store.Put(ctx, "a/1", data))
	data[0] = 'X'

	got, err := ReadAll(ctx, store, "a/1")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	ok, err := Exists(ctx, store, "a/1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Put(ctx, "b/1", nil))
	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1"}, names)

	empty, err := ReadAll(ctx, store, "b/1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Delete(ctx, "a/1"))
	ok, err = Exists(ctx, store, "a/1")
	require.NoError(t, err)
	assert.False(t, ok)
}
