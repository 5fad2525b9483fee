package blobs

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/roster"
	"github.com/hupe1980/roster/blobstore"
	"github.com/hupe1980/roster/codec"
	"github.com/hupe1980/roster/hashtable"
	"github.com/hupe1980/roster/index"
	"github.com/hupe1980/roster/internal/resource"
	"github.com/hupe1980/roster/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func memberKey(m member) int { return m.ID }

func TestStore_WriteSemantics(t *testing.T) {
	ctx := t.Context()
	bs := blobstore.NewMemoryStore()
	s := New(bs, memberKey, func(o *Options) { o.Prefix = "members/" })

	require.NoError(t, s.Insert(ctx, member{ID: 1, Name: "ada"}))
	assert.ErrorIs(t, s.Insert(ctx, member{ID: 1, Name: "dup"}), store.ErrAlreadyExists)

	assert.ErrorIs(t, s.Update(ctx, member{ID: 2}), store.ErrNotFound)
	require.NoError(t, s.Update(ctx, member{ID: 1, Name: "ada l."}))

	assert.ErrorIs(t, s.Delete(ctx, 2), store.ErrNotFound)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []member{{ID: 1, Name: "ada l."}}, all)

	require.NoError(t, s.Delete(ctx, 1))
	all, err = s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_FetchAllParallel(t *testing.T) {
	ctx := t.Context()
	bs := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{MaxConcurrency: 4, MemoryLimitBytes: 1 << 20})
	s := New(bs, memberKey, func(o *Options) {
		o.Prefix = "members/"
		o.Compression = codec.CompressionZSTD
		o.Resources = rc
	})

	for i := 1; i <= 50; i++ {
		require.NoError(t, s.Insert(ctx, member{ID: i, Name: fmt.Sprintf("member-%d", i)}))
	}
	// Foreign blobs under and outside the prefix are ignored.
	require.NoError(t, bs.Put(ctx, "members/README", []byte("x")))
	require.NoError(t, bs.Put(ctx, "members/archive/9.rec", []byte("x")))
	require.NoError(t, bs.Put(ctx, "other/1.rec", []byte("x")))

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
	assert.Zero(t, rc.MemoryUsage())
}

func TestStore_FetchAllCorrupt(t *testing.T) {
	ctx := t.Context()
	bs := blobstore.NewMemoryStore()
	s := New(bs, memberKey)

	require.NoError(t, s.Insert(ctx, member{ID: 1, Name: "ok"}))
	require.NoError(t, bs.Put(ctx, s.BlobName(2), []byte("not a frame at all")))

	_, err := s.FetchAll(ctx)
	assert.ErrorIs(t, err, codec.ErrBadFrame)
}

func TestStore_MemoryLimit(t *testing.T) {
	ctx := t.Context()
	bs := blobstore.NewMemoryStore()
	s := New(bs, memberKey, func(o *Options) {
		o.Resources = resource.NewController(resource.Config{MemoryLimitBytes: 8})
	})

	require.NoError(t, s.Insert(ctx, member{ID: 1, Name: "longer than eight bytes"}))
	_, err := s.FetchAll(ctx)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
}

func TestStore_BlobNameEscapesKeys(t *testing.T) {
	s := New(blobstore.NewMemoryStore(), func(u string) string { return u }, func(o *Options) {
		o.Prefix = "admins/"
	})
	assert.Equal(t, "admins/a%2Fb.rec", s.BlobName("a/b"))
	assert.Equal(t, "admins/alice.rec", s.BlobName("alice"))
	assert.Equal(t, "admins/%41lice%20%42.rec", s.BlobName("Alice B"))
	assert.Equal(t, "admins/100%25.rec", s.BlobName("100%"))

	for _, key := range []string{"Alice B", "a/b", "100%", "ÄÖ"} {
		name := strings.TrimSuffix(strings.TrimPrefix(s.BlobName(key), "admins/"), Extension)
		got, err := url.PathUnescape(name)
		require.NoError(t, err)
		assert.Equal(t, key, got)
	}
}

// foldingStore lower-cases every name, like a case-insensitive filesystem,
// and counts Open calls.
type foldingStore struct {
	blobstore.BlobStore
	opens atomic.Int64
}

func (f *foldingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	f.opens.Add(1)
	return f.BlobStore.Open(ctx, strings.ToLower(name))
}

func (f *foldingStore) Put(ctx context.Context, name string, data []byte) error {
	return f.BlobStore.Put(ctx, strings.ToLower(name), data)
}

func (f *foldingStore) Delete(ctx context.Context, name string) error {
	return f.BlobStore.Delete(ctx, strings.ToLower(name))
}

func (f *foldingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return f.BlobStore.List(ctx, strings.ToLower(prefix))
}

func TestStore_KeysDifferingInCase(t *testing.T) {
	type login struct {
		User string `json:"user"`
		Name string `json:"name"`
	}

	ctx := t.Context()
	bs := &foldingStore{BlobStore: blobstore.NewMemoryStore()}
	s := New(bs, func(l login) string { return l.User }, func(o *Options) { o.Prefix = "admins/" })

	require.NoError(t, s.Insert(ctx, login{User: "Admin", Name: "first"}))
	require.NoError(t, s.Insert(ctx, login{User: "admin", Name: "second"}))
	require.NoError(t, s.Update(ctx, login{User: "admin", Name: "second v2"}))
	assert.ErrorIs(t, s.Update(ctx, login{User: "ADMIN"}), store.ErrNotFound)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []login{
		{User: "Admin", Name: "first"},
		{User: "admin", Name: "second v2"},
	}, all)
}

func TestStore_FetchAllOpensEachRecordOnce(t *testing.T) {
	ctx := t.Context()
	bs := &foldingStore{BlobStore: blobstore.NewMemoryStore()}
	s := New(bs, memberKey, func(o *Options) {
		o.Prefix = "members/"
		o.Resources = resource.NewController(resource.Config{MaxConcurrency: 2, MemoryLimitBytes: 1 << 20})
	})
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Insert(ctx, member{ID: i, Name: fmt.Sprintf("m%d", i)}))
	}

	bs.opens.Store(0)
	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, int64(5), bs.opens.Load())
}

func TestStore_ManagerRoundTrip(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()

	newManager := func(bs blobstore.BlobStore) *roster.Manager[int, member] {
		st := New(bs, memberKey, func(o *Options) {
			o.Prefix = "members/"
			o.Compression = codec.CompressionLZ4
		})
		idx := index.New(memberKey, hashtable.WithHasher(hashtable.IntHasher))
		return roster.New(st, idx)
	}

	local, err := blobstore.NewLocalStore(dir)
	require.NoError(t, err)

	m := newManager(local)
	require.NoError(t, m.Load(ctx))
	for i := 1; i <= 5; i++ {
		ok, err := m.Add(ctx, member{ID: i, Name: fmt.Sprint("m", i)})
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := m.Delete(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, local.Close())

	reopened, err := blobstore.NewLocalStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	m2 := newManager(reopened)
	require.NoError(t, m2.Load(ctx))
	assert.Equal(t, 4, m2.Count())
	assert.False(t, m2.Exists(3))
	got, ok := m2.Find(5)
	require.True(t, ok)
	assert.Equal(t, "m5", got.Name)
}
