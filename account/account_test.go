package account

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/roster"
	"github.com/hupe1980/roster/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDirectory(t *testing.T) (*Directory, *store.FaultyStore[string, Admin]) {
	t.Helper()
	st := store.NewFaultyStore[string, Admin](store.NewMemoryStore(KeyOf))
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := NewDirectory(NewManager(st),
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, d.Load(t.Context()))
	return d, st
}

func TestDirectory_RegisterLogin(t *testing.T) {
	ctx := t.Context()
	d, _ := newDirectory(t)

	a, err := d.Register(ctx, "Ada Lovelace", "ada", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ada", a.Username)
	assert.NotEqual(t, "s3cret", a.PasswordHash)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), a.CreatedAt)
	_, err = uuid.Parse(a.ID)
	require.NoError(t, err)

	got, err := d.Login(ctx, "ada", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = d.Login(ctx, "ada", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = d.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDirectory_RegisterRejects(t *testing.T) {
	ctx := t.Context()
	d, st := newDirectory(t)

	_, err := d.Register(ctx, "Ada", "ada", "pw")
	require.NoError(t, err)

	_, err = d.Register(ctx, "Imposter", "ada", "pw2")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = d.Register(ctx, "Nobody", "  ", "pw")
	assert.ErrorIs(t, err, ErrInvalidAccount)
	_, err = d.Register(ctx, "Nobody", "nobody", "")
	assert.ErrorIs(t, err, ErrInvalidAccount)

	assert.Equal(t, 1, st.Calls(store.OpInsert))
}

func TestDirectory_RegisterStoreFailure(t *testing.T) {
	ctx := t.Context()
	d, st := newDirectory(t)

	st.Fail(store.OpInsert, nil)
	_, err := d.Register(ctx, "Ada", "ada", "pw")
	require.ErrorIs(t, err, roster.ErrDurableWriteFailed)
	assert.ErrorIs(t, err, store.ErrInjected)
	assert.False(t, d.UsernameExists("ada"))
}

func TestDirectory_UpdateDelete(t *testing.T) {
	ctx := t.Context()
	d, _ := newDirectory(t)

	_, err := d.Register(ctx, "Grace", "grace", "old")
	require.NoError(t, err)
	_, err = d.Register(ctx, "Alan", "alan", "pw")
	require.NoError(t, err)

	ok, err := d.ChangePassword(ctx, "grace", "new")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = d.Login(ctx, "grace", "old")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = d.Login(ctx, "grace", "new")
	require.NoError(t, err)

	a, _ := d.Get("grace")
	a.FullName = "Grace Hopper"
	ok, err = d.Update(ctx, a)
	require.NoError(t, err)
	require.True(t, ok)

	all := d.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alan", all[0].Username)
	assert.Equal(t, "Grace Hopper", all[1].FullName)

	ok, err = d.Delete(ctx, "alan")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = d.Delete(ctx, "alan")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = d.ChangePassword(ctx, "ghost", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewIndex_RejectsEmptyUsername(t *testing.T) {
	idx := NewIndex()
	assert.False(t, idx.Add(Admin{Username: ""}))
	assert.True(t, idx.Add(Admin{Username: "root"}))
}
