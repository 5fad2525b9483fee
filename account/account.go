// Package account keeps administrator accounts in a roster.Manager keyed by
// username. Passwords are stored as bcrypt hashes only.
package account

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/roster"
	"github.com/hupe1980/roster/hashtable"
	"github.com/hupe1980/roster/index"
	"github.com/hupe1980/roster/store"
	"golang.org/x/crypto/bcrypt"
)

// InitialCapacity is the bucket count of a fresh account index.
const InitialCapacity = 32

var (
	// ErrUsernameTaken is returned by Register for an existing username.
	ErrUsernameTaken = errors.New("account: username already taken")

	// ErrInvalidCredentials is returned by Login for an unknown username or a
	// wrong password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("account: invalid credentials")

	// ErrInvalidAccount is returned for empty usernames or passwords.
	ErrInvalidAccount = errors.New("account: invalid account")
)

// Admin is one administrator account.
type Admin struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// KeyOf returns the username.
func KeyOf(a Admin) string { return a.Username }

func validUsername(u string) bool { return strings.TrimSpace(u) != "" }

// NewIndex returns an empty account index. Options in extra are applied after the
// defaults, e.g. to override the initial capacity.
func NewIndex(extra ...hashtable.Option[string]) *index.Index[string, Admin] {
	opts := []hashtable.Option[string]{
		hashtable.WithHasher(hashtable.StringHasher),
		hashtable.WithInitialCapacity[string](InitialCapacity),
		hashtable.WithKeyValidator(validUsername),
	}
	return index.New(KeyOf, append(opts, extra...)...)
}

// NewManager wires st to a fresh account index.
func NewManager(st store.Store[string, Admin], optFns ...roster.Option) *roster.Manager[string, Admin] {
	return roster.New(st, NewIndex(), optFns...)
}

// Directory registers and authenticates administrators.
//
// Directory is safe for concurrent use.
type Directory struct {
	g    *roster.Guarded[string, Admin]
	cost int
	now  func() time.Time

	regMu sync.Mutex // serializes Register's exists-then-add
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) DirectoryOption {
	return func(d *Directory) { d.cost = cost }
}

// WithClock overrides time.Now for CreatedAt.
func WithClock(now func() time.Time) DirectoryOption {
	return func(d *Directory) { d.now = now }
}

// NewDirectory wraps m. The Manager must not be used directly afterwards.
func NewDirectory(m *roster.Manager[string, Admin], optFns ...DirectoryOption) *Directory {
	d := &Directory{
		g:    roster.NewGuarded(m),
		cost: bcrypt.DefaultCost,
		now:  time.Now,
	}
	for _, fn := range optFns {
		fn(d)
	}
	return d
}

// Load reloads every account from the store.
func (d *Directory) Load(ctx context.Context) error {
	return d.g.Load(ctx)
}

// Register creates an account with a fresh ID and a bcrypt hash of password.
func (d *Directory) Register(ctx context.Context, fullName, username, password string) (Admin, error) {
	if !validUsername(username) || password == "" {
		return Admin{}, fmt.Errorf("%w: username and password are required", ErrInvalidAccount)
	}

	d.regMu.Lock()
	defer d.regMu.Unlock()

	if d.g.Exists(username) {
		return Admin{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return Admin{}, fmt.Errorf("hash password: %w", err)
	}

	a := Admin{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    d.now().UTC(),
	}
	ok, err := d.g.Add(ctx, a)
	if err != nil {
		return Admin{}, err
	}
	if !ok {
		return Admin{}, ErrUsernameTaken
	}
	return a, nil
}

// Login returns the account if password matches its hash.
func (d *Directory) Login(_ context.Context, username, password string) (Admin, error) {
	a, ok := d.g.Find(username)
	if !ok {
		return Admin{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return a, nil
}

// Get returns the account for username.
func (d *Directory) Get(username string) (Admin, bool) {
	return d.g.Find(username)
}

// UsernameExists reports whether username is registered.
func (d *Directory) UsernameExists(username string) bool {
	return d.g.Exists(username)
}

// All returns every account ordered by username.
func (d *Directory) All() []Admin {
	all := d.g.All()
	slices.SortFunc(all, func(a, b Admin) int { return strings.Compare(a.Username, b.Username) })
	return all
}

// Update replaces the stored account with a. It returns false if the
// username is not registered.
func (d *Directory) Update(ctx context.Context, a Admin) (bool, error) {
	return d.g.Update(ctx, a)
}

// ChangePassword replaces the password hash of username.
func (d *Directory) ChangePassword(ctx context.Context, username, password string) (bool, error) {
	if password == "" {
		return false, fmt.Errorf("%w: password is required", ErrInvalidAccount)
	}
	a, ok := d.g.Find(username)
	if !ok {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	a.PasswordHash = string(hash)
	return d.g.Update(ctx, a)
}

// Delete removes username. It returns false if it is not registered.
func (d *Directory) Delete(ctx context.Context, username string) (bool, error) {
	return d.g.Delete(ctx, username)
}
