package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// DistinctIDs returns n distinct values in [1, maxID], shuffled.
// It panics if maxID < n.
func (r *RNG) DistinctIDs(n, maxID int) []int {
	if maxID < n {
		panic(fmt.Sprintf("testutil: cannot draw %d distinct ids from [1,%d]", n, maxID))
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int]struct{}, n)
	ids := make([]int, 0, n)
	for len(ids) < n {
		id := r.rand.Intn(maxID) + 1
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s must be > 1; larger values concentrate more mass on small indexes.
func (r *RNG) Zipf(n int, s float64) int {
	if n <= 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	z := rand.NewZipf(r.rand, s, 1, uint64(n-1))
	return int(z.Uint64())
}

var (
	firstNames = []string{"Ada", "Alan", "Barbara", "Dennis", "Edsger", "Frances", "Grace", "Ken", "Linus", "Margaret", "Niklaus", "Radia"}
	lastNames  = []string{"Allen", "Dijkstra", "Hamilton", "Hopper", "Kernighan", "Liskov", "Lovelace", "Perlman", "Ritchie", "Thompson", "Turing", "Wirth"}
	genders    = []string{"female", "male", "diverse"}
	courses    = []string{"Algorithms", "Compilers", "Databases", "Networks", "Operating Systems"}
)

// Person holds the fields of a generated person record.
type Person struct {
	Name   string
	Gender string
	Phone  string
	Course string
	Born   time.Time
}

// Person returns a random person record.
func (r *RNG) Person() Person {
	r.mu.Lock()
	defer r.mu.Unlock()

	pick := func(s []string) string { return s[r.rand.Intn(len(s))] }
	born := time.Date(1990+r.rand.Intn(20), time.Month(1+r.rand.Intn(12)), 1+r.rand.Intn(28), 0, 0, 0, 0, time.UTC)

	return Person{
		Name:   pick(firstNames) + " " + pick(lastNames),
		Gender: pick(genders),
		Phone:  fmt.Sprintf("+49 %03d %07d", r.rand.Intn(1000), r.rand.Intn(10_000_000)),
		Course: pick(courses),
		Born:   born,
	}
}

// Username returns a random lower-case identifier of length n.
func (r *RNG) Username(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphabet[r.rand.Intn(len(alphabet))])
	}
	return b.String()
}
