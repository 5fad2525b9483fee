package student

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/roster"
	"github.com/hupe1980/roster/hashtable"
	"github.com/hupe1980/roster/internal/conv"
	"golang.org/x/text/cases"
)

// Registry is the student-facing API over a Manager. Besides the primary
// index it keeps one bitmap of IDs per gender, updated after every successful
// mutation and rebuilt on Load.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	m       *roster.Manager[int, Student]
	genders map[string]*roaring.Bitmap
}

// Summary describes the registry content and the shape of its table.
type Summary struct {
	Count   int               `json:"count"`
	Genders map[string]uint64 `json:"genders"`
	Table   hashtable.Stats   `json:"table"`
}

// NewRegistry wraps m. The Manager must not be used directly afterwards.
func NewRegistry(m *roster.Manager[int, Student]) *Registry {
	r := &Registry{m: m}
	r.rebuild()
	return r
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func (r *Registry) rebuild() {
	r.genders = make(map[string]*roaring.Bitmap)
	for _, s := range r.m.All() {
		r.track(s)
	}
}

func (r *Registry) track(s Student) {
	pos, err := conv.IntToUint32(s.ID)
	if err != nil {
		return
	}
	g := fold(s.Gender)
	bm, ok := r.genders[g]
	if !ok {
		bm = roaring.New()
		r.genders[g] = bm
	}
	bm.Add(pos)
}

func (r *Registry) untrack(s Student) {
	pos, err := conv.IntToUint32(s.ID)
	if err != nil {
		return
	}
	g := fold(s.Gender)
	if bm, ok := r.genders[g]; ok {
		bm.Remove(pos)
		if bm.IsEmpty() {
			delete(r.genders, g)
		}
	}
}

// Load reloads every student from the store.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.m.Load(ctx); err != nil {
		return err
	}
	r.rebuild()
	return nil
}

// Add validates and stores s. It returns false if the ID is taken.
func (r *Registry) Add(ctx context.Context, s Student) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := r.m.Add(ctx, s)
	if ok {
		r.track(s)
	}
	return ok, err
}

// Update validates and replaces the student with s.ID. It returns false if
// no such student exists.
func (r *Registry) Update(ctx context.Context, s Student) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, found := r.m.Find(s.ID)
	ok, err := r.m.Update(ctx, s)
	if ok && found {
		r.untrack(prev)
		r.track(s)
	}
	return ok, err
}

// Delete removes the student with id. It returns false if none exists.
func (r *Registry) Delete(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, found := r.m.Find(id)
	ok, err := r.m.Delete(ctx, id)
	if ok && found {
		r.untrack(prev)
	}
	return ok, err
}

// Find returns the student with id.
func (r *Registry) Find(id int) (Student, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m.Find(id)
}

// Exists reports whether a student with id is indexed.
func (r *Registry) Exists(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m.Exists(id)
}

// Count returns the number of indexed students.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m.Count()
}

// All returns every student ordered by ID.
func (r *Registry) All() []Student {
	r.mu.RLock()
	all := r.m.All()
	r.mu.RUnlock()

	sortByID(all)
	return all
}

// SearchByName returns the students whose name contains q, ignoring case.
// An empty query matches everyone.
func (r *Registry) SearchByName(q string) []Student {
	needle := fold(q)

	r.mu.RLock()
	hits := r.m.Filter(func(s Student) bool {
		return strings.Contains(fold(s.Name), needle)
	})
	r.mu.RUnlock()

	sortByID(hits)
	return hits
}

// ByGender returns the students whose gender matches g, ignoring case,
// ordered by ID.
func (r *Registry) ByGender(g string) []Student {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bm, ok := r.genders[fold(g)]
	if !ok {
		return nil
	}
	out := make([]Student, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		id, err := conv.Uint32ToInt(it.Next())
		if err != nil {
			continue
		}
		if s, ok := r.m.Find(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// Summary returns per-gender counts and the table statistics.
func (r *Registry) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	genders := make(map[string]uint64, len(r.genders))
	for g, bm := range r.genders {
		genders[g] = bm.GetCardinality()
	}
	return Summary{
		Count:   r.m.Count(),
		Genders: genders,
		Table:   r.m.Stats(),
	}
}

func sortByID(s []Student) {
	slices.SortFunc(s, func(a, b Student) int { return a.ID - b.ID })
}
