package store

import (
	"github.com/eventdeck/eventdeck-client/internal/domain"
)

// Partition selects one or both collections of a Repository.
type Partition uint8

const (
	// Live holds the last known server state.
	Live Partition = 1 << iota
	// Fallback holds the locally seeded mirror used while the backend is
	// unreachable.
	Fallback

	// Both addresses Live and Fallback.
	Both = Live | Fallback
)

func (p Partition) String() string {
	switch p {
	case Live:
		return "live"
	case Fallback:
		return "fallback"
	case Both:
		return "both"
	default:
		return "none"
	}
}

// partitions lists the single partitions contained in p, Live first.
func (p Partition) partitions() []Partition {
	out := make([]Partition, 0, 2)
	if p&Live != 0 {
		out = append(out, Live)
	}
	if p&Fallback != 0 {
		out = append(out, Fallback)
	}
	return out
}

// Record is an entity a Repository can hold.
type Record[T any] interface {
	Key() domain.EntityID
	Clone() T
}

// Sink observes every write to the partition it is attached to.
type Sink[T any] interface {
	Save(item T)
	Delete(id domain.EntityID)
}

// Repository keeps one entity type in two named partitions. Every mutation
// names the partitions it targets and is applied to each independently,
// tolerating absence from either side.
//
// Repository is not safe for concurrent use; Store serializes access.
type Repository[T Record[T]] struct {
	live     []T
	fallback []T
	sinks    map[Partition]Sink[T]
}

// NewRepository creates an empty repository.
func NewRepository[T Record[T]]() *Repository[T] {
	return &Repository[T]{
		sinks: make(map[Partition]Sink[T]),
	}
}

// Attach sets the sink notified of writes to the single partition p.
func (r *Repository[T]) Attach(p Partition, s Sink[T]) {
	if s == nil {
		delete(r.sinks, p)
		return
	}
	r.sinks[p] = s
}

func (r *Repository[T]) slot(p Partition) *[]T {
	if p == Fallback {
		return &r.fallback
	}
	return &r.live
}

func (r *Repository[T]) index(p Partition, id domain.EntityID) int {
	for i, item := range *r.slot(p) {
		if item.Key().Equal(id) {
			return i
		}
	}
	return -1
}

func (r *Repository[T]) save(p Partition, item T) {
	if s, ok := r.sinks[p]; ok {
		s.Save(item.Clone())
	}
}

func (r *Repository[T]) drop(p Partition, id domain.EntityID) {
	if s, ok := r.sinks[p]; ok {
		s.Delete(id)
	}
}

// Get returns a copy of the item with id from the single partition p.
func (r *Repository[T]) Get(p Partition, id domain.EntityID) (T, bool) {
	if i := r.index(p, id); i >= 0 {
		return (*r.slot(p))[i].Clone(), true
	}
	var zero T
	return zero, false
}

// Has reports whether id is present in any partition of ps.
func (r *Repository[T]) Has(ps Partition, id domain.EntityID) bool {
	_, _, ok := r.Find(ps, id)
	return ok
}

// Find looks id up in ps, Live first, and reports where it was found.
func (r *Repository[T]) Find(ps Partition, id domain.EntityID) (T, Partition, bool) {
	for _, p := range ps.partitions() {
		if item, ok := r.Get(p, id); ok {
			return item, p, true
		}
	}
	var zero T
	return zero, 0, false
}

// Upsert replaces the item with the same key in each partition of ps, or
// appends it where absent.
func (r *Repository[T]) Upsert(ps Partition, item T) {
	for _, p := range ps.partitions() {
		list := r.slot(p)
		if i := r.index(p, item.Key()); i >= 0 {
			(*list)[i] = item.Clone()
		} else {
			*list = append(*list, item.Clone())
		}
		r.save(p, item)
	}
}

// Update applies fn to the item with id in each partition of ps where it is
// present. It returns the number of partitions touched.
func (r *Repository[T]) Update(ps Partition, id domain.EntityID, fn func(*T)) int {
	touched := 0
	for _, p := range ps.partitions() {
		i := r.index(p, id)
		if i < 0 {
			continue
		}
		list := *r.slot(p)
		fn(&list[i])
		r.save(p, list[i])
		touched++
	}
	return touched
}

// Remove deletes id from each partition of ps. It returns the number of
// partitions it was removed from.
func (r *Repository[T]) Remove(ps Partition, id domain.EntityID) int {
	removed := 0
	for _, p := range ps.partitions() {
		i := r.index(p, id)
		if i < 0 {
			continue
		}
		list := r.slot(p)
		*list = append((*list)[:i:i], (*list)[i+1:]...)
		r.drop(p, id)
		removed++
	}
	return removed
}

// Replace swaps the whole content of each partition of ps. Sinks are not
// notified; Replace mirrors state that is already durable elsewhere.
func (r *Repository[T]) Replace(ps Partition, items []T) {
	for _, p := range ps.partitions() {
		list := make([]T, len(items))
		for i, item := range items {
			list[i] = item.Clone()
		}
		*r.slot(p) = list
	}
}

// List returns copies of every item in the single partition p.
func (r *Repository[T]) List(p Partition) []T {
	return r.Filter(p, nil)
}

// Filter returns copies of the items in p that satisfy keep. A nil keep
// matches everything.
func (r *Repository[T]) Filter(p Partition, keep func(T) bool) []T {
	src := *r.slot(p)
	out := make([]T, 0, len(src))
	for _, item := range src {
		if keep == nil || keep(item) {
			out = append(out, item.Clone())
		}
	}
	return out
}

// Len returns the size of the single partition p.
func (r *Repository[T]) Len(p Partition) int {
	return len(*r.slot(p))
}
