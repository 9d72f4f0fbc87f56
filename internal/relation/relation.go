package relation

import (
	"strconv"
	"strings"
	"sync"

	"ramalg/internal/rerrors"
)

// Relation is a named, fixed-arity tuple set with a distinguished total
// index (ordering by every attribute left-to-right) always present, plus
// any number of secondary indices keyed by attribute-subset bitmask,
// built on first request (GetIndex) or eagerly via PreBuildIndex before a
// Parallel fork (spec.md §5).
type Relation struct {
	spec Spec

	mu      sync.RWMutex
	rows    []Tuple
	exists  map[string]struct{}
	indices map[uint64]*Index
	total   *Index
	dirty   bool
}

// New constructs an empty relation per spec.
func New(spec Spec) *Relation {
	r := &Relation{
		spec:    spec,
		exists:  make(map[string]struct{}),
		indices: make(map[uint64]*Index),
	}
	r.total = NewIndex(FullMask(spec.Arity), spec.Arity)
	r.indices[r.total.Mask] = r.total
	return r
}

// Spec returns the relation's declaration.
func (r *Relation) Spec() Spec { return r.spec }

// Arity returns the relation's fixed tuple width.
func (r *Relation) Arity() int { return r.spec.Arity }

func rowKey(t Tuple) string {
	var b strings.Builder
	for i, v := range t {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(v), 10))
	}
	return b.String()
}

// Insert adds tuple if it is not already present (idempotent: inserting
// the same tuple twice leaves Size unchanged, spec.md §8). Wrong arity is
// a fatal program-structural error.
func (r *Relation) Insert(tuple Tuple) {
	if len(tuple) != r.spec.Arity {
		rerrors.Structural("insert into relation %q: wrong arity (got %d, want %d)", r.spec.Name, len(tuple), r.spec.Arity)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(tuple)
}

func (r *Relation) insertLocked(tuple Tuple) bool {
	key := rowKey(tuple)
	if _, ok := r.exists[key]; ok {
		return false
	}
	cp := make(Tuple, len(tuple))
	copy(cp, tuple)
	r.exists[key] = struct{}{}
	r.rows = append(r.rows, cp)
	r.dirty = true
	return true
}

// InsertRelation adds every tuple of other into r (spec.md §4.3
// "insert(other-relation)"; used by Merge). After this call every tuple
// of other at call time is present in r (spec.md §8).
func (r *Relation) InsertRelation(other *Relation) {
	other.mu.RLock()
	rows := make([]Tuple, len(other.rows))
	copy(rows, other.rows)
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range rows {
		r.insertLocked(t)
	}
}

// Extend is only meaningful on an EquivalenceRelation; on a plain
// Relation it is a fatal program error (spec.md §4.3).
func (r *Relation) Extend(other *Relation) {
	rerrors.Structural("extend called on non-equivalence relation %q", r.spec.Name)
}

// Purge removes every tuple, keeping the relation (and its index set)
// alive for reuse.
func (r *Relation) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	r.exists = make(map[string]struct{})
	r.reindexLocked()
}

// Size reports the current tuple count.
func (r *Relation) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// Empty reports whether the relation currently holds no tuples.
func (r *Relation) Empty() bool { return r.Size() == 0 }

// Exists reports whether tuple is present via an exact structural hit
// test (spec.md §4.3).
func (r *Relation) Exists(tuple Tuple) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.exists[rowKey(tuple)]
	return ok
}

// TotalIndex returns the always-present index ordering by every
// attribute left-to-right, refreshed if inserts have happened since the
// last query.
func (r *Relation) TotalIndex() *Index {
	return r.GetIndex(r.total.Mask)
}

// GetIndex returns the index keyed by mask, building and caching it on
// first request if it does not already exist, and refreshing every index
// first if tuples were inserted since the last query. Per spec.md §5,
// any index that might be first-touched inside a Parallel subtree must
// instead be built ahead of time via PreBuildIndex; GetIndex's lazy path
// is protected by the same mutex as Insert/Purge so a race is at worst
// redundant work, never a corrupt index.
func (r *Relation) GetIndex(mask uint64) *Index {
	r.mu.RLock()
	ix, ok := r.indices[mask]
	dirty := r.dirty
	r.mu.RUnlock()
	if ok && !dirty {
		return ix
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty {
		r.reindexLocked()
	}
	if ix, ok := r.indices[mask]; ok {
		return ix
	}
	ix = NewIndex(mask, r.spec.Arity)
	ix.Refresh(r.rows)
	r.indices[mask] = ix
	return ix
}

// PreBuildIndex forces mask's index to exist before a Parallel fork.
func (r *Relation) PreBuildIndex(mask uint64) { r.GetIndex(mask) }

func (r *Relation) reindexLocked() {
	for _, ix := range r.indices {
		ix.Refresh(r.rows)
	}
	r.dirty = false
}

// Snapshot returns a read-only copy of every row in the relation, used
// internally by LatNorm/LatClean and SQL I/O writers.
func (r *Relation) Snapshot() []Tuple {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tuple, len(r.rows))
	copy(out, r.rows)
	return out
}
