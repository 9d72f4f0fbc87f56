package relation

import "ramalg/internal/rerrors"

// EquivalenceRelation is a binary relation closed under reflexivity,
// symmetry, and transitivity on every Insert (spec.md §4.3
// "EqRelation"), implemented with union-find over the domain values seen
// so far: every Insert/InsertRelation/Extend merges classes and then
// eagerly rebuilds the full closure tuple set from the union-find, so
// membership is an exact lookup in that materialized set.
type EquivalenceRelation struct {
	*Relation

	parent map[int32]int32
}

// NewEquivalence constructs an empty equivalence relation (arity must be
// 2; spec.md's EqRelation is always binary).
func NewEquivalence(spec Spec) *EquivalenceRelation {
	spec.Equivalence = true
	return &EquivalenceRelation{
		Relation: New(spec),
		parent:   make(map[int32]int32),
	}
}

func (e *EquivalenceRelation) find(x int32) int32 {
	if _, ok := e.parent[x]; !ok {
		e.parent[x] = x
		return x
	}
	root := x
	for e.parent[root] != root {
		root = e.parent[root]
	}
	for e.parent[x] != root {
		e.parent[x], x = root, e.parent[x]
	}
	return root
}

func (e *EquivalenceRelation) union(a, b int32) {
	ra, rb := e.find(a), e.find(b)
	if ra != rb {
		e.parent[ra] = rb
	}
}

// Insert adds the pair (tuple[0], tuple[1]) and re-derives the full
// reflexive/symmetric/transitive closure over every element seen so far.
func (e *EquivalenceRelation) Insert(tuple Tuple) {
	if len(tuple) != 2 {
		rerrors.Structural("insert into equivalence relation %q: arity must be 2, got %d", e.Spec().Name, len(tuple))
		return
	}
	e.union(tuple[0], tuple[1])
	e.rebuildClosure()
}

// InsertRelation unions every pair of other into e, then recloses.
func (e *EquivalenceRelation) InsertRelation(other *Relation) {
	for _, t := range other.Snapshot() {
		if len(t) != 2 {
			continue
		}
		e.union(t[0], t[1])
	}
	e.rebuildClosure()
}

// Extend is the named equivalence-relation counterpart of
// Relation.InsertRelation (spec.md §4.3): it unions in every pair of
// other and recomputes the closure, unlike the base Relation.Extend,
// which is always a fatal error.
func (e *EquivalenceRelation) Extend(other *Relation) {
	e.InsertRelation(other)
}

func (e *EquivalenceRelation) rebuildClosure() {
	groups := make(map[int32][]int32)
	for x := range e.parent {
		r := e.find(x)
		groups[r] = append(groups[r], x)
	}

	r := e.Relation
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	r.exists = make(map[string]struct{})
	for _, members := range groups {
		for _, a := range members {
			for _, b := range members {
				r.insertLocked(Tuple{a, b})
			}
		}
	}
	r.reindexLocked()
}
