// Package relation implements the indexed tuple-set relation store
// (spec.md §3 "Relation", §4.3): fixed-arity tuple sets ordered by a
// distinguished total index, with lazily-or-eagerly built secondary
// indices keyed by attribute-subset bitmasks, and an equivalence-relation
// variant closed under reflexivity/symmetry/transitivity. Grounded on
// InterpreterRelation/InterpreterIndex/InterpreterEqRelation as used
// throughout _examples/original_source/src/Interpreter.cpp.
package relation

import "ramalg/internal/domain"

// Tuple is a fixed-arity row. Tuples are never mutated in place once
// inserted; a Tuple returned by an Index's range query is stable for the
// lifetime of the relation (until Purge).
type Tuple = []domain.RamDomain

// Store is the common interface satisfied by both Relation and
// EquivalenceRelation, letting package interp hold either behind one
// map without type-switching on every access.
type Store interface {
	Spec() Spec
	Arity() int
	Insert(Tuple)
	InsertRelation(*Relation)
	Extend(*Relation)
	Purge()
	Size() int
	Empty() bool
	Exists(Tuple) bool
	TotalIndex() *Index
	GetIndex(mask uint64) *Index
	PreBuildIndex(mask uint64)
	Snapshot() []Tuple
}

// NewStore constructs a Relation or EquivalenceRelation per spec.Equivalence.
func NewStore(spec Spec) Store {
	if spec.Equivalence {
		return NewEquivalence(spec)
	}
	return New(spec)
}

// AsRelation recovers the underlying *Relation from a Store, unwrapping
// an EquivalenceRelation's embedded field — used by Merge, which needs a
// concrete *Relation to pass to InsertRelation/Extend regardless of
// which concrete type the source side is.
func AsRelation(s Store) *Relation {
	switch v := s.(type) {
	case *Relation:
		return v
	case *EquivalenceRelation:
		return v.Relation
	default:
		return nil
	}
}

// Spec is a relation's declaration: its name, arity, and which attributes
// are string handles (SymbolMask) vs. enum-typed (EnumMask). Neither mask
// affects evaluation here (that's a front-end/type-checker concern); they
// are carried through to I/O directive factories, which need them to
// decide how to print/parse each column.
type Spec struct {
	Name        string
	Arity       int
	SymbolMask  []bool
	EnumMask    []bool
	Equivalence bool // construct an EquivalenceRelation instead of Relation
}
