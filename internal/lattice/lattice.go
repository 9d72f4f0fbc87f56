// Package lattice implements the declared-lattice association (spec.md
// §3 "Lattice association", §4.9): a bottom/top pair, LUB/GLB binary
// functions, and the per-operator case tables that back
// LatticeUnaryFunctor/LatticeBinaryFunctor/LatticeGLB value nodes and the
// LatNorm/LatClean statements. Evaluation of a case table itself (walking
// cases, short-circuiting on the first match) needs the value/condition
// evaluators in package interp, so this package only holds the
// structural definitions; evalUnaryCase/evalBinaryCase in
// internal/interp/lattice_case.go perform the actual walk, grounded on Interpreter::visitLatticeUnaryFunctor et al. in
// _examples/original_source/src/Interpreter.cpp.
package lattice

import "ramalg/internal/ram"

// Case is one row of a lattice function's case table: an ordered list of
// (optional-match, output) pairs with first-match-or-unconditional-match
// semantics (spec.md §3).
type Case struct {
	Match  ram.Condition // nil means "matches unconditionally"
	Output ram.Value
}

// UnaryFunction is a declared lattice unary function (e.g. a user-defined
// "islub" predicate expressed as a case table over one argument).
type UnaryFunction struct {
	Name  string
	Cases []Case
}

// BinaryFunction is a declared lattice binary function — in particular
// LUB and GLB, but also any other user-declared binary lattice functor.
type BinaryFunction struct {
	Name  string
	Cases []Case
}

// Association is the program-wide lattice declaration: its bottom/top
// sentinels, its LUB/GLB binary functions, and any additional named unary
// or binary functions the Datalog program declared.
type Association struct {
	Bottom int32
	Top    int32
	LUB    *BinaryFunction
	GLB    *BinaryFunction

	Unary  map[string]*UnaryFunction
	Binary map[string]*BinaryFunction
}

// NewAssociation returns an Association with empty functor maps.
func NewAssociation(bottom, top int32, lub, glb *BinaryFunction) *Association {
	return &Association{
		Bottom: bottom,
		Top:    top,
		LUB:    lub,
		GLB:    glb,
		Unary:  make(map[string]*UnaryFunction),
		Binary: make(map[string]*BinaryFunction),
	}
}
