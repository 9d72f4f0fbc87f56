// Package program ties together a parsed RAM program: its relation
// declarations, its main statement, its named subroutines, and its
// optional lattice association. It sits above both internal/ram and
// internal/lattice (which itself depends on internal/ram for the
// Condition/Value types in its case tables), so Program cannot live in
// either of those packages without creating an import cycle. Grounded on
// original_source/src/RamProgram.h (relation map, main statement,
// subroutine map, lattice association, ownership).
package program

import (
	"ramalg/internal/iostore"
	"ramalg/internal/lattice"
	"ramalg/internal/ram"
	"ramalg/internal/relation"
)

// Program is a fully-parsed RAM program, ready for execution.
type Program struct {
	Relations   map[string]relation.Spec
	Main        ram.Statement
	Subroutines map[string]ram.Statement
	Lattice     *lattice.Association // nil if the program declares none

	// Directives and Plugins are populated by LoadFile for the driver's
	// I/O registry and FFI bridge wiring; a Program built directly
	// through the Go API leaves these nil and wires its own.
	Directives []iostore.Directive
	Plugins    []string
}

// New returns an empty Program with initialized maps.
func New() *Program {
	return &Program{
		Relations:   make(map[string]relation.Spec),
		Subroutines: make(map[string]ram.Statement),
	}
}

// Subroutine looks up a named subroutine statement.
func (p *Program) Subroutine(name string) (ram.Statement, bool) {
	s, ok := p.Subroutines[name]
	return s, ok
}

// RelationSpec looks up a relation's declaration by name.
func (p *Program) RelationSpec(name string) (relation.Spec, bool) {
	s, ok := p.Relations[name]
	return s, ok
}
