// Package domain holds the value domain, symbol table, and record store
// shared by every other package: the integer universe the RAM interpreter
// computes over, and the two interning tables (strings, fixed-arity
// tuples) that back string- and record-typed attributes.
package domain

import "math"

// RamDomain is the signed fixed-width integer every RAM value evaluates
// to. Strings and records are represented as RamDomain handles resolved
// through SymbolTable and RecordStore respectively.
type RamDomain = int32

const (
	// MinDomain and MaxDomain bound range queries: an unbound pattern
	// position in an IndexScan/Aggregate/ExistenceCheck is widened to
	// this pair.
	MinDomain RamDomain = math.MinInt32
	MaxDomain RamDomain = math.MaxInt32

	// NullRecord is the reserved handle meaning "no record". Unpack must
	// never be called with it; Lookup operations guard against it.
	NullRecord RamDomain = 0
)
