// Package analysis performs the one-time static pass over a program's
// operation trees that the evaluator needs before it can run: the
// bound-attribute bitmask for every IndexScan/ExistenceCheck/
// ProvenanceExistenceCheck (which secondary index to request from
// package relation) and the maximum tuple-context depth bound by any
// Scan/IndexScan/Lookup/Aggregate (how large a Context's frame slice must
// be).
// Grounded on the four separate RamExistenceAnalysis / RamIndexAnalysis
// et al. passes in original_source/src/Ram*Analysis.h, unified here into
// a single traversal since none of their results interact.
package analysis

import "ramalg/internal/ram"

// Tables holds the precomputed per-node facts the evaluator consults
// during execution. Keys are node pointer identity, valid for the
// lifetime of the program's unmodified AST.
type Tables struct {
	// ExistenceKeys/IndexScanKeys/ProvenanceKeys map a condition or
	// operation node to the bitmask of its Pattern's bound (non-nil)
	// attributes.
	ExistenceKeys  map[ram.Node]uint64
	IndexScanKeys  map[ram.Node]uint64
	ProvenanceKeys map[ram.Node]uint64

	// MaxDepth is the largest Depth bound by any Scan/IndexScan/Lookup/
	// Aggregate found, i.e. one less than the required context frame
	// count.
	MaxDepth int
}

func patternMask(pattern []ram.Value) uint64 {
	var mask uint64
	for i, v := range pattern {
		if v != nil && i < 64 {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// Build walks every statement reachable from main and every subroutine
// body, recording the bound-attribute masks and the maximum bind depth.
func Build(main ram.Statement, subroutines map[string]ram.Statement) *Tables {
	t := &Tables{
		ExistenceKeys:  make(map[ram.Node]uint64),
		IndexScanKeys:  make(map[ram.Node]uint64),
		ProvenanceKeys: make(map[ram.Node]uint64),
	}
	if main != nil {
		t.walk(main)
	}
	for _, s := range subroutines {
		t.walk(s)
	}
	return t
}

func (t *Tables) walk(n ram.Node) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ram.ExistenceCheck:
		t.ExistenceKeys[n] = patternMask(v.Pattern)
	case *ram.ProvenanceExistenceCheck:
		t.ProvenanceKeys[n] = patternMask(v.Pattern)
	case *ram.IndexScan:
		t.IndexScanKeys[n] = patternMask(v.Pattern)
		t.noteDepth(v.Depth)
	case *ram.Scan:
		t.noteDepth(v.Depth)
	case *ram.Lookup:
		t.noteDepth(v.Depth)
	case *ram.Aggregate:
		t.IndexScanKeys[n] = patternMask(v.Pattern)
		t.noteDepth(v.Depth)
	}
	for _, c := range n.Children() {
		t.walk(c)
	}
}

func (t *Tables) noteDepth(d int) {
	if d > t.MaxDepth {
		t.MaxDepth = d
	}
}

// Existence returns the bound-attribute mask recorded for an
// ExistenceCheck node.
func (t *Tables) Existence(n ram.Node) uint64 { return t.ExistenceKeys[n] }

// IndexScanMask returns the bound-attribute mask recorded for an
// IndexScan or Aggregate node (both select a sub-range by Pattern).
func (t *Tables) IndexScanMask(n ram.Node) uint64 { return t.IndexScanKeys[n] }

// Provenance returns the bound-attribute mask recorded for a
// ProvenanceExistenceCheck node.
func (t *Tables) Provenance(n ram.Node) uint64 { return t.ProvenanceKeys[n] }
