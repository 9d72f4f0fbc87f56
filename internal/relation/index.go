package relation

import (
	"sort"

	"golang.org/x/exp/slices"
)

// Index orders a snapshot of a relation's tuples by the attribute subset
// named in Mask (ascending attribute index, as the primary key) with the
// remaining attributes, in ascending index order, as a tiebreaker — the
// Go analogue of Souffle's B-tree InterpreterIndex. It is rebuilt
// wholesale on Refresh rather than maintained incrementally, which is
// sufficient here: indices are refreshed once per batch of inserts
// (Relation.reindexLocked) rather than tuple-by-tuple.
type Index struct {
	Mask  uint64
	order []int
	rows  []Tuple
}

// NewIndex returns an index keyed by mask for a relation of the given
// arity, initially empty.
func NewIndex(mask uint64, arity int) *Index {
	return &Index{Mask: mask, order: attributeOrder(mask, arity)}
}

func attributeOrder(mask uint64, arity int) []int {
	order := make([]int, 0, arity)
	for i := 0; i < arity; i++ {
		if mask&(1<<uint(i)) != 0 {
			order = append(order, i)
		}
	}
	for i := 0; i < arity; i++ {
		if mask&(1<<uint(i)) == 0 {
			order = append(order, i)
		}
	}
	return order
}

func (ix *Index) compare(a, b Tuple) int {
	for _, i := range ix.order {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// Refresh rebuilds the sorted row list from rows using
// golang.org/x/exp/slices.SortFunc, the ordered-index counterpart to the
// reference stack's x/exp dependency.
func (ix *Index) Refresh(rows []Tuple) {
	cp := make([]Tuple, len(rows))
	copy(cp, rows)
	slices.SortFunc(cp, ix.compare)
	ix.rows = cp
}

// LowerUpperBound returns the half-open range [begin,end) of rows whose
// masked attributes fall within [low,high] inclusive (spec.md §4.3:
// "Range queries set MIN_DOMAIN/MAX_DOMAIN for unbound positions,
// yielding a contiguous range").
func (ix *Index) LowerUpperBound(low, high Tuple) (begin, end int) {
	begin, _ = slices.BinarySearchFunc(ix.rows, low, func(t, target Tuple) int { return ix.compare(t, target) })
	end = sort.Search(len(ix.rows), func(i int) bool { return ix.compare(ix.rows[i], high) > 0 })
	if end < begin {
		end = begin
	}
	return begin, end
}

// Range returns the rows of LowerUpperBound(low, high) as one slice,
// captured against the current snapshot: a later Refresh replaces the
// index's row list wholesale, so a Range result stays valid while the
// relation mutates underneath it.
func (ix *Index) Range(low, high Tuple) []Tuple {
	begin, end := ix.LowerUpperBound(low, high)
	return ix.rows[begin:end]
}

// UpperBound returns the index of the first row strictly greater than
// high under this index's order, i.e. the end of LowerUpperBound(_, high).
func (ix *Index) UpperBound(high Tuple) int {
	return sort.Search(len(ix.rows), func(i int) bool { return ix.compare(ix.rows[i], high) > 0 })
}

// Len reports the number of rows currently indexed.
func (ix *Index) Len() int { return len(ix.rows) }

// At returns the row at position i in index order.
func (ix *Index) At(i int) Tuple { return ix.rows[i] }

// Rows returns the full ordered row slice (read-only use).
func (ix *Index) Rows() []Tuple { return ix.rows }

// FullMask returns the bitmask selecting all arity attributes, the mask
// of the distinguished total index.
func FullMask(arity int) uint64 {
	if arity >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(arity)) - 1
}
