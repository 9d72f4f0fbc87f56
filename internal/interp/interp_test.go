package interp

import (
	"sync"
	"testing"

	"ramalg/internal/analysis"
	"ramalg/internal/domain"
	"ramalg/internal/ffi"
	"ramalg/internal/iostore"
	"ramalg/internal/profile"
	"ramalg/internal/program"
	"ramalg/internal/ram"
	"ramalg/internal/relation"
)

// Test helpers: build a program around a main statement and run it in a
// fresh context.

func testProgram(specs []relation.Spec, main ram.Statement) *program.Program {
	p := program.New()
	for _, s := range specs {
		p.Relations[s.Name] = s
	}
	p.Main = main
	return p
}

func newTestContext(p *program.Program) *Context {
	tables := analysis.Build(p.Main, p.Subroutines)
	return NewContext(p, tables, iostore.NewRegistry(), profile.NopRecorder{}, ffi.NewBridge(nil))
}

func run(t *testing.T, p *program.Program) *Context {
	t.Helper()
	ctx := newTestContext(p)
	if !EvalStatement(ctx, p.Main) {
		t.Fatal("main statement returned false")
	}
	return ctx
}

func num(v int32) *ram.Number { return &ram.Number{Constant: v} }

func el(depth, col int) *ram.ElementAccess { return &ram.ElementAccess{Depth: depth, Column: col} }

func factOf(rel string, vals ...int32) *ram.Fact {
	values := make([]ram.Value, len(vals))
	for i, v := range vals {
		values[i] = num(v)
	}
	return &ram.Fact{Relation: rel, Values: values}
}

func wantTuples(t *testing.T, ctx *Context, rel string, tuples ...[]domain.RamDomain) {
	t.Helper()
	r := ctx.Relation(rel)
	if r.Size() != len(tuples) {
		t.Fatalf("%s has %d tuples, want %d: %v", rel, r.Size(), len(tuples), r.Snapshot())
	}
	for _, tup := range tuples {
		if !r.Exists(tup) {
			t.Fatalf("%s is missing tuple %v: has %v", rel, tup, r.Snapshot())
		}
	}
}

// captureRecorder collects profile events for assertions.
type captureRecorder struct {
	mu     sync.Mutex
	events []profile.Event
}

func (c *captureRecorder) Record(ev profile.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureRecorder) byKind(kind string) []profile.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []profile.Event
	for _, ev := range c.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Semi-naive transitive closure over edge = {(1,2),(2,3),(3,4)}.
func TestTransitiveClosure(t *testing.T) {
	specs := []relation.Spec{
		{Name: "edge", Arity: 2},
		{Name: "tc", Arity: 2},
		{Name: "delta", Arity: 2},
		{Name: "new", Arity: 2},
	}

	copyEdges := &ram.Insert{Op: &ram.Scan{
		Relation: "edge", Depth: 0,
		Inner: &ram.Project{Relation: "tc", Values: []ram.Value{el(0, 0), el(0, 1)}},
	}}

	// new(x,y) :- edge(x,z), delta(z,y), !tc(x,y).
	rule := &ram.Insert{Op: &ram.Scan{
		Relation: "edge", Depth: 0,
		Inner: &ram.IndexScan{
			Relation: "delta", Depth: 1,
			Pattern: []ram.Value{el(0, 1), nil},
			Inner: &ram.Filter{
				Cond: &ram.Negation{Operand: &ram.ExistenceCheck{
					Relation: "tc",
					Pattern:  []ram.Value{el(0, 0), el(1, 1)},
				}},
				Inner: &ram.Project{Relation: "new", Values: []ram.Value{el(0, 0), el(1, 1)}},
			},
		},
	}}

	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "edge"},
		&ram.Create{Relation: "tc"},
		&ram.Create{Relation: "delta"},
		&ram.Create{Relation: "new"},
		factOf("edge", 1, 2),
		factOf("edge", 2, 3),
		factOf("edge", 3, 4),
		copyEdges,
		&ram.Merge{Src: "tc", Tgt: "delta"},
		&ram.Loop{Body: &ram.Sequence{Stmts: []ram.Statement{
			rule,
			&ram.Exit{Cond: &ram.EmptinessCheck{Relation: "new"}},
			&ram.Merge{Src: "new", Tgt: "tc"},
			&ram.Swap{A: "delta", B: "new"},
			&ram.Clear{Relation: "new"},
		}}},
	}}

	ctx := run(t, testProgram(specs, main))
	wantTuples(t, ctx, "tc",
		[]domain.RamDomain{1, 2}, []domain.RamDomain{2, 3}, []domain.RamDomain{3, 4},
		[]domain.RamDomain{1, 3}, []domain.RamDomain{2, 4}, []domain.RamDomain{1, 4})
}

// Aggregate MIN/COUNT over R = {(1,5),(1,3),(1,9),(2,7)} with pattern (k,_).
func TestAggregateMinCount(t *testing.T) {
	specs := []relation.Spec{
		{Name: "R", Arity: 2},
		{Name: "out", Arity: 1},
	}

	agg := func(fn ram.AggregateFunc, key int32) ram.Statement {
		var target ram.Value
		if fn != ram.AggCount {
			target = el(0, 1)
		}
		return &ram.Insert{Op: &ram.Aggregate{
			Relation: "R", Depth: 0, Func: fn, TargetExpr: target,
			Pattern: []ram.Value{num(key), nil},
			Inner:   &ram.Project{Relation: "out", Values: []ram.Value{el(0, 0)}},
		}}
	}

	base := []ram.Statement{
		&ram.Create{Relation: "R"},
		&ram.Create{Relation: "out"},
		factOf("R", 1, 5), factOf("R", 1, 3), factOf("R", 1, 9), factOf("R", 2, 7),
	}

	tests := []struct {
		name string
		stmt ram.Statement
		want [][]domain.RamDomain
	}{
		{"min", agg(ram.AggMin, 1), [][]domain.RamDomain{{3}}},
		{"count", agg(ram.AggCount, 1), [][]domain.RamDomain{{3}}},
		{"sum", agg(ram.AggSum, 1), [][]domain.RamDomain{{17}}},
		{"max", agg(ram.AggMax, 1), [][]domain.RamDomain{{9}}},
		{"min empty prefix skips", agg(ram.AggMin, 3), nil},
		{"count empty prefix is zero", agg(ram.AggCount, 3), [][]domain.RamDomain{{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			main := &ram.Sequence{Stmts: append(append([]ram.Statement{}, base...), tt.stmt)}
			ctx := run(t, testProgram(specs, main))
			wantTuples(t, ctx, "out", tt.want...)
		})
	}
}

// Two Parallel children over disjoint relations produce the same result
// as running them sequentially in either order.
func TestParallelIndependence(t *testing.T) {
	specs := []relation.Spec{
		{Name: "A", Arity: 1}, {Name: "B", Arity: 1},
		{Name: "OA", Arity: 1}, {Name: "OB", Arity: 1},
	}

	child := func(in, out string) ram.Statement {
		return &ram.Insert{Op: &ram.Scan{
			Relation: in, Depth: 0,
			Inner: &ram.Project{Relation: out, Values: []ram.Value{el(0, 0)}},
		}}
	}

	setup := []ram.Statement{
		&ram.Create{Relation: "A"}, &ram.Create{Relation: "B"},
		&ram.Create{Relation: "OA"}, &ram.Create{Relation: "OB"},
		factOf("A", 1), factOf("A", 2),
		factOf("B", 3), factOf("B", 4),
	}

	for _, mode := range []string{"parallel", "sequential", "sequential reversed"} {
		t.Run(mode, func(t *testing.T) {
			var body ram.Statement
			switch mode {
			case "parallel":
				body = &ram.Parallel{Stmts: []ram.Statement{child("A", "OA"), child("B", "OB")}}
			case "sequential":
				body = &ram.Sequence{Stmts: []ram.Statement{child("A", "OA"), child("B", "OB")}}
			default:
				body = &ram.Sequence{Stmts: []ram.Statement{child("B", "OB"), child("A", "OA")}}
			}
			main := &ram.Sequence{Stmts: append(append([]ram.Statement{}, setup...), body)}
			ctx := run(t, testProgram(specs, main))
			wantTuples(t, ctx, "OA", []domain.RamDomain{1}, []domain.RamDomain{2})
			wantTuples(t, ctx, "OB", []domain.RamDomain{3}, []domain.RamDomain{4})
		})
	}
}

func TestParallelAndReduction(t *testing.T) {
	specs := []relation.Spec{{Name: "empty", Arity: 1}}
	main := &ram.Sequence{Stmts: []ram.Statement{&ram.Create{Relation: "empty"}}}
	p := testProgram(specs, main)
	ctx := run(t, p)

	par := &ram.Parallel{Stmts: []ram.Statement{
		&ram.Exit{Cond: &ram.EmptinessCheck{Relation: "empty"}},
		&ram.Sequence{},
	}}
	if EvalStatement(ctx, par) {
		t.Fatal("Parallel should AND-reduce a false child result to false")
	}
}

// AutoIncrement across N projections yields a contiguous strictly
// increasing first column.
func TestAutoIncrementContiguous(t *testing.T) {
	specs := []relation.Spec{
		{Name: "R", Arity: 1},
		{Name: "out", Arity: 2},
	}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "R"},
		&ram.Create{Relation: "out"},
		factOf("R", 10), factOf("R", 20), factOf("R", 30), factOf("R", 40), factOf("R", 50),
		&ram.Insert{Op: &ram.Scan{
			Relation: "R", Depth: 0,
			Inner: &ram.Project{Relation: "out", Values: []ram.Value{&ram.AutoIncrement{}, el(0, 0)}},
		}},
	}}
	ctx := run(t, testProgram(specs, main))

	out := ctx.Relation("out")
	if out.Size() != 5 {
		t.Fatalf("out has %d tuples, want 5", out.Size())
	}
	seen := make(map[domain.RamDomain]bool)
	for _, tup := range out.Snapshot() {
		seen[tup[0]] = true
	}
	for i := domain.RamDomain(0); i < 5; i++ {
		if !seen[i] {
			t.Fatalf("missing counter value %d in %v", i, out.Snapshot())
		}
	}
}

func TestSwapInvolution(t *testing.T) {
	specs := []relation.Spec{{Name: "A", Arity: 1}, {Name: "B", Arity: 1}}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "A"},
		&ram.Create{Relation: "B"},
		factOf("A", 1),
		factOf("B", 2),
	}}
	ctx := run(t, testProgram(specs, main))

	swap := &ram.Swap{A: "A", B: "B"}
	EvalStatement(ctx, swap)
	if !ctx.Relation("A").Exists([]domain.RamDomain{2}) || !ctx.Relation("B").Exists([]domain.RamDomain{1}) {
		t.Fatal("swap did not exchange relation contents")
	}
	EvalStatement(ctx, swap)
	if !ctx.Relation("A").Exists([]domain.RamDomain{1}) || !ctx.Relation("B").Exists([]domain.RamDomain{2}) {
		t.Fatal("double swap did not restore initial state")
	}
}

func TestMergeSubset(t *testing.T) {
	specs := []relation.Spec{{Name: "src", Arity: 2}, {Name: "tgt", Arity: 2}}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "src"},
		&ram.Create{Relation: "tgt"},
		factOf("src", 1, 2), factOf("src", 3, 4),
		factOf("tgt", 5, 6),
		&ram.Merge{Src: "src", Tgt: "tgt"},
	}}
	ctx := run(t, testProgram(specs, main))
	wantTuples(t, ctx, "tgt",
		[]domain.RamDomain{1, 2}, []domain.RamDomain{3, 4}, []domain.RamDomain{5, 6})
}

// Inserting (a,b) into an equivalence relation closes it under
// reflexivity, symmetry, and transitivity.
func TestEquivalenceMerge(t *testing.T) {
	specs := []relation.Spec{{Name: "eq", Arity: 2, Equivalence: true}}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "eq"},
		factOf("eq", 1, 2),
	}}
	ctx := run(t, testProgram(specs, main))

	eq := ctx.Relation("eq")
	for _, tup := range [][]domain.RamDomain{{1, 1}, {2, 2}, {1, 2}, {2, 1}} {
		if !eq.Exists(tup) {
			t.Fatalf("equivalence relation missing %v: has %v", tup, eq.Snapshot())
		}
	}
}

func TestExecuteSubroutine(t *testing.T) {
	specs := []relation.Spec{{Name: "R", Arity: 2}}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "R"},
		factOf("R", 7, 8),
	}}
	p := testProgram(specs, main)
	p.Subroutines["probe"] = &ram.Insert{Op: &ram.Scan{
		Relation: "R", Depth: 0,
		Inner: &ram.Return{Values: []ram.Value{el(0, 0), &ram.Argument{Index: 0}, nil}},
	}}

	ctx := newTestContext(p)
	if !EvalStatement(ctx, p.Main) {
		t.Fatal("main failed")
	}

	rets := ExecuteSubroutine(ctx, p.Subroutines["probe"], []int32{42})
	want := []ReturnValue{{Value: 7}, {Value: 42}, {Value: 0, IsNull: true}}
	if len(rets) != len(want) {
		t.Fatalf("got %d return values, want %d: %v", len(rets), len(want), rets)
	}
	for i := range want {
		if rets[i] != want[i] {
			t.Fatalf("return %d = %v, want %v", i, rets[i], want[i])
		}
	}
}

func TestExecuteSubroutineRejectsNonInsert(t *testing.T) {
	p := testProgram(nil, &ram.Sequence{})
	ctx := newTestContext(p)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a structural error for a non-Insert subroutine")
		}
	}()
	ExecuteSubroutine(ctx, &ram.Sequence{}, nil)
}

func TestLoopExitAndClear(t *testing.T) {
	// A loop whose body exits immediately once R is empty; Clear empties it.
	specs := []relation.Spec{{Name: "R", Arity: 1}}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "R"},
		factOf("R", 1),
		&ram.Loop{Body: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Exit{Cond: &ram.EmptinessCheck{Relation: "R"}},
			&ram.Clear{Relation: "R"},
		}}},
	}}
	ctx := run(t, testProgram(specs, main))
	if !ctx.Relation("R").Empty() {
		t.Fatal("R should have been cleared before the loop exited")
	}
}

func TestDropRemovesRelation(t *testing.T) {
	specs := []relation.Spec{{Name: "R", Arity: 1}}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "R"},
		&ram.Drop{Relation: "R"},
	}}
	ctx := run(t, testProgram(specs, main))
	defer func() {
		if recover() == nil {
			t.Fatal("expected a structural error referencing a dropped relation")
		}
	}()
	ctx.Relation("R")
}

// The last two attributes (provenance height, rule id) are wildcards
// even when the pattern binds them to values no stored tuple carries.
func TestProvenanceExistenceIgnoresLastTwoColumns(t *testing.T) {
	specs := []relation.Spec{
		{Name: "P", Arity: 4},
		{Name: "out", Arity: 1},
	}

	probe := func(marker int32, pattern ...ram.Value) ram.Statement {
		return &ram.Insert{
			Cond: &ram.ProvenanceExistenceCheck{Relation: "P", Pattern: pattern},
			Op:   &ram.Project{Relation: "out", Values: []ram.Value{num(marker)}},
		}
	}

	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "P"},
		&ram.Create{Relation: "out"},
		factOf("P", 1, 2, 10, 20),
		// Provenance columns bound to values no tuple carries: still a hit.
		probe(1, num(1), num(2), num(99), num(99)),
		// A non-provenance prefix column still filters.
		probe(2, num(1), num(3), nil, nil),
	}}

	ctx := run(t, testProgram(specs, main))
	wantTuples(t, ctx, "out", []domain.RamDomain{1})
}

func TestProfileEvents(t *testing.T) {
	specs := []relation.Spec{
		{Name: "R", Arity: 1},
		{Name: "@tmp", Arity: 1},
	}
	main := &ram.Stratum{Index: 3, Body: &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "R"},
		&ram.Create{Relation: "@tmp"},
		factOf("R", 1),
		&ram.LogTimer{Message: "fill", RelationHint: "R", Inner: &ram.LogSize{Relation: "R", Message: "size-of-R"}},
		// one existence check against each relation; only R should count.
		&ram.Insert{
			Cond: &ram.ExistenceCheck{Relation: "R", Pattern: []ram.Value{num(1)}},
			Op:   &ram.Project{Relation: "@tmp", Values: []ram.Value{num(9)}},
		},
		&ram.Insert{
			Cond: &ram.ExistenceCheck{Relation: "@tmp", Pattern: []ram.Value{num(9)}},
			Op:   &ram.Project{Relation: "@tmp", Values: []ram.Value{num(10)}},
		},
	}}}

	p := testProgram(specs, main)
	rec := &captureRecorder{}
	ctx := NewContext(p, analysis.Build(p.Main, nil), iostore.NewRegistry(), rec, ffi.NewBridge(nil))
	if !EvalStatement(ctx, p.Main) {
		t.Fatal("main failed")
	}
	ctx.FlushReads()

	strata := rec.byKind("stratum")
	if len(strata) != 1 || strata[0].Relation != "R" || strata[0].Stratum != 3 {
		t.Fatalf("stratum events = %+v, want one for R in stratum 3", strata)
	}
	sizes := rec.byKind("size")
	if len(sizes) != 1 || sizes[0].Relation != "R" || sizes[0].Size != 1 {
		t.Fatalf("size events = %+v, want one for R with size 1", sizes)
	}
	if timers := rec.byKind("timer"); len(timers) != 1 || timers[0].Message != "fill" {
		t.Fatalf("timer events = %+v, want one for \"fill\"", timers)
	}
	reads := rec.byKind("read")
	if len(reads) != 1 || reads[0].Relation != "R" || reads[0].Count != 1 {
		t.Fatalf("read events = %+v, want a single count for R only", reads)
	}
	if reads[0].Message != "@relation-reads;R" {
		t.Fatalf("read event message = %q", reads[0].Message)
	}
}
