package interp

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"ramalg/internal/domain"
	"ramalg/internal/profile"
	"ramalg/internal/ram"
	"ramalg/internal/relation"
	"ramalg/internal/rerrors"
)

// EvalStatement runs a RAM statement node against ctx and reports its
// boolean result (true except where noted below), grounded on
// StatementEvaluator::visit* in original_source/src/Interpreter.cpp.
func EvalStatement(ctx *Context, s ram.Statement) bool {
	switch n := s.(type) {
	case *ram.Sequence:
		for _, st := range n.Stmts {
			if !EvalStatement(ctx, st) {
				return false
			}
		}
		return true

	case *ram.Parallel:
		return evalParallel(ctx, n)

	case *ram.Loop:
		prev := ctx.iteration
		ctx.iteration = 0
		for EvalStatement(ctx, n.Body) {
			ctx.iteration++
		}
		ctx.iteration = prev
		return true

	case *ram.Exit:
		return !EvalCondition(ctx, n.Cond)

	case *ram.Create:
		ctx.EnsureRelation(n.Relation)
		return true

	case *ram.Clear:
		if r := ctx.Relation(n.Relation); r != nil {
			r.Purge()
		}
		return true

	case *ram.Drop:
		ctx.DropRelation(n.Relation)
		return true

	case *ram.LogSize:
		if r := ctx.Relation(n.Relation); r != nil {
			ctx.Profile.Record(profile.Event{Kind: "size", Message: n.Message, Relation: n.Relation, Size: r.Size()})
			if ctx.Verbose {
				fmt.Fprintf(os.Stderr, "%s: %s tuples\n", n.Message, rerrors.HumanCount(r.Size()))
			}
		}
		return true

	case *ram.LogTimer:
		var sizeFn func() int
		if n.RelationHint != "" {
			sizeFn = func() int {
				if r := ctx.Relation(n.RelationHint); r != nil {
					return r.Size()
				}
				return 0
			}
		}
		defer profile.Timer(ctx.Profile, n.Message, n.RelationHint, ctx.iteration, sizeFn)()
		return EvalStatement(ctx, n.Inner)

	case *ram.DebugInfo:
		prev := ctx.lastDebug
		ctx.lastDebug = n.Message
		// Restored on the normal path only: a fatal unwind keeps the
		// innermost message as the breadcrumb for the recover handler.
		ok := EvalStatement(ctx, n.Inner)
		ctx.lastDebug = prev
		return ok

	case *ram.Stratum:
		if ctx.reads != nil {
			for _, name := range createdRelations(n.Body) {
				if !strings.HasPrefix(name, "@") {
					ctx.Profile.Record(profile.Event{Kind: "stratum", Relation: name, Stratum: n.Index})
				}
			}
		}
		return EvalStatement(ctx, n.Body)

	case *ram.Load:
		r := ctx.EnsureRelation(n.Relation)
		for _, idx := range n.Directives {
			ctx.IO.Load(idx, ctx.Symbols, r)
		}
		return true

	case *ram.Store:
		r := ctx.Relation(n.Relation)
		if r == nil {
			return true
		}
		for _, idx := range n.Directives {
			ctx.IO.Store(idx, ctx.Symbols, r)
		}
		return true

	case *ram.Fact:
		r := ctx.EnsureRelation(n.Relation)
		tuple := make([]domain.RamDomain, len(n.Values))
		for i, v := range n.Values {
			tuple[i] = EvalValue(ctx, v)
		}
		r.Insert(tuple)
		return true

	case *ram.Insert:
		if n.Cond != nil && !EvalCondition(ctx, n.Cond) {
			return true
		}
		EvalOperation(ctx, n.Op)
		return true

	case *ram.Merge:
		evalMerge(ctx, n)
		return true

	case *ram.Swap:
		ctx.SwapRelations(n.A, n.B)
		return true

	case *ram.LatNorm:
		evalLatNorm(ctx, n)
		return true

	case *ram.LatClean:
		evalLatClean(ctx, n)
		return true

	default:
		rerrors.Structural("unhandled statement node %T", s)
		return false
	}
}

// createdRelations collects the relation names Create'd anywhere within
// s, for stratum profiling records.
func createdRelations(s ram.Statement) []string {
	var names []string
	var walk func(n ram.Node)
	walk = func(n ram.Node) {
		if c, ok := n.(*ram.Create); ok {
			names = append(names, c.Relation)
		}
		for _, child := range n.Children() {
			walk(child)
		}
	}
	if s != nil {
		walk(s)
	}
	return names
}

func evalMerge(ctx *Context, n *ram.Merge) {
	src := ctx.Relation(n.Src)
	tgt := ctx.Relation(n.Tgt)
	if src == nil || tgt == nil {
		return
	}
	// For an equivalence target, src first extends itself with tgt's
	// closure so the insert below carries the full congruence; the
	// target's own InsertRelation re-closes regardless.
	if _, isEq := tgt.(*relation.EquivalenceRelation); isEq {
		if se, ok := src.(*relation.EquivalenceRelation); ok {
			se.Extend(relation.AsRelation(tgt))
		}
	}
	tgt.InsertRelation(relation.AsRelation(src))
}

// evalParallel forks Stmts across goroutines and AND-reduces their
// results, grounded on Interpreter::visitParallel's OpenMP
// reduction(&&:cond); each branch runs against its own shallow Context
// (independent frame stack, same relations/symbols/records/counter) so
// concurrent binds at the same depth in different branches cannot race.
func evalParallel(ctx *Context, p *ram.Parallel) bool {
	results := make([]bool, len(p.Stmts))
	var g errgroup.Group
	if ctx.Jobs > 0 {
		g.SetLimit(ctx.Jobs)
	}
	for i, st := range p.Stmts {
		i, st := i, st
		g.Go(func() error {
			branch := ctx.fork()
			results[i] = EvalStatement(branch, st)
			return nil
		})
	}
	_ = g.Wait()
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}
