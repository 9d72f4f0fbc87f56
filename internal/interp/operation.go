package interp

import (
	"ramalg/internal/domain"
	"ramalg/internal/ram"
	"ramalg/internal/rerrors"
)

// EvalOperation runs a RAM operation node against ctx, grounded on
// OperationEvaluator::visit* in original_source/src/Interpreter.cpp.
func EvalOperation(ctx *Context, op ram.Operation) {
	switch n := op.(type) {
	case *ram.Scan:
		evalScan(ctx, n)
	case *ram.IndexScan:
		evalIndexScan(ctx, n)
	case *ram.Lookup:
		evalLookup(ctx, n)
	case *ram.Aggregate:
		evalAggregate(ctx, n)
	case *ram.Filter:
		if EvalCondition(ctx, n.Cond) {
			EvalOperation(ctx, n.Inner)
		}
	case *ram.Project:
		evalProject(ctx, n)
	case *ram.Return:
		evalReturn(ctx, n)
	default:
		rerrors.Structural("unhandled operation node %T", op)
	}
}

func evalScan(ctx *Context, n *ram.Scan) {
	r := ctx.Relation(n.Relation)
	if r == nil {
		return
	}
	for _, row := range r.TotalIndex().Rows() {
		ctx.Bind(n.Depth, row)
		EvalOperation(ctx, n.Inner)
	}
}

func evalIndexScan(ctx *Context, n *ram.IndexScan) {
	r := ctx.Relation(n.Relation)
	if r == nil {
		return
	}
	mask := ctx.Tables.IndexScanMask(n)
	low, high := boundTuples(ctx, n.Pattern, r.Arity())
	for _, row := range r.GetIndex(mask).Range(low, high) {
		ctx.Bind(n.Depth, row)
		EvalOperation(ctx, n.Inner)
	}
}

func evalLookup(ctx *Context, n *ram.Lookup) {
	handle := ctx.Element(n.SrcDepth, n.SrcCol)
	if handle == domain.NullRecord {
		return
	}
	tuple := ctx.Records.Unpack(handle, n.Arity)
	ctx.Bind(n.Depth, tuple)
	EvalOperation(ctx, n.Inner)
}

func evalAggregate(ctx *Context, n *ram.Aggregate) {
	r := ctx.Relation(n.Relation)
	if r == nil {
		return
	}
	mask := ctx.Tables.IndexScanMask(n)
	low, high := boundTuples(ctx, n.Pattern, r.Arity())
	rows := r.GetIndex(mask).Range(low, high)

	if len(rows) == 0 && n.Func != ram.AggCount {
		return
	}

	var result domain.RamDomain
	switch n.Func {
	case ram.AggCount:
		result = domain.RamDomain(len(rows))
	case ram.AggSum:
		for _, row := range rows {
			ctx.Bind(n.Depth, row)
			result += EvalValue(ctx, n.TargetExpr)
		}
	case ram.AggMin:
		result = domain.MaxDomain
		for _, row := range rows {
			ctx.Bind(n.Depth, row)
			if v := EvalValue(ctx, n.TargetExpr); v < result {
				result = v
			}
		}
	case ram.AggMax:
		result = domain.MinDomain
		for _, row := range rows {
			ctx.Bind(n.Depth, row)
			if v := EvalValue(ctx, n.TargetExpr); v > result {
				result = v
			}
		}
	default:
		rerrors.Structural("unhandled aggregate function %d", n.Func)
		return
	}

	ctx.Bind(n.Depth, []domain.RamDomain{result})
	EvalOperation(ctx, n.Inner)
}

func evalProject(ctx *Context, n *ram.Project) {
	r := ctx.Relation(n.Relation)
	if r == nil {
		return
	}
	tuple := make([]domain.RamDomain, len(n.Values))
	for i, v := range n.Values {
		tuple[i] = EvalValue(ctx, v)
	}
	r.Insert(tuple)
}

func evalReturn(ctx *Context, n *ram.Return) {
	for _, v := range n.Values {
		if v == nil {
			ctx.AppendReturn(0, true)
			continue
		}
		ctx.AppendReturn(EvalValue(ctx, v), false)
	}
}
