package interp

import (
	"ramalg/internal/domain"
	"ramalg/internal/ram"
	"ramalg/internal/rerrors"
)

// EvalValue evaluates a RAM value node against ctx, grounded on
// ValueEvaluator::visit* in original_source/src/Interpreter.cpp.
func EvalValue(ctx *Context, v ram.Value) domain.RamDomain {
	switch n := v.(type) {
	case *ram.Number:
		return domain.RamDomain(n.Constant)
	case *ram.ElementAccess:
		return ctx.Element(n.Depth, n.Column)
	case *ram.AutoIncrement:
		return ctx.NextAuto()
	case *ram.IntrinsicOperator:
		return evalIntrinsic(ctx, n)
	case *ram.UserDefinedOperator:
		args := make([]domain.RamDomain, len(n.Args))
		for i, a := range n.Args {
			args[i] = EvalValue(ctx, a)
		}
		return ctx.FFI.Call(n.Name, n.TypeSig, args, ctx.Symbols)
	case *ram.Pack:
		args := make([]domain.RamDomain, len(n.Args))
		for i, a := range n.Args {
			args[i] = EvalValue(ctx, a)
		}
		return ctx.Records.Pack(args)
	case *ram.Argument:
		return ctx.Argument(n.Index)
	case *ram.QuestionMark:
		if EvalCondition(ctx, n.Cond) {
			return EvalValue(ctx, n.Then)
		}
		return EvalValue(ctx, n.Else)
	case *ram.LatticeGLB:
		return evalLatticeGLB(ctx, n)
	case *ram.LatticeUnaryFunctor:
		fn, ok := ctx.Lattice.Unary[n.Func]
		if !ok {
			rerrors.Structural("lattice unary functor %q is not declared", n.Func)
			return 0
		}
		return evalUnaryCase(ctx, fn, EvalValue(ctx, n.Ref))
	case *ram.LatticeBinaryFunctor:
		fn, ok := ctx.Lattice.Binary[n.Func]
		if !ok {
			rerrors.Structural("lattice binary functor %q is not declared", n.Func)
			return 0
		}
		return evalBinaryCase(ctx, fn, EvalValue(ctx, n.Ref1), EvalValue(ctx, n.Ref2))
	default:
		rerrors.Structural("unhandled value node %T", v)
		return 0
	}
}

func evalLatticeGLB(ctx *Context, n *ram.LatticeGLB) domain.RamDomain {
	if len(n.Refs) == 0 {
		return domain.RamDomain(ctx.Lattice.Top)
	}
	acc := ctx.Element(n.Refs[0].Depth, n.Refs[0].Column)
	for _, ref := range n.Refs[1:] {
		val := ctx.Element(ref.Depth, ref.Column)
		acc = evalBinaryCase(ctx, ctx.Lattice.GLB, acc, val)
	}
	return acc
}

func evalIntrinsic(ctx *Context, n *ram.IntrinsicOperator) domain.RamDomain {
	arg := func(i int) domain.RamDomain { return EvalValue(ctx, n.Args[i]) }

	switch n.Op {
	case ram.OpOrd:
		return arg(0)
	case ram.OpStrlen:
		return domain.RamDomain(len(ctx.Symbols.Resolve(arg(0))))
	case ram.OpNeg:
		return -arg(0)
	case ram.OpBnot:
		return ^arg(0)
	case ram.OpLnot:
		if arg(0) == 0 {
			return 1
		}
		return 0
	case ram.OpToNumber:
		s := ctx.Symbols.Resolve(arg(0))
		v, err := parseSignedInt(s)
		if err != nil {
			rerrors.Fatalf(rerrors.KindDomain, "to_number: %q is not a valid integer", s)
			return 0
		}
		return v
	case ram.OpToString:
		return ctx.Symbols.Lookup(formatSignedInt(arg(0)))
	case ram.OpAdd:
		return arg(0) + arg(1)
	case ram.OpSub:
		return arg(0) - arg(1)
	case ram.OpMul:
		return arg(0) * arg(1)
	case ram.OpDiv:
		b := arg(1)
		if b == 0 {
			rerrors.Fatalf(rerrors.KindDomain, "division by zero")
			return 0
		}
		return arg(0) / b
	case ram.OpExp:
		return intPow(arg(0), arg(1))
	case ram.OpMod:
		b := arg(1)
		if b == 0 {
			rerrors.Fatalf(rerrors.KindDomain, "modulo by zero")
			return 0
		}
		return arg(0) % b
	case ram.OpBand:
		return arg(0) & arg(1)
	case ram.OpBor:
		return arg(0) | arg(1)
	case ram.OpBxor:
		return arg(0) ^ arg(1)
	case ram.OpLand:
		if arg(0) != 0 && arg(1) != 0 {
			return 1
		}
		return 0
	case ram.OpLor:
		if arg(0) != 0 || arg(1) != 0 {
			return 1
		}
		return 0
	case ram.OpMax:
		a, b := arg(0), arg(1)
		if a > b {
			return a
		}
		return b
	case ram.OpMin:
		a, b := arg(0), arg(1)
		if a < b {
			return a
		}
		return b
	case ram.OpCat:
		return ctx.Symbols.Lookup(ctx.Symbols.Resolve(arg(0)) + ctx.Symbols.Resolve(arg(1)))
	case ram.OpSubstr:
		s := ctx.Symbols.Resolve(arg(0))
		start, length := int(arg(1)), int(arg(2))
		if start < 0 || length < 0 || start > len(s) || start+length > len(s) {
			rerrors.Warnf("substr(%q,%d,%d): out of range, returning empty string", s, start, length)
			return ctx.Symbols.Lookup("")
		}
		return ctx.Symbols.Lookup(s[start : start+length])
	default:
		rerrors.Structural("unhandled intrinsic operator %d", n.Op)
		return 0
	}
}

func intPow(base, exp domain.RamDomain) domain.RamDomain {
	if exp < 0 {
		return 0
	}
	var result domain.RamDomain = 1
	for i := domain.RamDomain(0); i < exp; i++ {
		result *= base
	}
	return result
}
