package interp

import (
	"ramalg/internal/domain"
	"ramalg/internal/lattice"
	"ramalg/internal/rerrors"
)

// evalUnaryCase walks fn's case table with arg bound as subroutine
// argument 0 (so Match conditions and the Output value can reference it
// via an Argument node), returning the first matching case's Output,
// grounded on Interpreter::visitLatticeUnaryFunctor.
func evalUnaryCase(ctx *Context, fn *lattice.UnaryFunction, arg domain.RamDomain) domain.RamDomain {
	restore := ctx.BeginSubroutine([]domain.RamDomain{arg})
	defer restore()
	for _, c := range fn.Cases {
		if c.Match == nil || EvalCondition(ctx, c.Match) {
			return EvalValue(ctx, c.Output)
		}
	}
	rerrors.Structural("lattice unary function %q: no case matched", fn.Name)
	return 0
}

// evalBinaryCase walks fn's case table with a,b bound as subroutine
// arguments 0 and 1, grounded on Interpreter::visitLatticeBinaryFunctor
// / visitLatticeGLB's reuse of the same case-table machinery for LUB.
func evalBinaryCase(ctx *Context, fn *lattice.BinaryFunction, a, b domain.RamDomain) domain.RamDomain {
	restore := ctx.BeginSubroutine([]domain.RamDomain{a, b})
	defer restore()
	for _, c := range fn.Cases {
		if c.Match == nil || EvalCondition(ctx, c.Match) {
			return EvalValue(ctx, c.Output)
		}
	}
	rerrors.Structural("lattice binary function %q: no case matched", fn.Name)
	return 0
}
