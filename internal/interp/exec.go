package interp

import (
	"fmt"
	"os"

	"ramalg/internal/domain"
	"ramalg/internal/profile"
	"ramalg/internal/ram"
	"ramalg/internal/rerrors"
)

// ExecuteMain runs ctx.Program.Main to completion (or until a fatal
// error aborts the process via rerrors.Recover), flushing flush on
// either path. The whole run is bracketed by a timer event, and
// accumulated existence-check read counters are emitted before the
// flush. Mutated relations and Store side effects are observable
// through ctx afterward.
func ExecuteMain(ctx *Context, flush func()) {
	defer rerrors.Recover(func() {
		if msg := ctx.LastDebug(); msg != "" {
			fmt.Fprintf(os.Stderr, "last debug info: %s\n", msg)
		}
		if flush != nil {
			flush()
		}
	})
	done := profile.Timer(ctx.Profile, "@runtime;", "", 0, nil)
	EvalStatement(ctx, ctx.Program.Main)
	done()
	ctx.FlushReads()
	if flush != nil {
		flush()
	}
}

// ExecuteSubroutine runs stmt — which must be an Insert — once in a
// fresh context seeded with args, returning the (value,isNull) pairs
// appended by every Return operation it reaches, in visit order (spec.md
// §6 "Subroutine entry").
func ExecuteSubroutine(ctx *Context, stmt ram.Statement, args []int32) []ReturnValue {
	insert, ok := stmt.(*ram.Insert)
	if !ok {
		rerrors.Structural("execute_subroutine: statement must be Insert, got %T", stmt)
		return nil
	}
	sub := ctx.fork()
	sub.frame = make([][]domain.RamDomain, len(ctx.frame))
	sub.args = args
	if insert.Cond != nil && !EvalCondition(sub, insert.Cond) {
		return nil
	}
	EvalOperation(sub, insert.Op)
	return sub.Returns()
}
