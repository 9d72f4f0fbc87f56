package interp

import (
	"regexp"
	"strings"

	"ramalg/internal/domain"
	"ramalg/internal/ram"
	"ramalg/internal/rerrors"
)

// EvalCondition evaluates a RAM condition node against ctx, grounded on
// ConditionEvaluator::visit* in original_source/src/Interpreter.cpp.
func EvalCondition(ctx *Context, c ram.Condition) bool {
	switch n := c.(type) {
	case *ram.Conjunction:
		return EvalCondition(ctx, n.LHS) && EvalCondition(ctx, n.RHS)
	case *ram.Negation:
		return !EvalCondition(ctx, n.Operand)
	case *ram.EmptinessCheck:
		r := ctx.Relation(n.Relation)
		return r == nil || r.Empty()
	case *ram.ExistenceCheck:
		return evalExistence(ctx, n.Relation, n.Pattern, ctx.Tables.Existence(n))
	case *ram.ProvenanceExistenceCheck:
		return evalProvenanceExistence(ctx, n)
	case *ram.Constraint:
		return evalConstraint(ctx, n)
	default:
		rerrors.Structural("unhandled condition node %T", c)
		return false
	}
}

func evalExistence(ctx *Context, relName string, pattern []ram.Value, mask uint64) bool {
	r := ctx.Relation(relName)
	if r == nil {
		return false
	}
	ctx.NoteRead(relName)
	arity := r.Arity()
	if mask == (1<<uint(arity))-1 && arity < 64 {
		full := make([]domain.RamDomain, arity)
		for i, v := range pattern {
			full[i] = EvalValue(ctx, v)
		}
		return r.Exists(full)
	}
	low, high := boundTuples(ctx, pattern, arity)
	ix := r.GetIndex(mask)
	begin, end := ix.LowerUpperBound(low, high)
	return end > begin
}

func evalProvenanceExistence(ctx *Context, n *ram.ProvenanceExistenceCheck) bool {
	r := ctx.Relation(n.Relation)
	if r == nil {
		return false
	}
	ctx.NoteRead(n.Relation)
	arity := r.Arity()
	mask := ctx.Tables.Provenance(n)
	// the last two attributes (provenance height, rule id) are always
	// wildcard regardless of what Pattern or the analysis recorded.
	for i := arity - 2; i < arity; i++ {
		if i >= 0 && i < 64 {
			mask &^= 1 << uint(i)
		}
	}
	low, high := boundTuples(ctx, n.Pattern, arity)
	for i := arity - 2; i < arity; i++ {
		if i >= 0 {
			low[i], high[i] = domain.MinDomain, domain.MaxDomain
		}
	}
	ix := r.GetIndex(mask)
	begin, end := ix.LowerUpperBound(low, high)
	return end > begin
}

func boundTuples(ctx *Context, pattern []ram.Value, arity int) (low, high []domain.RamDomain) {
	low = make([]domain.RamDomain, arity)
	high = make([]domain.RamDomain, arity)
	for i := 0; i < arity; i++ {
		if i < len(pattern) && pattern[i] != nil {
			v := EvalValue(ctx, pattern[i])
			low[i], high[i] = v, v
			continue
		}
		low[i] = domain.MinDomain
		high[i] = domain.MaxDomain
	}
	return low, high
}

func evalConstraint(ctx *Context, n *ram.Constraint) bool {
	switch n.Op {
	case ram.OpEQ:
		return EvalValue(ctx, n.LHS) == EvalValue(ctx, n.RHS)
	case ram.OpNE:
		return EvalValue(ctx, n.LHS) != EvalValue(ctx, n.RHS)
	case ram.OpLT:
		return EvalValue(ctx, n.LHS) < EvalValue(ctx, n.RHS)
	case ram.OpLE:
		return EvalValue(ctx, n.LHS) <= EvalValue(ctx, n.RHS)
	case ram.OpGT:
		return EvalValue(ctx, n.LHS) > EvalValue(ctx, n.RHS)
	case ram.OpGE:
		return EvalValue(ctx, n.LHS) >= EvalValue(ctx, n.RHS)
	case ram.OpMatch, ram.OpNotMatch:
		// LHS is the pattern, RHS the text under test.
		pattern := ctx.Symbols.Resolve(EvalValue(ctx, n.LHS))
		s := ctx.Symbols.Resolve(EvalValue(ctx, n.RHS))
		re, err := regexp.Compile(pattern)
		if err != nil {
			rerrors.Fatalf(rerrors.KindRegex, "invalid regex %q: %v", pattern, err)
			return false
		}
		matched := re.MatchString(s)
		if n.Op == ram.OpNotMatch {
			return !matched
		}
		return matched
	case ram.OpContains, ram.OpNotContains:
		sub := ctx.Symbols.Resolve(EvalValue(ctx, n.LHS))
		s := ctx.Symbols.Resolve(EvalValue(ctx, n.RHS))
		contains := strings.Contains(s, sub)
		if n.Op == ram.OpNotContains {
			return !contains
		}
		return contains
	default:
		rerrors.Structural("unhandled constraint operator %d", n.Op)
		return false
	}
}
