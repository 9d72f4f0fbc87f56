package interp

import (
	"testing"

	"ramalg/internal/domain"
	"ramalg/internal/ram"
	"ramalg/internal/relation"
	"ramalg/internal/rerrors"
)

func emptyCtx() *Context {
	return newTestContext(testProgram(nil, &ram.Sequence{}))
}

func sym(ctx *Context, s string) *ram.Number {
	return num(ctx.Symbols.Lookup(s))
}

func TestIntrinsicArithmetic(t *testing.T) {
	bin := func(op ram.IntrinsicOp, a, b int32) ram.Value {
		return &ram.IntrinsicOperator{Op: op, Args: []ram.Value{num(a), num(b)}}
	}
	un := func(op ram.IntrinsicOp, a int32) ram.Value {
		return &ram.IntrinsicOperator{Op: op, Args: []ram.Value{num(a)}}
	}

	tests := []struct {
		name string
		v    ram.Value
		want int32
	}{
		{"add", bin(ram.OpAdd, 2, 3), 5},
		{"sub", bin(ram.OpSub, 2, 3), -1},
		{"mul", bin(ram.OpMul, 4, 5), 20},
		{"div", bin(ram.OpDiv, 7, 2), 3},
		{"mod", bin(ram.OpMod, 7, 2), 1},
		{"exp", bin(ram.OpExp, 2, 10), 1024},
		{"band", bin(ram.OpBand, 6, 3), 2},
		{"bor", bin(ram.OpBor, 6, 3), 7},
		{"bxor", bin(ram.OpBxor, 6, 3), 5},
		{"land", bin(ram.OpLand, 1, 0), 0},
		{"lor", bin(ram.OpLor, 1, 0), 1},
		{"max", bin(ram.OpMax, 4, 9), 9},
		{"min", bin(ram.OpMin, 4, 9), 4},
		{"neg", un(ram.OpNeg, 42), -42},
		{"bnot", un(ram.OpBnot, 0), -1},
		{"lnot", un(ram.OpLnot, 0), 1},
		{"ord", un(ram.OpOrd, 17), 17},
		// int32 overflow wraps.
		{"overflow wraps", bin(ram.OpAdd, 2147483647, 1), -2147483648},
	}

	ctx := emptyCtx()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvalValue(ctx, tt.v); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStringIntrinsics(t *testing.T) {
	ctx := emptyCtx()

	strlen := &ram.IntrinsicOperator{Op: ram.OpStrlen, Args: []ram.Value{sym(ctx, "hello world")}}
	if got := EvalValue(ctx, strlen); got != 11 {
		t.Fatalf("strlen = %d, want 11", got)
	}

	cat := &ram.IntrinsicOperator{Op: ram.OpCat, Args: []ram.Value{sym(ctx, "foo"), sym(ctx, "bar")}}
	if got := ctx.Symbols.Resolve(EvalValue(ctx, cat)); got != "foobar" {
		t.Fatalf("cat = %q, want foobar", got)
	}

	substr := &ram.IntrinsicOperator{Op: ram.OpSubstr, Args: []ram.Value{sym(ctx, "hello"), num(1), num(3)}}
	if got := ctx.Symbols.Resolve(EvalValue(ctx, substr)); got != "ell" {
		t.Fatalf("substr = %q, want ell", got)
	}

	// Out of range produces a warning and the empty string, not a panic.
	oob := &ram.IntrinsicOperator{Op: ram.OpSubstr, Args: []ram.Value{sym(ctx, "hello"), num(3), num(10)}}
	if got := ctx.Symbols.Resolve(EvalValue(ctx, oob)); got != "" {
		t.Fatalf("out-of-range substr = %q, want empty", got)
	}

	tonum := &ram.IntrinsicOperator{Op: ram.OpToNumber, Args: []ram.Value{sym(ctx, "-123")}}
	if got := EvalValue(ctx, tonum); got != -123 {
		t.Fatalf("tonumber = %d, want -123", got)
	}

	tostr := &ram.IntrinsicOperator{Op: ram.OpToString, Args: []ram.Value{num(45)}}
	if got := ctx.Symbols.Resolve(EvalValue(ctx, tostr)); got != "45" {
		t.Fatalf("tostring = %q, want 45", got)
	}
}

func TestStringConditions(t *testing.T) {
	ctx := emptyCtx()
	text := sym(ctx, "hello world")

	constraint := func(op ram.ConstraintOp, lhs string) *ram.Constraint {
		return &ram.Constraint{Op: op, LHS: sym(ctx, lhs), RHS: text}
	}

	tests := []struct {
		name string
		cond ram.Condition
		want bool
	}{
		{"match", constraint(ram.OpMatch, "hel.*"), true},
		{"notmatch", constraint(ram.OpNotMatch, "hel.*"), false},
		{"match anchored miss", constraint(ram.OpMatch, "^world"), false},
		{"contains hit", constraint(ram.OpContains, "hello"), true},
		{"contains miss", constraint(ram.OpContains, "x"), false},
		{"notcontains", constraint(ram.OpNotContains, "x"), true},
		// A broken pattern is a warning and evaluates false.
		{"bad regex is false", constraint(ram.OpMatch, "("), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvalCondition(ctx, tt.cond); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumericConstraints(t *testing.T) {
	ctx := emptyCtx()
	tests := []struct {
		op   ram.ConstraintOp
		a, b int32
		want bool
	}{
		{ram.OpEQ, 3, 3, true},
		{ram.OpNE, 3, 3, false},
		{ram.OpLT, 2, 3, true},
		{ram.OpLE, 3, 3, true},
		{ram.OpGT, 2, 3, false},
		{ram.OpGE, 3, 3, true},
	}
	for _, tt := range tests {
		c := &ram.Constraint{Op: tt.op, LHS: num(tt.a), RHS: num(tt.b)}
		if got := EvalCondition(ctx, c); got != tt.want {
			t.Fatalf("constraint(%d) %d vs %d = %v, want %v", tt.op, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestConjunctionShortCircuits(t *testing.T) {
	ctx := emptyCtx()
	// RHS references a relation that does not exist; it must never be
	// evaluated when the LHS is already false.
	c := &ram.Conjunction{
		LHS: &ram.Constraint{Op: ram.OpEQ, LHS: num(1), RHS: num(2)},
		RHS: &ram.EmptinessCheck{Relation: "no-such-relation"},
	}
	if EvalCondition(ctx, c) {
		t.Fatal("conjunction with false LHS should be false")
	}
}

func TestQuestionMark(t *testing.T) {
	ctx := emptyCtx()
	q := &ram.QuestionMark{
		Cond: &ram.Constraint{Op: ram.OpLT, LHS: num(1), RHS: num(2)},
		Then: num(10),
		Else: num(20),
	}
	if got := EvalValue(ctx, q); got != 10 {
		t.Fatalf("got %d, want 10", got)
	}
	q.Cond = &ram.Negation{Operand: q.Cond}
	if got := EvalValue(ctx, q); got != 20 {
		t.Fatalf("got %d, want 20", got)
	}
}

// Pack interns a record; a Lookup operation unpacks it back.
func TestPackAndLookup(t *testing.T) {
	specs := []relation.Spec{
		{Name: "refs", Arity: 1},
		{Name: "out", Arity: 2},
	}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "refs"},
		&ram.Create{Relation: "out"},
		&ram.Fact{Relation: "refs", Values: []ram.Value{&ram.Pack{Args: []ram.Value{num(7), num(8)}}}},
		&ram.Insert{Op: &ram.Scan{
			Relation: "refs", Depth: 0,
			Inner: &ram.Lookup{
				Depth: 1, SrcDepth: 0, SrcCol: 0, Arity: 2,
				Inner: &ram.Project{Relation: "out", Values: []ram.Value{el(1, 0), el(1, 1)}},
			},
		}},
	}}
	ctx := run(t, testProgram(specs, main))
	wantTuples(t, ctx, "out", []domain.RamDomain{7, 8})
}

// A NullRecord handle skips the Lookup branch entirely.
func TestLookupSkipsNullRecord(t *testing.T) {
	specs := []relation.Spec{
		{Name: "refs", Arity: 1},
		{Name: "out", Arity: 1},
	}
	main := &ram.Sequence{Stmts: []ram.Statement{
		&ram.Create{Relation: "refs"},
		&ram.Create{Relation: "out"},
		factOf("refs", domain.NullRecord),
		&ram.Insert{Op: &ram.Scan{
			Relation: "refs", Depth: 0,
			Inner: &ram.Lookup{
				Depth: 1, SrcDepth: 0, SrcCol: 0, Arity: 2,
				Inner: &ram.Project{Relation: "out", Values: []ram.Value{el(1, 0)}},
			},
		}},
	}}
	ctx := run(t, testProgram(specs, main))
	if !ctx.Relation("out").Empty() {
		t.Fatal("Lookup must skip the NullRecord handle")
	}
}

func TestUserDefinedOperator(t *testing.T) {
	ctx := emptyCtx()
	ctx.FFI.Register("strtwice", func(args ...any) any {
		s := args[0].(string)
		return s + s
	})
	ctx.FFI.Register("addone", func(args ...any) any {
		return args[0].(domain.RamDomain) + 1
	})

	udo := &ram.UserDefinedOperator{
		Name: "strtwice", TypeSig: "SS",
		Args: []ram.Value{sym(ctx, "ab")},
	}
	if got := ctx.Symbols.Resolve(EvalValue(ctx, udo)); got != "abab" {
		t.Fatalf("strtwice = %q, want abab", got)
	}

	udo = &ram.UserDefinedOperator{
		Name: "addone", TypeSig: "NN",
		Args: []ram.Value{num(41)},
	}
	if got := EvalValue(ctx, udo); got != 42 {
		t.Fatalf("addone = %d, want 42", got)
	}
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		v    ram.Value
	}{
		{"division by zero", &ram.IntrinsicOperator{Op: ram.OpDiv, Args: []ram.Value{num(1), num(0)}}},
		{"modulo by zero", &ram.IntrinsicOperator{Op: ram.OpMod, Args: []ram.Value{num(1), num(0)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := emptyCtx()
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected a domain error")
				}
				re, ok := r.(*rerrors.RamError)
				if !ok || re.Kind != rerrors.KindDomain {
					t.Fatalf("recovered %v, want a KindDomain RamError", r)
				}
			}()
			EvalValue(ctx, tt.v)
		})
	}
}

func TestToNumberFailureIsDomainError(t *testing.T) {
	ctx := emptyCtx()
	v := &ram.IntrinsicOperator{Op: ram.OpToNumber, Args: []ram.Value{sym(ctx, "not-a-number")}}
	defer func() {
		r := recover()
		re, ok := r.(*rerrors.RamError)
		if !ok || re.Kind != rerrors.KindDomain {
			t.Fatalf("recovered %v, want a KindDomain RamError", r)
		}
	}()
	EvalValue(ctx, v)
}
