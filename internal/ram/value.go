package ram

import "fmt"

// IntrinsicOp is the set of built-in unary/binary/ternary operators
// IntrinsicOperator can carry (spec.md §4.5).
type IntrinsicOp int

const (
	OpOrd IntrinsicOp = iota
	OpStrlen
	OpNeg
	OpBnot
	OpLnot
	OpToNumber
	OpToString
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpExp
	OpMod
	OpBand
	OpBor
	OpBxor
	OpLand
	OpLor
	OpMax
	OpMin
	OpCat
	OpSubstr
)

// Number is a constant value.
type Number struct {
	Constant int32
}

func (n *Number) isValue()              {}
func (n *Number) Children() []Node      { return nil }
func (n *Number) Apply(Mapper)          {}
func (n *Number) Clone() Node           { return &Number{Constant: n.Constant} }
func (n *Number) Equal(o Node) bool {
	other, ok := o.(*Number)
	return ok && other.Constant == n.Constant
}
func (n *Number) String() string { return fmt.Sprintf("number(%d)", n.Constant) }

// ElementAccess reads context[Depth][Column] — the nested-loop reference
// to a previously bound tuple.
type ElementAccess struct {
	Depth  int
	Column int
}

func (e *ElementAccess) isValue()         {}
func (e *ElementAccess) Children() []Node { return nil }
func (e *ElementAccess) Apply(Mapper)     {}
func (e *ElementAccess) Clone() Node {
	return &ElementAccess{Depth: e.Depth, Column: e.Column}
}
func (e *ElementAccess) Equal(o Node) bool {
	other, ok := o.(*ElementAccess)
	return ok && other.Depth == e.Depth && other.Column == e.Column
}
func (e *ElementAccess) String() string {
	return fmt.Sprintf("t%d.%d", e.Depth, e.Column)
}

// AutoIncrement returns and advances the interpreter's counter.
type AutoIncrement struct{}

func (a *AutoIncrement) isValue()          {}
func (a *AutoIncrement) Children() []Node  { return nil }
func (a *AutoIncrement) Apply(Mapper)      {}
func (a *AutoIncrement) Clone() Node       { return &AutoIncrement{} }
func (a *AutoIncrement) Equal(o Node) bool { _, ok := o.(*AutoIncrement); return ok }
func (a *AutoIncrement) String() string    { return "autoinc()" }

// IntrinsicOperator applies a built-in functor to Args.
type IntrinsicOperator struct {
	Op   IntrinsicOp
	Args []Value
}

func (o *IntrinsicOperator) isValue() {}
func (o *IntrinsicOperator) Children() []Node {
	out := make([]Node, len(o.Args))
	for i, a := range o.Args {
		out[i] = a
	}
	return out
}
func (o *IntrinsicOperator) Apply(m Mapper) { mapValues(m, o.Args) }
func (o *IntrinsicOperator) Clone() Node {
	return &IntrinsicOperator{Op: o.Op, Args: cloneValues(o.Args)}
}
func (o *IntrinsicOperator) Equal(n Node) bool {
	other, ok := n.(*IntrinsicOperator)
	return ok && other.Op == o.Op && equalValues(other.Args, o.Args)
}
func (o *IntrinsicOperator) String() string { return fmt.Sprintf("intrinsic(%d)", o.Op) }

// UserDefinedOperator invokes an externally loaded scalar function by
// name via the FFI bridge. TypeSig has length len(Args)+1: one letter
// per argument plus a trailing return-type letter ('S' = symbol handle,
// anything else = integer), per spec.md §4.10.
type UserDefinedOperator struct {
	Name    string
	TypeSig string
	Args    []Value
}

func (o *UserDefinedOperator) isValue() {}
func (o *UserDefinedOperator) Children() []Node {
	out := make([]Node, len(o.Args))
	for i, a := range o.Args {
		out[i] = a
	}
	return out
}
func (o *UserDefinedOperator) Apply(m Mapper) { mapValues(m, o.Args) }
func (o *UserDefinedOperator) Clone() Node {
	return &UserDefinedOperator{Name: o.Name, TypeSig: o.TypeSig, Args: cloneValues(o.Args)}
}
func (o *UserDefinedOperator) Equal(n Node) bool {
	other, ok := n.(*UserDefinedOperator)
	return ok && other.Name == o.Name && other.TypeSig == o.TypeSig && equalValues(other.Args, o.Args)
}
func (o *UserDefinedOperator) String() string { return "udo(" + o.Name + ")" }

// Pack evaluates Args to a tuple and interns it as a record, returning
// the handle.
type Pack struct {
	Args []Value
}

func (p *Pack) isValue() {}
func (p *Pack) Children() []Node {
	out := make([]Node, len(p.Args))
	for i, a := range p.Args {
		out[i] = a
	}
	return out
}
func (p *Pack) Apply(m Mapper) { mapValues(m, p.Args) }
func (p *Pack) Clone() Node    { return &Pack{Args: cloneValues(p.Args)} }
func (p *Pack) Equal(n Node) bool {
	other, ok := n.(*Pack)
	return ok && equalValues(other.Args, p.Args)
}
func (p *Pack) String() string { return "pack(...)" }

// Argument reads subroutine argument Index.
type Argument struct {
	Index int
}

func (a *Argument) isValue()         {}
func (a *Argument) Children() []Node { return nil }
func (a *Argument) Apply(Mapper)     {}
func (a *Argument) Clone() Node      { return &Argument{Index: a.Index} }
func (a *Argument) Equal(o Node) bool {
	other, ok := o.(*Argument)
	return ok && other.Index == a.Index
}
func (a *Argument) String() string { return fmt.Sprintf("arg(%d)", a.Index) }

// QuestionMark is the ternary conditional value: Cond ? Then : Else.
type QuestionMark struct {
	Cond Condition
	Then Value
	Else Value
}

func (q *QuestionMark) isValue() {}
func (q *QuestionMark) Children() []Node {
	return childrenOf(q.Cond, q.Then, q.Else)
}
func (q *QuestionMark) Apply(m Mapper) {
	q.Cond = mapCondition(m, q.Cond)
	q.Then = mapValue(m, q.Then)
	q.Else = mapValue(m, q.Else)
}
func (q *QuestionMark) Clone() Node {
	return &QuestionMark{Cond: cloneCondition(q.Cond), Then: cloneValue(q.Then), Else: cloneValue(q.Else)}
}
func (q *QuestionMark) Equal(n Node) bool {
	other, ok := n.(*QuestionMark)
	return ok && equalCondition(other.Cond, q.Cond) && equalValue(other.Then, q.Then) && equalValue(other.Else, q.Else)
}
func (q *QuestionMark) String() string { return "qmark(...)" }

// LatticeGLB folds Refs left-to-right through the program's declared GLB
// binary function (see package lattice).
type LatticeGLB struct {
	Refs []*ElementAccess
}

func (l *LatticeGLB) isValue() {}
func (l *LatticeGLB) Children() []Node {
	out := make([]Node, len(l.Refs))
	for i, r := range l.Refs {
		out[i] = r
	}
	return out
}
func (l *LatticeGLB) Apply(m Mapper) {
	for i, r := range l.Refs {
		l.Refs[i] = m(r).(*ElementAccess)
	}
}
func (l *LatticeGLB) Clone() Node {
	refs := make([]*ElementAccess, len(l.Refs))
	for i, r := range l.Refs {
		refs[i] = r.Clone().(*ElementAccess)
	}
	return &LatticeGLB{Refs: refs}
}
func (l *LatticeGLB) Equal(n Node) bool {
	other, ok := n.(*LatticeGLB)
	if !ok || len(other.Refs) != len(l.Refs) {
		return false
	}
	for i := range l.Refs {
		if !l.Refs[i].Equal(other.Refs[i]) {
			return false
		}
	}
	return true
}
func (l *LatticeGLB) String() string { return "lattice_glb(...)" }

// LatticeUnaryFunctor evaluates Ref then applies the named declared
// lattice unary function's case table.
type LatticeUnaryFunctor struct {
	Func string
	Ref  Value
}

func (l *LatticeUnaryFunctor) isValue()         {}
func (l *LatticeUnaryFunctor) Children() []Node { return childrenOf(l.Ref) }
func (l *LatticeUnaryFunctor) Apply(m Mapper)   { l.Ref = mapValue(m, l.Ref) }
func (l *LatticeUnaryFunctor) Clone() Node {
	return &LatticeUnaryFunctor{Func: l.Func, Ref: cloneValue(l.Ref)}
}
func (l *LatticeUnaryFunctor) Equal(n Node) bool {
	other, ok := n.(*LatticeUnaryFunctor)
	return ok && other.Func == l.Func && equalValue(other.Ref, l.Ref)
}
func (l *LatticeUnaryFunctor) String() string { return "lattice_unary(" + l.Func + ")" }

// LatticeBinaryFunctor evaluates Ref1 and Ref2 then applies the named
// declared lattice binary function's case table.
type LatticeBinaryFunctor struct {
	Func string
	Ref1 Value
	Ref2 Value
}

func (l *LatticeBinaryFunctor) isValue()         {}
func (l *LatticeBinaryFunctor) Children() []Node { return childrenOf(l.Ref1, l.Ref2) }
func (l *LatticeBinaryFunctor) Apply(m Mapper) {
	l.Ref1 = mapValue(m, l.Ref1)
	l.Ref2 = mapValue(m, l.Ref2)
}
func (l *LatticeBinaryFunctor) Clone() Node {
	return &LatticeBinaryFunctor{Func: l.Func, Ref1: cloneValue(l.Ref1), Ref2: cloneValue(l.Ref2)}
}
func (l *LatticeBinaryFunctor) Equal(n Node) bool {
	other, ok := n.(*LatticeBinaryFunctor)
	return ok && other.Func == l.Func && equalValue(other.Ref1, l.Ref1) && equalValue(other.Ref2, l.Ref2)
}
func (l *LatticeBinaryFunctor) String() string { return "lattice_binary(" + l.Func + ")" }
