package ram

// Sequence runs Stmts in order, short-circuiting (and returning false) as
// soon as one returns false.
type Sequence struct {
	Stmts []Statement
}

func (s *Sequence) isStatement() {}
func (s *Sequence) Children() []Node {
	out := make([]Node, len(s.Stmts))
	for i, st := range s.Stmts {
		out[i] = st
	}
	return out
}
func (s *Sequence) Apply(m Mapper) {
	for i, st := range s.Stmts {
		s.Stmts[i] = mapStatement(m, st)
	}
}
func (s *Sequence) Clone() Node {
	out := make([]Statement, len(s.Stmts))
	for i, st := range s.Stmts {
		out[i] = cloneStatement(st)
	}
	return &Sequence{Stmts: out}
}
func (s *Sequence) Equal(n Node) bool {
	other, ok := n.(*Sequence)
	if !ok || len(other.Stmts) != len(s.Stmts) {
		return false
	}
	for i := range s.Stmts {
		if !equalOperationAwareStatement(s.Stmts[i], other.Stmts[i]) {
			return false
		}
	}
	return true
}
func (s *Sequence) String() string { return "sequence(...)" }

func equalOperationAwareStatement(a, b Statement) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Parallel forks Stmts across a worker pool and joins; the statement's
// result is the AND-reduction of the children's results. No ordering or
// interleaving guarantee among children is given — they must be
// independent (see package interp's executor, which uses errgroup).
type Parallel struct {
	Stmts []Statement
}

func (p *Parallel) isStatement() {}
func (p *Parallel) Children() []Node {
	out := make([]Node, len(p.Stmts))
	for i, st := range p.Stmts {
		out[i] = st
	}
	return out
}
func (p *Parallel) Apply(m Mapper) {
	for i, st := range p.Stmts {
		p.Stmts[i] = mapStatement(m, st)
	}
}
func (p *Parallel) Clone() Node {
	out := make([]Statement, len(p.Stmts))
	for i, st := range p.Stmts {
		out[i] = cloneStatement(st)
	}
	return &Parallel{Stmts: out}
}
func (p *Parallel) Equal(n Node) bool {
	other, ok := n.(*Parallel)
	if !ok || len(other.Stmts) != len(p.Stmts) {
		return false
	}
	for i := range p.Stmts {
		if !equalOperationAwareStatement(p.Stmts[i], other.Stmts[i]) {
			return false
		}
	}
	return true
}
func (p *Parallel) String() string { return "parallel(...)" }

// Loop repeatedly runs Body until it returns false, then itself always
// returns true.
type Loop struct {
	Body Statement
}

func (l *Loop) isStatement()     {}
func (l *Loop) Children() []Node { return childrenOf(l.Body) }
func (l *Loop) Apply(m Mapper)   { l.Body = mapStatement(m, l.Body) }
func (l *Loop) Clone() Node      { return &Loop{Body: cloneStatement(l.Body)} }
func (l *Loop) Equal(n Node) bool {
	other, ok := n.(*Loop)
	return ok && equalOperationAwareStatement(other.Body, l.Body)
}
func (l *Loop) String() string { return "loop(...)" }

// Exit returns !Cond, driving Loop termination.
type Exit struct {
	Cond Condition
}

func (e *Exit) isStatement()     {}
func (e *Exit) Children() []Node { return childrenOf(e.Cond) }
func (e *Exit) Apply(m Mapper)   { e.Cond = mapCondition(m, e.Cond) }
func (e *Exit) Clone() Node      { return &Exit{Cond: cloneCondition(e.Cond)} }
func (e *Exit) Equal(n Node) bool {
	other, ok := n.(*Exit)
	return ok && equalCondition(other.Cond, e.Cond)
}
func (e *Exit) String() string { return "exit(...)" }

// Create ensures Relation exists in the store, constructing an empty one
// per its declared spec if absent.
type Create struct {
	Relation string
}

func (c *Create) isStatement()     {}
func (c *Create) Children() []Node { return nil }
func (c *Create) Apply(Mapper)     {}
func (c *Create) Clone() Node      { return &Create{Relation: c.Relation} }
func (c *Create) Equal(n Node) bool {
	other, ok := n.(*Create)
	return ok && other.Relation == c.Relation
}
func (c *Create) String() string { return "create(" + c.Relation + ")" }

// Clear purges Relation's tuples without dropping it.
type Clear struct {
	Relation string
}

func (c *Clear) isStatement()     {}
func (c *Clear) Children() []Node { return nil }
func (c *Clear) Apply(Mapper)     {}
func (c *Clear) Clone() Node      { return &Clear{Relation: c.Relation} }
func (c *Clear) Equal(n Node) bool {
	other, ok := n.(*Clear)
	return ok && other.Relation == c.Relation
}
func (c *Clear) String() string { return "clear(" + c.Relation + ")" }

// Drop removes Relation from the store entirely.
type Drop struct {
	Relation string
}

func (d *Drop) isStatement()     {}
func (d *Drop) Children() []Node { return nil }
func (d *Drop) Apply(Mapper)     {}
func (d *Drop) Clone() Node      { return &Drop{Relation: d.Relation} }
func (d *Drop) Equal(n Node) bool {
	other, ok := n.(*Drop)
	return ok && other.Relation == d.Relation
}
func (d *Drop) String() string { return "drop(" + d.Relation + ")" }

// LogSize records a quantity profiling event for Relation's current size.
type LogSize struct {
	Relation string
	Message  string
}

func (l *LogSize) isStatement()     {}
func (l *LogSize) Children() []Node { return nil }
func (l *LogSize) Apply(Mapper)     {}
func (l *LogSize) Clone() Node      { return &LogSize{Relation: l.Relation, Message: l.Message} }
func (l *LogSize) Equal(n Node) bool {
	other, ok := n.(*LogSize)
	return ok && other.Relation == l.Relation && other.Message == l.Message
}
func (l *LogSize) String() string { return "logsize(" + l.Relation + ")" }

// LogTimer brackets Inner with a scoped timer logging event; RelationHint,
// if non-empty, causes the final size of that relation to be logged
// alongside the elapsed time.
type LogTimer struct {
	Message       string
	RelationHint  string
	Inner         Statement
}

func (l *LogTimer) isStatement()     {}
func (l *LogTimer) Children() []Node { return childrenOf(l.Inner) }
func (l *LogTimer) Apply(m Mapper)   { l.Inner = mapStatement(m, l.Inner) }
func (l *LogTimer) Clone() Node {
	return &LogTimer{Message: l.Message, RelationHint: l.RelationHint, Inner: cloneStatement(l.Inner)}
}
func (l *LogTimer) Equal(n Node) bool {
	other, ok := n.(*LogTimer)
	return ok && other.Message == l.Message && other.RelationHint == l.RelationHint && equalOperationAwareStatement(other.Inner, l.Inner)
}
func (l *LogTimer) String() string { return "logtimer(...)" }

// DebugInfo brackets Inner with a scoped debug-message annotation (used
// by the signal handler to report "last known location" on a fatal
// abort).
type DebugInfo struct {
	Message string
	Inner   Statement
}

func (d *DebugInfo) isStatement()     {}
func (d *DebugInfo) Children() []Node { return childrenOf(d.Inner) }
func (d *DebugInfo) Apply(m Mapper)   { d.Inner = mapStatement(m, d.Inner) }
func (d *DebugInfo) Clone() Node {
	return &DebugInfo{Message: d.Message, Inner: cloneStatement(d.Inner)}
}
func (d *DebugInfo) Equal(n Node) bool {
	other, ok := n.(*DebugInfo)
	return ok && other.Message == d.Message && equalOperationAwareStatement(other.Inner, d.Inner)
}
func (d *DebugInfo) String() string { return "debuginfo(...)" }

// Stratum groups Body, the set of mutually recursive rules the
// dependency-graph analysis isolated as one fixed-point unit; when
// profiling is enabled, every non-temporary relation Create'd within is
// recorded against this stratum's Index.
type Stratum struct {
	Index int
	Body  Statement
}

func (s *Stratum) isStatement()     {}
func (s *Stratum) Children() []Node { return childrenOf(s.Body) }
func (s *Stratum) Apply(m Mapper)   { s.Body = mapStatement(m, s.Body) }
func (s *Stratum) Clone() Node      { return &Stratum{Index: s.Index, Body: cloneStatement(s.Body)} }
func (s *Stratum) Equal(n Node) bool {
	other, ok := n.(*Stratum)
	return ok && other.Index == s.Index && equalOperationAwareStatement(other.Body, s.Body)
}
func (s *Stratum) String() string { return "stratum(...)" }

// Load delegates to the reader factory for every directive against
// Relation. Reader failures are logged, not fatal.
type Load struct {
	Relation   string
	Directives []int // indices into an external Directive table (see iostore)
}

func (l *Load) isStatement()     {}
func (l *Load) Children() []Node { return nil }
func (l *Load) Apply(Mapper)     {}
func (l *Load) Clone() Node {
	d := make([]int, len(l.Directives))
	copy(d, l.Directives)
	return &Load{Relation: l.Relation, Directives: d}
}
func (l *Load) Equal(n Node) bool {
	other, ok := n.(*Load)
	if !ok || other.Relation != l.Relation || len(other.Directives) != len(l.Directives) {
		return false
	}
	for i := range l.Directives {
		if l.Directives[i] != other.Directives[i] {
			return false
		}
	}
	return true
}
func (l *Load) String() string { return "load(" + l.Relation + ")" }

// Store delegates to the writer factory for every directive against
// Relation. Writer failures are fatal.
type Store struct {
	Relation   string
	Directives []int
}

func (s *Store) isStatement()     {}
func (s *Store) Children() []Node { return nil }
func (s *Store) Apply(Mapper)     {}
func (s *Store) Clone() Node {
	d := make([]int, len(s.Directives))
	copy(d, s.Directives)
	return &Store{Relation: s.Relation, Directives: d}
}
func (s *Store) Equal(n Node) bool {
	other, ok := n.(*Store)
	if !ok || other.Relation != s.Relation || len(other.Directives) != len(s.Directives) {
		return false
	}
	for i := range s.Directives {
		if s.Directives[i] != other.Directives[i] {
			return false
		}
	}
	return true
}
func (s *Store) String() string { return "store(" + s.Relation + ")" }

// Fact evaluates Values (in the empty context — no bound tuples) and
// inserts the resulting tuple into Relation directly, without a query
// plan.
type Fact struct {
	Relation string
	Values   []Value
}

func (f *Fact) isStatement() {}
func (f *Fact) Children() []Node {
	out := make([]Node, len(f.Values))
	for i, v := range f.Values {
		out[i] = v
	}
	return out
}
func (f *Fact) Apply(m Mapper) { mapValues(m, f.Values) }
func (f *Fact) Clone() Node {
	return &Fact{Relation: f.Relation, Values: cloneValues(f.Values)}
}
func (f *Fact) Equal(n Node) bool {
	other, ok := n.(*Fact)
	return ok && other.Relation == f.Relation && equalValues(other.Values, f.Values)
}
func (f *Fact) String() string { return "fact(" + f.Relation + ")" }

// Insert runs Op's nested-loop query plan, optionally guarded by Cond
// (evaluated once up front; if false Op is skipped entirely).
type Insert struct {
	Cond Condition // nilable
	Op   Operation
}

func (i *Insert) isStatement()     {}
func (i *Insert) Children() []Node { return childrenOf(i.Cond, i.Op) }
func (i *Insert) Apply(m Mapper) {
	i.Cond = mapCondition(m, i.Cond)
	i.Op = mapOperation(m, i.Op)
}
func (i *Insert) Clone() Node {
	return &Insert{Cond: cloneCondition(i.Cond), Op: cloneOperation(i.Op)}
}
func (i *Insert) Equal(n Node) bool {
	other, ok := n.(*Insert)
	return ok && equalCondition(other.Cond, i.Cond) && equalOperation(other.Op, i.Op)
}
func (i *Insert) String() string { return "insert(...)" }

// Merge unions Src into Tgt; if Tgt is an equivalence relation, Src is
// first extended with Tgt's existing closure before the union.
type Merge struct {
	Src string
	Tgt string
}

func (m *Merge) isStatement()     {}
func (m *Merge) Children() []Node { return nil }
func (m *Merge) Apply(Mapper)     {}
func (m *Merge) Clone() Node      { return &Merge{Src: m.Src, Tgt: m.Tgt} }
func (m *Merge) Equal(n Node) bool {
	other, ok := n.(*Merge)
	return ok && other.Src == m.Src && other.Tgt == m.Tgt
}
func (m *Merge) String() string { return "merge(" + m.Src + "," + m.Tgt + ")" }

// Swap exchanges the relation objects bound to names A and B without
// copying tuples; two applications are an involution.
type Swap struct {
	A string
	B string
}

func (s *Swap) isStatement()     {}
func (s *Swap) Children() []Node { return nil }
func (s *Swap) Apply(Mapper)     {}
func (s *Swap) Clone() Node      { return &Swap{A: s.A, B: s.B} }
func (s *Swap) Equal(n Node) bool {
	other, ok := n.(*Swap)
	return ok && other.A == s.A && other.B == s.B
}
func (s *Swap) String() string { return "swap(" + s.A + "," + s.B + ")" }

// LatNorm merges duplicates of In that share their first arity-1
// attributes, folding the last (lattice-valued) attribute with the
// program's LUB binary function, and writes one tuple per group into Out.
type LatNorm struct {
	In  string
	Out string
}

func (l *LatNorm) isStatement()     {}
func (l *LatNorm) Children() []Node { return nil }
func (l *LatNorm) Apply(Mapper)     {}
func (l *LatNorm) Clone() Node      { return &LatNorm{In: l.In, Out: l.Out} }
func (l *LatNorm) Equal(n Node) bool {
	other, ok := n.(*LatNorm)
	return ok && other.In == l.In && other.Out == l.Out
}
func (l *LatNorm) String() string { return "latnorm(" + l.In + "," + l.Out + ")" }

// LatClean computes, for each prefix group present in New, the LUB of
// New's values joined with Origin's corresponding group (if any), and
// emits (prefix, LUB) into OutNew iff that exact tuple is not already
// present in Origin — the semi-naive delta for lattice-valued columns.
type LatClean struct {
	Origin string
	New    string
	OutNew string
}

func (l *LatClean) isStatement()     {}
func (l *LatClean) Children() []Node { return nil }
func (l *LatClean) Apply(Mapper)     {}
func (l *LatClean) Clone() Node      { return &LatClean{Origin: l.Origin, New: l.New, OutNew: l.OutNew} }
func (l *LatClean) Equal(n Node) bool {
	other, ok := n.(*LatClean)
	return ok && other.Origin == l.Origin && other.New == l.New && other.OutNew == l.OutNew
}
func (l *LatClean) String() string { return "latclean(" + l.Origin + "," + l.New + "," + l.OutNew + ")" }

// LatExt ("extend + delta") is deliberately NOT implemented: spec.md §9
// notes it is commented out in the reference implementation with no
// represented contract in the current statement set, and instructs
// implementers not to guess it. It is omitted here rather than stubbed.
