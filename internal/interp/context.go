// Package interp is the tree-walking evaluator for the RAM IR (spec.md
// §4.5-§4.9): a three-level value/condition/operation evaluator plus a
// statement executor, grounded line-for-line on the ValueEvaluator,
// ConditionEvaluator, OperationEvaluator, and StatementEvaluator visitor
// classes in original_source/src/Interpreter.cpp.
package interp

import (
	"strings"
	"sync"

	"ramalg/internal/analysis"
	"ramalg/internal/domain"
	"ramalg/internal/ffi"
	"ramalg/internal/iostore"
	"ramalg/internal/lattice"
	"ramalg/internal/profile"
	"ramalg/internal/program"
	"ramalg/internal/relation"
	"ramalg/internal/rerrors"
)

// Context is the mutable state threaded through one program execution:
// the relation store, the bound-tuple frame stack, the symbol/record
// interners, the auto-increment counter, and the shared services
// (lattice association, FFI bridge, I/O directives, profiling sink).
type Context struct {
	Program *program.Program
	Tables  *analysis.Tables

	Symbols *domain.SymbolTable
	Records *domain.RecordStore
	Counter *domain.Counter

	Lattice *lattice.Association
	FFI     *ffi.Bridge
	IO      *iostore.Registry
	Profile profile.Recorder

	// Jobs caps the goroutines live inside any one Parallel fork;
	// 0 means no cap (one goroutine per child).
	Jobs int

	// Verbose mirrors the driver's -v flag: LogSize statements echo
	// their size to stderr in addition to the profile sink.
	Verbose bool

	relations *relationTable
	reads     *readCounts

	// iteration counts the current Loop body run, reset on Loop entry
	// and restored on exit; timer events within the body carry it.
	iteration int

	// frame[d] is the tuple currently bound at context depth d by a
	// Scan/IndexScan/Lookup/Aggregate ancestor.
	frame [][]domain.RamDomain

	// args/rets back subroutine calls (spec.md §4.5 Argument, §4.6
	// Return): Args holds the caller-supplied values for the
	// subroutine currently executing; Rets accumulates (value,isNull)
	// pairs appended by Return operations within it.
	args []domain.RamDomain
	rets []ReturnValue

	// lastDebug is the most recent DebugInfo message, surfaced by the
	// top-level recover handler when a run aborts mid-statement.
	lastDebug string
}

type ReturnValue struct {
	Value  domain.RamDomain
	IsNull bool
}

// NewContext constructs a fresh execution context for prog, ready to run
// its Main statement.
func NewContext(prog *program.Program, tables *analysis.Tables, io *iostore.Registry, rec profile.Recorder, bridge *ffi.Bridge) *Context {
	c := &Context{
		Program:   prog,
		Tables:    tables,
		Symbols:   domain.NewSymbolTable(),
		Records:   domain.NewRecordStore(),
		Counter:   &domain.Counter{},
		Lattice:   prog.Lattice,
		FFI:       bridge,
		IO:        io,
		Profile:   rec,
		relations: newRelationTable(),
	}
	if _, nop := rec.(profile.NopRecorder); !nop && rec != nil {
		c.reads = newReadCounts()
	}
	c.frame = make([][]domain.RamDomain, tables.MaxDepth+1)
	return c
}

// readCounts accumulates per-relation existence-check read counters
// under a mutex, shared by every branch fork()ed from one Context
// (spec.md §5: profile counters updated under an internal mutex).
type readCounts struct {
	mu     sync.Mutex
	counts map[string]int
}

func newReadCounts() *readCounts {
	return &readCounts{counts: make(map[string]int)}
}

// NoteRead bumps name's read counter if profiling is enabled and the
// relation is not temporary (name starting with "@").
func (c *Context) NoteRead(name string) {
	if c.reads == nil || strings.HasPrefix(name, "@") {
		return
	}
	c.reads.mu.Lock()
	c.reads.counts[name]++
	c.reads.mu.Unlock()
}

// FlushReads emits one read-count event per relation touched by an
// existence check, tagged "@relation-reads;NAME", and resets the
// counters.
func (c *Context) FlushReads() {
	if c.reads == nil {
		return
	}
	c.reads.mu.Lock()
	counts := c.reads.counts
	c.reads.counts = make(map[string]int)
	c.reads.mu.Unlock()
	for name, n := range counts {
		c.Profile.Record(profile.Event{Kind: "read", Message: "@relation-reads;" + name, Relation: name, Count: n})
	}
}

// Relation looks up (creating via Create semantics is a separate,
// explicit call) a named relation.
func (c *Context) Relation(name string) relation.Store {
	r, ok := c.relations.get(name)
	if !ok {
		rerrors.Structural("reference to unknown relation %q", name)
		return nil
	}
	return r
}

// EnsureRelation implements the Create statement: if name is absent, it
// is constructed fresh from the program's declared spec.
func (c *Context) EnsureRelation(name string) relation.Store {
	if r, ok := c.relations.get(name); ok {
		return r
	}
	spec, ok := c.Program.RelationSpec(name)
	if !ok {
		rerrors.Structural("create: relation %q has no declared spec", name)
		return nil
	}
	return c.relations.ensure(name, spec)
}

// DropRelation removes name from the store entirely.
func (c *Context) DropRelation(name string) { c.relations.drop(name) }

// SwapRelations exchanges the objects bound to a and b.
func (c *Context) SwapRelations(a, b string) { c.relations.swap(a, b) }

// Bind sets the tuple bound at depth for the duration of an inner
// operation's evaluation.
func (c *Context) Bind(depth int, tuple []domain.RamDomain) {
	if depth >= len(c.frame) {
		grown := make([][]domain.RamDomain, depth+1)
		copy(grown, c.frame)
		c.frame = grown
	}
	c.frame[depth] = tuple
}

// At reads the tuple bound at depth.
func (c *Context) At(depth int) []domain.RamDomain {
	if depth < 0 || depth >= len(c.frame) {
		return nil
	}
	return c.frame[depth]
}

// Element reads context[depth][column], the ElementAccess value node.
func (c *Context) Element(depth, column int) domain.RamDomain {
	t := c.At(depth)
	if t == nil || column < 0 || column >= len(t) {
		rerrors.Structural("element access out of range: depth=%d column=%d", depth, column)
		return 0
	}
	return t[column]
}

// BeginSubroutine installs args as the Argument-readable slice and
// clears the return buffer, returning a restore func for the caller's
// prior state (subroutine calls do not nest in this IR, but the restore
// keeps the invariant explicit).
func (c *Context) BeginSubroutine(args []domain.RamDomain) func() {
	prevArgs, prevRets := c.args, c.rets
	c.args = args
	c.rets = nil
	return func() { c.args, c.rets = prevArgs, prevRets }
}

// Argument reads subroutine argument index.
func (c *Context) Argument(index int) domain.RamDomain {
	if index < 0 || index >= len(c.args) {
		rerrors.Structural("subroutine argument %d out of range (have %d)", index, len(c.args))
		return 0
	}
	return c.args[index]
}

// AppendReturn records one (value,isNull) pair for a Return operation.
func (c *Context) AppendReturn(value domain.RamDomain, isNull bool) {
	c.rets = append(c.rets, ReturnValue{Value: value, IsNull: isNull})
}

// Returns drains and returns the accumulated return buffer.
func (c *Context) Returns() []ReturnValue {
	out := c.rets
	c.rets = nil
	return out
}

// NextAuto advances the auto-increment counter and returns the value
// bound to this occurrence.
func (c *Context) NextAuto() domain.RamDomain {
	return domain.RamDomain(c.Counter.Next())
}

// LastDebug returns the most recent DebugInfo message seen on this
// context, for fatal-abort diagnostics.
func (c *Context) LastDebug() string { return c.lastDebug }

// fork returns a branch context for one arm of a Parallel statement: its
// own frame stack (copied, so concurrent binds at the same depth in
// sibling branches never alias), sharing everything else (relations are
// internally mutex-protected, the counter is atomic, symbols/records are
// mutex-protected interners).
func (c *Context) fork() *Context {
	frame := make([][]domain.RamDomain, len(c.frame))
	copy(frame, c.frame)
	branch := *c
	branch.frame = frame
	branch.args = append([]domain.RamDomain(nil), c.args...)
	branch.rets = nil
	return &branch
}
