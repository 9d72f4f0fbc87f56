// Package ram defines the RAM (Relational Algebra Machine) intermediate
// representation: a tree of typed nodes in four families — values,
// conditions, operations, statements — evaluated by the interpreter in
// package interp. The node set and its semantics are ported from
// Souffle's RamNode.h/RamOperation.h/RamStatement.h/RamValue.h
// (see _examples/original_source), generalized from a C++ class
// hierarchy with virtual dispatch into Go structs implementing small
// marker interfaces, matched by type switch in each evaluator.
package ram

// Node is the capability every RAM IR node supports: deep clone,
// mapper-based child substitution, child enumeration, and structural
// equality. It replaces RamNode's virtual clone/apply/getChildNodes/
// equal quartet.
type Node interface {
	Clone() Node
	Apply(Mapper)
	Children() []Node
	Equal(Node) bool
}

// Mapper is a total function from a node to a (possibly identical)
// replacement node, applied to every child of a node via that node's
// Apply method. It is the Go rendition of RamNodeMapper: there is no
// ownership-transfer ceremony to model since Go is garbage collected.
type Mapper func(Node) Node

// Value is any RAM value-family node (spec.md §3: Number, ElementAccess,
// AutoIncrement, IntrinsicOperator, UserDefinedOperator, Pack, Argument,
// QuestionMark, LatticeGLB, LatticeUnaryFunctor, LatticeBinaryFunctor).
type Value interface {
	Node
	isValue()
}

// Condition is any RAM condition-family node (Conjunction, Negation,
// EmptinessCheck, ExistenceCheck, ProvenanceExistenceCheck, Constraint).
type Condition interface {
	Node
	isCondition()
}

// Operation is any RAM operation-family node (Scan, IndexScan, Lookup,
// Aggregate, Filter, Project, Return). All but the leaf (Project/Return)
// nest an inner Operation.
type Operation interface {
	Node
	isOperation()
}

// Statement is any RAM statement-family node (Sequence, Parallel, Loop,
// Exit, Create, Clear, Drop, LogSize, LogTimer, DebugInfo, Stratum, Load,
// Store, Fact, Insert, Merge, Swap, LatNorm, LatClean).
type Statement interface {
	Node
	isStatement()
}

// mapValue applies m to v and type-asserts the result back to Value,
// the Go analogue of RamNodeMapper's templated operator() overload that
// performs the corresponding dynamic_cast in C++.
func mapValue(m Mapper, v Value) Value {
	if v == nil {
		return nil
	}
	return m(v).(Value)
}

func mapCondition(m Mapper, c Condition) Condition {
	if c == nil {
		return nil
	}
	return m(c).(Condition)
}

func mapOperation(m Mapper, o Operation) Operation {
	if o == nil {
		return nil
	}
	return m(o).(Operation)
}

func mapStatement(m Mapper, s Statement) Statement {
	if s == nil {
		return nil
	}
	return m(s).(Statement)
}

func cloneValue(v Value) Value {
	if v == nil {
		return nil
	}
	return v.Clone().(Value)
}

func cloneCondition(c Condition) Condition {
	if c == nil {
		return nil
	}
	return c.Clone().(Condition)
}

func cloneOperation(o Operation) Operation {
	if o == nil {
		return nil
	}
	return o.Clone().(Operation)
}

func cloneStatement(s Statement) Statement {
	if s == nil {
		return nil
	}
	return s.Clone().(Statement)
}

func equalValue(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func equalCondition(a, b Condition) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func equalOperation(a, b Operation) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func equalValues(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalValue(a[i], b[i]) {
			return false
		}
	}
	return true
}

func cloneValues(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = cloneValue(v)
	}
	return out
}

func mapValues(m Mapper, vs []Value) {
	for i, v := range vs {
		vs[i] = mapValue(m, v)
	}
}

func childrenOf(vs ...Node) []Node {
	out := make([]Node, 0, len(vs))
	for _, v := range vs {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
