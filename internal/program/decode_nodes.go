package program

import (
	"encoding/json"

	"github.com/pkg/errors"

	"ramalg/internal/ram"
)

// rawNode is the union of every field any RAM node's JSON form might
// carry; decodeValue/decodeCondition/decodeOperation/decodeStatement
// switch on Node (the Go type name) and read only the fields that type
// needs. Pattern/value slice entries may be JSON null for a wildcard.
type rawNode struct {
	Node string `json:"node"`

	Constant *int32            `json:"constant"`
	Depth    *int              `json:"depth"`
	Column   *int              `json:"column"`
	Op       *string           `json:"op"`
	Args     []json.RawMessage `json:"args"`
	Name     *string           `json:"name"`
	TypeSig  *string           `json:"typeSig"`
	Index    *int              `json:"index"`
	Cond     json.RawMessage   `json:"cond"`
	Then     json.RawMessage   `json:"then"`
	Else     json.RawMessage   `json:"else"`
	Refs     []json.RawMessage `json:"refs"`
	Func     *string           `json:"func"`
	Ref      json.RawMessage   `json:"ref"`
	Ref1     json.RawMessage   `json:"ref1"`
	Ref2     json.RawMessage   `json:"ref2"`

	LHS      json.RawMessage   `json:"lhs"`
	RHS      json.RawMessage   `json:"rhs"`
	Operand  json.RawMessage   `json:"operand"`
	Relation *string           `json:"relation"`
	Pattern  []json.RawMessage `json:"pattern"`

	SrcDepth   *int              `json:"srcDepth"`
	SrcCol     *int              `json:"srcCol"`
	Arity      *int              `json:"arity"`
	Func2      *string           `json:"aggFunc"`
	TargetExpr json.RawMessage   `json:"targetExpr"`
	Inner      json.RawMessage   `json:"inner"`
	Values     []json.RawMessage `json:"values"`

	Stmts        []json.RawMessage `json:"stmts"`
	Body         json.RawMessage   `json:"body"`
	Message      *string           `json:"message"`
	RelationHint *string           `json:"relationHint"`
	StratumIndex *int              `json:"stratumIndex"`
	Directives   []int             `json:"directives"`
	Src          *string           `json:"src"`
	Tgt          *string           `json:"tgt"`
	A            *string           `json:"a"`
	B            *string           `json:"b"`
	In           *string           `json:"in"`
	Out          *string           `json:"out"`
	Origin       *string           `json:"origin"`
	New          *string           `json:"new"`
	OutNew       *string           `json:"outNew"`
}

var intrinsicOps = map[string]ram.IntrinsicOp{
	"ord": ram.OpOrd, "strlen": ram.OpStrlen, "neg": ram.OpNeg, "bnot": ram.OpBnot,
	"lnot": ram.OpLnot, "tonumber": ram.OpToNumber, "tostring": ram.OpToString,
	"add": ram.OpAdd, "sub": ram.OpSub, "mul": ram.OpMul, "div": ram.OpDiv,
	"exp": ram.OpExp, "mod": ram.OpMod, "band": ram.OpBand, "bor": ram.OpBor,
	"bxor": ram.OpBxor, "land": ram.OpLand, "lor": ram.OpLor, "max": ram.OpMax,
	"min": ram.OpMin, "cat": ram.OpCat, "substr": ram.OpSubstr,
}

var constraintOps = map[string]ram.ConstraintOp{
	"eq": ram.OpEQ, "ne": ram.OpNE, "lt": ram.OpLT, "le": ram.OpLE,
	"gt": ram.OpGT, "ge": ram.OpGE, "match": ram.OpMatch, "notmatch": ram.OpNotMatch,
	"contains": ram.OpContains, "notcontains": ram.OpNotContains,
}

var aggregateFuncs = map[string]ram.AggregateFunc{
	"min": ram.AggMin, "max": ram.AggMax, "count": ram.AggCount, "sum": ram.AggSum,
}

func decodeValue(raw json.RawMessage) (ram.Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errors.Wrap(err, "value")
	}
	switch n.Node {
	case "Number":
		if n.Constant == nil {
			return nil, errors.New("Number: missing constant")
		}
		return &ram.Number{Constant: *n.Constant}, nil
	case "ElementAccess":
		return &ram.ElementAccess{Depth: intOr(n.Depth), Column: intOr(n.Column)}, nil
	case "AutoIncrement":
		return &ram.AutoIncrement{}, nil
	case "IntrinsicOperator":
		op, ok := intrinsicOps[strOr(n.Op)]
		if !ok {
			return nil, errors.Errorf("IntrinsicOperator: unknown op %q", strOr(n.Op))
		}
		args, err := decodeValues(n.Args)
		if err != nil {
			return nil, err
		}
		return &ram.IntrinsicOperator{Op: op, Args: args}, nil
	case "UserDefinedOperator":
		args, err := decodeValues(n.Args)
		if err != nil {
			return nil, err
		}
		return &ram.UserDefinedOperator{Name: strOr(n.Name), TypeSig: strOr(n.TypeSig), Args: args}, nil
	case "Pack":
		args, err := decodeValues(n.Args)
		if err != nil {
			return nil, err
		}
		return &ram.Pack{Args: args}, nil
	case "Argument":
		return &ram.Argument{Index: intOr(n.Index)}, nil
	case "QuestionMark":
		cond, err := decodeCondition(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeValue(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeValue(n.Else)
		if err != nil {
			return nil, err
		}
		return &ram.QuestionMark{Cond: cond, Then: then, Else: els}, nil
	case "LatticeGLB":
		refs := make([]*ram.ElementAccess, len(n.Refs))
		for i, r := range n.Refs {
			v, err := decodeValue(r)
			if err != nil {
				return nil, err
			}
			ea, ok := v.(*ram.ElementAccess)
			if !ok {
				return nil, errors.New("LatticeGLB: refs must be ElementAccess")
			}
			refs[i] = ea
		}
		return &ram.LatticeGLB{Refs: refs}, nil
	case "LatticeUnaryFunctor":
		ref, err := decodeValue(n.Ref)
		if err != nil {
			return nil, err
		}
		return &ram.LatticeUnaryFunctor{Func: strOr(n.Func), Ref: ref}, nil
	case "LatticeBinaryFunctor":
		ref1, err := decodeValue(n.Ref1)
		if err != nil {
			return nil, err
		}
		ref2, err := decodeValue(n.Ref2)
		if err != nil {
			return nil, err
		}
		return &ram.LatticeBinaryFunctor{Func: strOr(n.Func), Ref1: ref1, Ref2: ref2}, nil
	default:
		return nil, errors.Errorf("unknown value node %q", n.Node)
	}
}

func decodeValues(raws []json.RawMessage) ([]ram.Value, error) {
	out := make([]ram.Value, len(raws))
	for i, r := range raws {
		v, err := decodeValue(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeCondition(raw json.RawMessage) (ram.Condition, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errors.Wrap(err, "condition")
	}
	switch n.Node {
	case "Conjunction":
		lhs, err := decodeCondition(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeCondition(n.RHS)
		if err != nil {
			return nil, err
		}
		return &ram.Conjunction{LHS: lhs, RHS: rhs}, nil
	case "Negation":
		operand, err := decodeCondition(n.Operand)
		if err != nil {
			return nil, err
		}
		return &ram.Negation{Operand: operand}, nil
	case "EmptinessCheck":
		return &ram.EmptinessCheck{Relation: strOr(n.Relation)}, nil
	case "ExistenceCheck":
		pattern, err := decodeValues(n.Pattern)
		if err != nil {
			return nil, err
		}
		return &ram.ExistenceCheck{Relation: strOr(n.Relation), Pattern: pattern}, nil
	case "ProvenanceExistenceCheck":
		pattern, err := decodeValues(n.Pattern)
		if err != nil {
			return nil, err
		}
		return &ram.ProvenanceExistenceCheck{Relation: strOr(n.Relation), Pattern: pattern}, nil
	case "Constraint":
		op, ok := constraintOps[strOr(n.Op)]
		if !ok {
			return nil, errors.Errorf("Constraint: unknown op %q", strOr(n.Op))
		}
		lhs, err := decodeValue(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeValue(n.RHS)
		if err != nil {
			return nil, err
		}
		return &ram.Constraint{Op: op, LHS: lhs, RHS: rhs}, nil
	default:
		return nil, errors.Errorf("unknown condition node %q", n.Node)
	}
}

func decodeOperation(raw json.RawMessage) (ram.Operation, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errors.Wrap(err, "operation")
	}
	switch n.Node {
	case "Scan":
		inner, err := decodeOperation(n.Inner)
		if err != nil {
			return nil, err
		}
		return &ram.Scan{Relation: strOr(n.Relation), Depth: intOr(n.Depth), Inner: inner}, nil
	case "IndexScan":
		pattern, err := decodeValues(n.Pattern)
		if err != nil {
			return nil, err
		}
		inner, err := decodeOperation(n.Inner)
		if err != nil {
			return nil, err
		}
		return &ram.IndexScan{Relation: strOr(n.Relation), Depth: intOr(n.Depth), Pattern: pattern, Inner: inner}, nil
	case "Lookup":
		inner, err := decodeOperation(n.Inner)
		if err != nil {
			return nil, err
		}
		return &ram.Lookup{Depth: intOr(n.Depth), SrcDepth: intOr(n.SrcDepth), SrcCol: intOr(n.SrcCol), Arity: intOr(n.Arity), Inner: inner}, nil
	case "Aggregate":
		fn, ok := aggregateFuncs[strOr(n.Func2)]
		if !ok {
			return nil, errors.Errorf("Aggregate: unknown func %q", strOr(n.Func2))
		}
		target, err := decodeValue(n.TargetExpr)
		if err != nil {
			return nil, err
		}
		pattern, err := decodeValues(n.Pattern)
		if err != nil {
			return nil, err
		}
		inner, err := decodeOperation(n.Inner)
		if err != nil {
			return nil, err
		}
		return &ram.Aggregate{Relation: strOr(n.Relation), Depth: intOr(n.Depth), Func: fn, TargetExpr: target, Pattern: pattern, Inner: inner}, nil
	case "Filter":
		cond, err := decodeCondition(n.Cond)
		if err != nil {
			return nil, err
		}
		inner, err := decodeOperation(n.Inner)
		if err != nil {
			return nil, err
		}
		return &ram.Filter{Cond: cond, Inner: inner}, nil
	case "Project":
		values, err := decodeValues(n.Values)
		if err != nil {
			return nil, err
		}
		return &ram.Project{Relation: strOr(n.Relation), Values: values}, nil
	case "Return":
		values, err := decodeValues(n.Values)
		if err != nil {
			return nil, err
		}
		return &ram.Return{Values: values}, nil
	default:
		return nil, errors.Errorf("unknown operation node %q", n.Node)
	}
}

func decodeStatement(raw json.RawMessage) (ram.Statement, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errors.Wrap(err, "statement")
	}
	switch n.Node {
	case "Sequence":
		stmts, err := decodeStatements(n.Stmts)
		if err != nil {
			return nil, err
		}
		return &ram.Sequence{Stmts: stmts}, nil
	case "Parallel":
		stmts, err := decodeStatements(n.Stmts)
		if err != nil {
			return nil, err
		}
		return &ram.Parallel{Stmts: stmts}, nil
	case "Loop":
		body, err := decodeStatement(n.Body)
		if err != nil {
			return nil, err
		}
		return &ram.Loop{Body: body}, nil
	case "Exit":
		cond, err := decodeCondition(n.Cond)
		if err != nil {
			return nil, err
		}
		return &ram.Exit{Cond: cond}, nil
	case "Create":
		return &ram.Create{Relation: strOr(n.Relation)}, nil
	case "Clear":
		return &ram.Clear{Relation: strOr(n.Relation)}, nil
	case "Drop":
		return &ram.Drop{Relation: strOr(n.Relation)}, nil
	case "LogSize":
		return &ram.LogSize{Relation: strOr(n.Relation), Message: strOr(n.Message)}, nil
	case "LogTimer":
		inner, err := decodeStatement(n.Inner)
		if err != nil {
			return nil, err
		}
		return &ram.LogTimer{Message: strOr(n.Message), RelationHint: strOr(n.RelationHint), Inner: inner}, nil
	case "DebugInfo":
		inner, err := decodeStatement(n.Inner)
		if err != nil {
			return nil, err
		}
		return &ram.DebugInfo{Message: strOr(n.Message), Inner: inner}, nil
	case "Stratum":
		body, err := decodeStatement(n.Body)
		if err != nil {
			return nil, err
		}
		return &ram.Stratum{Index: intOr(n.StratumIndex), Body: body}, nil
	case "Load":
		return &ram.Load{Relation: strOr(n.Relation), Directives: n.Directives}, nil
	case "Store":
		return &ram.Store{Relation: strOr(n.Relation), Directives: n.Directives}, nil
	case "Fact":
		values, err := decodeValues(n.Values)
		if err != nil {
			return nil, err
		}
		return &ram.Fact{Relation: strOr(n.Relation), Values: values}, nil
	case "Insert":
		cond, err := decodeCondition(n.Cond)
		if err != nil {
			return nil, err
		}
		op, err := decodeOperation(n.Inner)
		if err != nil {
			return nil, err
		}
		return &ram.Insert{Cond: cond, Op: op}, nil
	case "Merge":
		return &ram.Merge{Src: strOr(n.Src), Tgt: strOr(n.Tgt)}, nil
	case "Swap":
		return &ram.Swap{A: strOr(n.A), B: strOr(n.B)}, nil
	case "LatNorm":
		return &ram.LatNorm{In: strOr(n.In), Out: strOr(n.Out)}, nil
	case "LatClean":
		return &ram.LatClean{Origin: strOr(n.Origin), New: strOr(n.New), OutNew: strOr(n.OutNew)}, nil
	default:
		return nil, errors.Errorf("unknown statement node %q", n.Node)
	}
}

func decodeStatements(raws []json.RawMessage) ([]ram.Statement, error) {
	out := make([]ram.Statement, len(raws))
	for i, r := range raws {
		s, err := decodeStatement(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func intOr(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
