package program

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"ramalg/internal/iostore"
	"ramalg/internal/lattice"
	"ramalg/internal/ram"
	"ramalg/internal/relation"
)

// FileProgram is LoadFile's on-disk JSON shape: a program description
// with no front-end syntax of its own (spec.md's Non-goals exclude a
// Datalog parser) — every node is its RAM IR shape directly, tagged by
// Go type name. encoding/json is used because no serialization library
// appears anywhere in the retrieval corpus; this is the one place the
// module reaches for stdlib marshalling rather than an ecosystem
// package, justified in the project's design notes.
type FileProgram struct {
	Relations   map[string]relation.Spec   `json:"relations"`
	Lattice     *rawLattice                `json:"lattice"`
	Main        json.RawMessage            `json:"main"`
	Subroutines map[string]json.RawMessage `json:"subroutines"`
	Directives  []rawDirective             `json:"directives"`
	Plugins     []string                   `json:"plugins"`
}

type rawDirective struct {
	Factory  string            `json:"factory"`
	Params   map[string]string `json:"params"`
	Relation string            `json:"relation"`
}

type rawLattice struct {
	Bottom int32                  `json:"bottom"`
	Top    int32                  `json:"top"`
	LUB    rawCaseFunc            `json:"lub"`
	GLB    rawCaseFunc            `json:"glb"`
	Unary  map[string]rawCaseFunc `json:"unary"`
	Binary map[string]rawCaseFunc `json:"binary"`
}

type rawCaseFunc struct {
	Cases []rawCase `json:"cases"`
}

type rawCase struct {
	Match  json.RawMessage `json:"match"`
	Output json.RawMessage `json:"output"`
}

// LoadFile reads path as a FileProgram and resolves it to a *Program,
// with Directives/Plugins populated for the driver's I/O registry and
// FFI bridge wiring.
func LoadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read program file %s", path)
	}
	var fp FileProgram
	if err := json.Unmarshal(data, &fp); err != nil {
		return nil, errors.Wrapf(err, "parse program file %s", path)
	}

	p := New()
	for name, spec := range fp.Relations {
		spec.Name = name
		p.Relations[name] = spec
	}

	if fp.Lattice != nil {
		assoc := lattice.NewAssociation(fp.Lattice.Bottom, fp.Lattice.Top, nil, nil)
		lub, err := decodeCaseFunc("lub", fp.Lattice.LUB)
		if err != nil {
			return nil, err
		}
		glb, err := decodeCaseFunc("glb", fp.Lattice.GLB)
		if err != nil {
			return nil, err
		}
		assoc.LUB, assoc.GLB = lub, glb
		for name, raw := range fp.Lattice.Unary {
			cases, err := decodeCases(raw.Cases)
			if err != nil {
				return nil, err
			}
			assoc.Unary[name] = &lattice.UnaryFunction{Name: name, Cases: cases}
		}
		for name, raw := range fp.Lattice.Binary {
			fn, err := decodeCaseFunc(name, raw)
			if err != nil {
				return nil, err
			}
			assoc.Binary[name] = fn
		}
		p.Lattice = assoc
	}

	if len(fp.Main) > 0 {
		main, err := decodeStatement(fp.Main)
		if err != nil {
			return nil, errors.Wrap(err, "main")
		}
		p.Main = main
	}
	for name, raw := range fp.Subroutines {
		st, err := decodeStatement(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "subroutine %s", name)
		}
		p.Subroutines[name] = st
	}

	p.Plugins = fp.Plugins
	for _, d := range fp.Directives {
		p.Directives = append(p.Directives, iostore.Directive{
			Factory: d.Factory,
			Params:  d.Params,
			Spec:    p.Relations[d.Relation],
		})
	}

	return p, nil
}

func decodeCaseFunc(name string, raw rawCaseFunc) (*lattice.BinaryFunction, error) {
	cases, err := decodeCases(raw.Cases)
	if err != nil {
		return nil, err
	}
	return &lattice.BinaryFunction{Name: name, Cases: cases}, nil
}

func decodeCases(raw []rawCase) ([]lattice.Case, error) {
	out := make([]lattice.Case, len(raw))
	for i, c := range raw {
		var match ram.Condition
		if len(c.Match) > 0 {
			m, err := decodeCondition(c.Match)
			if err != nil {
				return nil, err
			}
			match = m
		}
		output, err := decodeValue(c.Output)
		if err != nil {
			return nil, err
		}
		out[i] = lattice.Case{Match: match, Output: output}
	}
	return out, nil
}
