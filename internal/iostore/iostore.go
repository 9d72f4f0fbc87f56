// Package iostore implements the Load/Store I/O directive contract
// (spec.md external interfaces): pluggable Reader/Writer factories keyed
// by directive name, covering delimited-file and SQL-table relation
// persistence. Grounded on original_source/src/Interpreter.cpp's
// IOSystem dispatch and, for the SQL factory, on the multi-driver
// blank-import pattern in sentra/internal/database/database.go.
package iostore

import (
	"path/filepath"

	"ramalg/internal/domain"
	"ramalg/internal/relation"
	"ramalg/internal/rerrors"
)

// Directive is one Load/Store configuration: which factory to use and
// its key-value parameters (filename, dialect, dsn, table, ...), plus
// the column type masks needed to print/parse each attribute.
type Directive struct {
	Factory string
	Params  map[string]string
	Spec    relation.Spec
}

// Reader populates a relation from an external source.
type Reader interface {
	Read(d Directive, symbols *domain.SymbolTable, into relation.Store) error
}

// Writer drains a relation to an external sink.
type Writer interface {
	Write(d Directive, symbols *domain.SymbolTable, from relation.Store) error
}

// Factory produces a Reader and Writer pair for one directive kind.
type Factory interface {
	Name() string
	Reader() Reader
	Writer() Writer
}

// Registry is the set of directive factories available to Load/Store
// statements, plus the resolved directive table the IR's Load/Store
// statements index into by integer position (spec.md §4.8).
type Registry struct {
	factories  map[string]Factory
	Directives []Directive

	// FactDir and OutputDir are the base directories relative "filename"
	// params resolve against on Load and Store respectively. Empty means
	// the working directory.
	FactDir   string
	OutputDir string
}

// NewRegistry returns an empty registry; call Register for each
// available factory (CSVFactory, TSVFactory, SQLFactory, ...).
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds f, keyed by its Name().
func (r *Registry) Register(f Factory) { r.factories[f.Name()] = f }

// AddDirective appends d to the resolved table and returns its index,
// for use as a Load/Store statement's Directives entry.
func (r *Registry) AddDirective(d Directive) int {
	r.Directives = append(r.Directives, d)
	return len(r.Directives) - 1
}

func (r *Registry) factory(name string) Factory {
	f, ok := r.factories[name]
	if !ok {
		rerrors.Structural("unknown I/O directive factory %q", name)
		return nil
	}
	return f
}

// Load runs directive index against into. Reader errors are logged as
// non-fatal warnings (spec.md §7: reader-IO is recoverable).
func (r *Registry) Load(index int, symbols *domain.SymbolTable, into relation.Store) {
	if index < 0 || index >= len(r.Directives) {
		rerrors.Structural("load: directive index %d out of range", index)
		return
	}
	d := resolveDir(r.Directives[index], r.FactDir)
	f := r.factory(d.Factory)
	if f == nil {
		return
	}
	if err := f.Reader().Read(d, symbols, into); err != nil {
		rerrors.Fatalf(rerrors.KindReaderIO, "load %s: %v", d.Factory, err)
	}
}

// resolveDir rebinds a relative "filename" param against base without
// mutating the registry's stored directive.
func resolveDir(d Directive, base string) Directive {
	name, ok := d.Params["filename"]
	if !ok || base == "" || filepath.IsAbs(name) {
		return d
	}
	params := make(map[string]string, len(d.Params))
	for k, v := range d.Params {
		params[k] = v
	}
	params["filename"] = filepath.Join(base, name)
	d.Params = params
	return d
}

// Store runs directive index against from. Writer errors are fatal
// (spec.md §7: writer-IO aborts the run).
func (r *Registry) Store(index int, symbols *domain.SymbolTable, from relation.Store) {
	if index < 0 || index >= len(r.Directives) {
		rerrors.Structural("store: directive index %d out of range", index)
		return
	}
	d := resolveDir(r.Directives[index], r.OutputDir)
	f := r.factory(d.Factory)
	if f == nil {
		return
	}
	if err := f.Writer().Write(d, symbols, from); err != nil {
		rerrors.Fatalf(rerrors.KindWriterIO, "store %s: %v", d.Factory, err)
	}
}
