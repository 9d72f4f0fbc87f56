package iostore

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"ramalg/internal/domain"
	"ramalg/internal/relation"
)

// DelimitedFactory implements the CSV/TSV Load/Store directive kind:
// one row per tuple, symbol-typed attributes printed/parsed as their
// string form via the shared symbol table, everything else as a base-10
// integer. Params: "filename" (required). The delimiter is fixed by the
// factory (comma for csv, tab for tsv); no parameter overrides it.
type DelimitedFactory struct {
	name      string
	delimiter rune
}

// NewCSVFactory returns the comma-delimited factory.
func NewCSVFactory() *DelimitedFactory { return &DelimitedFactory{name: "csv", delimiter: ','} }

// NewTSVFactory returns the tab-delimited factory.
func NewTSVFactory() *DelimitedFactory { return &DelimitedFactory{name: "tsv", delimiter: '\t'} }

func (f *DelimitedFactory) Name() string  { return f.name }
func (f *DelimitedFactory) Reader() Reader { return delimitedReader{f} }
func (f *DelimitedFactory) Writer() Writer { return delimitedWriter{f} }

type delimitedReader struct{ f *DelimitedFactory }

func (dr delimitedReader) Read(d Directive, symbols *domain.SymbolTable, into relation.Store) error {
	path := d.Params["filename"]
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comma = dr.f.delimiter
	r.FieldsPerRecord = -1

	arity := d.Spec.Arity
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		if len(row) != arity {
			return errors.Errorf("%s: row has %d fields, relation %q has arity %d", path, len(row), d.Spec.Name, arity)
		}
		tuple := make(relation.Tuple, arity)
		for i, field := range row {
			if i < len(d.Spec.SymbolMask) && d.Spec.SymbolMask[i] {
				tuple[i] = symbols.Lookup(field)
				continue
			}
			n, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return errors.Wrapf(err, "%s: field %d %q is not an integer", path, i, field)
			}
			tuple[i] = domain.RamDomain(n)
		}
		into.Insert(tuple)
	}
}

type delimitedWriter struct{ f *DelimitedFactory }

func (dw delimitedWriter) Write(d Directive, symbols *domain.SymbolTable, from relation.Store) error {
	path := d.Params["filename"]
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Comma = dw.f.delimiter
	defer w.Flush()

	for _, tuple := range from.Snapshot() {
		row := make([]string, len(tuple))
		for i, v := range tuple {
			if i < len(d.Spec.SymbolMask) && d.Spec.SymbolMask[i] {
				row[i] = symbols.Resolve(v)
				continue
			}
			row[i] = strconv.FormatInt(int64(v), 10)
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
	}
	w.Flush()
	return w.Error()
}
