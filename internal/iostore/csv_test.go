package iostore

import (
	"os"
	"path/filepath"
	"testing"

	"ramalg/internal/domain"
	"ramalg/internal/relation"
)

func testDirective(factory, path string, spec relation.Spec) Directive {
	return Directive{
		Factory: factory,
		Params:  map[string]string{"filename": path},
		Spec:    spec,
	}
}

func TestDelimitedRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		name    string
		factory *DelimitedFactory
	}{
		{"csv", NewCSVFactory()},
		{"tsv", NewTSVFactory()},
	} {
		t.Run(tt.name, func(t *testing.T) {
			spec := relation.Spec{Name: "person", Arity: 2, SymbolMask: []bool{true, false}}
			syms := domain.NewSymbolTable()
			src := relation.New(spec)
			src.Insert(relation.Tuple{syms.Lookup("alice"), 30})
			src.Insert(relation.Tuple{syms.Lookup("bob"), 25})

			path := filepath.Join(t.TempDir(), "person."+tt.name)
			d := testDirective(tt.name, path, spec)
			if err := tt.factory.Writer().Write(d, syms, src); err != nil {
				t.Fatalf("write: %v", err)
			}

			dst := relation.New(spec)
			if err := tt.factory.Reader().Read(d, syms, dst); err != nil {
				t.Fatalf("read: %v", err)
			}
			if dst.Size() != 2 {
				t.Fatalf("read back %d tuples, want 2", dst.Size())
			}
			if !dst.Exists(relation.Tuple{syms.Lookup("alice"), 30}) {
				t.Fatalf("missing alice after round trip: %v", dst.Snapshot())
			}
		})
	}
}

func TestReaderRejectsWrongArity(t *testing.T) {
	spec := relation.Spec{Name: "pair", Arity: 2}
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("1,2,3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := relation.New(spec)
	err := NewCSVFactory().Reader().Read(testDirective("csv", path, spec), domain.NewSymbolTable(), dst)
	if err == nil {
		t.Fatal("expected an arity mismatch error")
	}
}

func TestRegistryResolvesRelativeFilenames(t *testing.T) {
	dir := t.TempDir()
	spec := relation.Spec{Name: "nums", Arity: 1}
	if err := os.WriteFile(filepath.Join(dir, "nums.csv"), []byte("5\n6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	reg.Register(NewCSVFactory())
	reg.FactDir = dir
	idx := reg.AddDirective(testDirective("csv", "nums.csv", spec))

	dst := relation.New(spec)
	reg.Load(idx, domain.NewSymbolTable(), dst)
	if dst.Size() != 2 || !dst.Exists(relation.Tuple{5}) {
		t.Fatalf("load through registry got %v", dst.Snapshot())
	}

	// An absolute filename is left alone.
	abs := filepath.Join(dir, "nums.csv")
	if got := resolveDir(testDirective("csv", abs, spec), "/elsewhere"); got.Params["filename"] != abs {
		t.Fatalf("absolute path was rewritten to %q", got.Params["filename"])
	}
}

func TestLoadMissingFileIsNonFatal(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewCSVFactory())
	spec := relation.Spec{Name: "ghost", Arity: 1}
	idx := reg.AddDirective(testDirective("csv", filepath.Join(t.TempDir(), "absent.csv"), spec))

	dst := relation.New(spec)
	// Reader failures warn and continue; a panic here is a regression.
	reg.Load(idx, domain.NewSymbolTable(), dst)
	if dst.Size() != 0 {
		t.Fatalf("relation should stay empty, got %v", dst.Snapshot())
	}
}

func TestStoreUnknownFactoryIsFatal(t *testing.T) {
	reg := NewRegistry()
	spec := relation.Spec{Name: "R", Arity: 1}
	idx := reg.AddDirective(testDirective("parquet", "r.parquet", spec))
	defer func() {
		if recover() == nil {
			t.Fatal("expected a structural error for an unregistered factory")
		}
	}()
	reg.Store(idx, domain.NewSymbolTable(), relation.New(spec))
}
