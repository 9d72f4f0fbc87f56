// Package ffi loads and invokes externally compiled scalar functors
// (spec.md §4.10 "UserDefinedOperator") via the standard library's
// plugin package. Grounded on Interpreter::visitUserDefinedOperator in
// original_source/src/Interpreter.cpp, which resolves a symbol with
// dlopen/dlsym and calls it through libffi using a type-signature
// string; Go has no in-tree dlopen/libffi binding anywhere in the
// reference stack, so plugin.Open/plugin.Lookup is the closest stdlib
// equivalent — a function symbol resolved from a shared object by name,
// invoked through a fixed Go signature rather than a hand-built calling
// convention.
package ffi

import (
	"plugin"
	"sync"

	"ramalg/internal/domain"
	"ramalg/internal/rerrors"
)

// Func is the calling convention every user-defined operator plugin
// symbol must expose. Arguments arrive already marshalled per the
// operator's type signature: a string for each 'S' parameter letter, a
// domain.RamDomain for anything else. The return value is mapped back
// the same way — a terminal 'N' expects an integer, any other letter a
// string to intern.
type Func func(args ...any) any

// Bridge resolves and caches user-defined operator symbols from a set
// of plugin object paths, keyed by operator name. Each plugin file is
// opened at most once per process.
type Bridge struct {
	mu    sync.Mutex
	paths []string
	cache map[string]Func
}

// NewBridge returns a Bridge that resolves symbols from the given
// plugin .so paths, searched in order.
func NewBridge(paths []string) *Bridge {
	return &Bridge{paths: paths, cache: make(map[string]Func)}
}

// Register preloads a resolved functor under name, bypassing plugin
// resolution — for drivers that link their functors statically instead
// of shipping a shared object.
func (b *Bridge) Register(name string, fn Func) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache[name] = fn
}

// Call invokes the user-defined operator name with args marshalled per
// sig (one letter per argument plus a trailing return letter; 'S' means
// string, anything else integer), resolving and caching its plugin
// symbol on first use. A missing symbol, a symbol with the wrong Go
// type, or a return value that does not match the signature's terminal
// letter is fatal.
func (b *Bridge) Call(name, sig string, args []domain.RamDomain, symbols *domain.SymbolTable) domain.RamDomain {
	fn := b.resolve(name, sig)
	if fn == nil {
		return 0
	}
	if len(sig) != len(args)+1 {
		rerrors.Fatalf(rerrors.KindFFI, "user-defined operator %q: signature %q does not cover %d arguments", name, sig, len(args))
		return 0
	}

	call := make([]any, len(args))
	for i, a := range args {
		if sig[i] == 'S' {
			call[i] = symbols.Resolve(a)
			continue
		}
		call[i] = a
	}

	ret := fn(call...)
	if sig[len(sig)-1] == 'N' {
		switch v := ret.(type) {
		case domain.RamDomain:
			return v
		case int:
			return domain.RamDomain(v)
		case int64:
			return domain.RamDomain(v)
		default:
			rerrors.Fatalf(rerrors.KindFFI, "user-defined operator %q: expected integer return, got %T", name, ret)
			return 0
		}
	}
	s, ok := ret.(string)
	if !ok {
		rerrors.Fatalf(rerrors.KindFFI, "user-defined operator %q: expected string return, got %T", name, ret)
		return 0
	}
	return symbols.Lookup(s)
}

func (b *Bridge) resolve(name, sig string) Func {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fn, ok := b.cache[name]; ok {
		return fn
	}
	for _, path := range b.paths {
		p, err := plugin.Open(path)
		if err != nil {
			continue
		}
		sym, err := p.Lookup(exportedName(name))
		if err != nil {
			continue
		}
		fn, ok := sym.(func(...any) any)
		if !ok {
			rerrors.Fatalf(rerrors.KindFFI, "user-defined operator %q (sig %s): plugin symbol has wrong type", name, sig)
			return nil
		}
		b.cache[name] = Func(fn)
		return Func(fn)
	}
	rerrors.Fatalf(rerrors.KindFFI, "user-defined operator %q (sig %s): no plugin exports it", name, sig)
	return nil
}

// exportedName maps a Datalog functor name to the Go-exported symbol
// name a plugin must define for it.
func exportedName(name string) string {
	if len(name) == 0 {
		return name
	}
	b := []byte(name)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
