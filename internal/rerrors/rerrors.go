// Package rerrors implements the six error kinds the RAM interpreter can
// raise (spec.md §7): program-structural, FFI, arithmetic/string domain
// errors, regex warnings, reader I/O, and writer I/O. Fatal kinds panic
// with a stack-wrapped error (github.com/pkg/errors) instead of returning
// through every evaluator signature; interp.ExecuteMain installs the
// single recover() point that turns a fatal panic into a
// logged diagnostic and process exit, matching spec.md §7's "fatal
// conditions do not propagate through return values".
package rerrors

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	perrors "github.com/pkg/errors"
)

// Kind classifies an error per spec.md §7.
type Kind int

const (
	KindStructural Kind = iota // unknown node kind, wrong arity, missing lattice case
	KindFFI                    // library/symbol not found, descriptor prep failure
	KindDomain                 // bad tonumber input, division by zero
	KindRegex                  // regex compile failure (non-fatal)
	KindReaderIO               // reader failure (non-fatal)
	KindWriterIO               // writer failure (fatal)
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindFFI:
		return "ffi"
	case KindDomain:
		return "domain"
	case KindRegex:
		return "regex"
	case KindReaderIO:
		return "reader-io"
	case KindWriterIO:
		return "writer-io"
	default:
		return "unknown"
	}
}

// RamError wraps a Kind with a message and a captured stack trace.
type RamError struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *RamError) Error() string { return e.Msg }
func (e *RamError) Unwrap() error { return e.err }

func isFatalKind(k Kind) bool {
	switch k {
	case KindRegex, KindReaderIO:
		return false
	default:
		return true
	}
}

// Fatalf raises a fatal error of the given kind. Fatal kinds panic with a
// *RamError so a top-level recover can print the diagnostic and exit;
// this is the only control-flow use of panic/recover in the module.
func Fatalf(kind Kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	err := &RamError{Kind: kind, Msg: msg, err: perrors.New(msg)}
	if isFatalKind(kind) {
		panic(err)
	}
	Warnf("%s", msg)
}

// Domain raises a KindDomain error (arithmetic/string failures such as
// division by zero or a malformed TONUMBER argument).
func Domain(format string, args ...any) {
	Fatalf(KindDomain, format, args...)
}

// Structural raises a KindStructural error (unknown node kind, wrong
// relation arity, a lattice case table with no matching case).
func Structural(format string, args ...any) {
	Fatalf(KindStructural, format, args...)
}

// Warnf prints a non-fatal diagnostic to stderr. Callers embedding
// relation sizes or other large counts format them with HumanCount.
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// HumanCount formats n the way LogSize-adjacent diagnostics report
// relation sizes: 1,234 rather than 1234.
func HumanCount(n int) string {
	return humanize.Comma(int64(n))
}

// Recover is deferred once at the top of interp.ExecuteMain;
// interp.ExecuteSubroutine does not install it, so a fatal panic there
// reaches its caller. flush is called (if non-nil) before the process
// exits so a profile.Recorder can flush buffered events.
func Recover(flush func()) {
	if r := recover(); r != nil {
		if flush != nil {
			flush()
		}
		if re, ok := r.(*RamError); ok {
			fmt.Fprintf(os.Stderr, "fatal (%s): %s\n", re.Kind, re.Msg)
			if st, ok := re.err.(interface{ StackTrace() perrors.StackTrace }); ok {
				fmt.Fprintf(os.Stderr, "%+v\n", st.StackTrace())
			}
			os.Exit(1)
		}
		// Unknown panic: re-raise after flushing so it isn't swallowed.
		panic(r)
	}
}
