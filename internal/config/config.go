// Package config resolves command-line configuration for the ramalg
// driver: which program to run, where facts live, how many jobs to
// allow inside Parallel, and whether diagnostic output should be
// colorized. Grounded on cmd/sentra/main.go's flag-based dispatch
// (stdlib flag, no cobra/viper anywhere in the reference stack) and its
// mattn/go-isatty-gated color decisions.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// Config is the resolved set of options for one interpreter run.
type Config struct {
	ProgramPath string // path to the compiled RAM program description
	FactDir     string // directory Load directives resolve relative filenames against
	OutputDir   string // directory Store directives resolve relative filenames against
	Jobs        int    // max goroutines live inside any one Parallel fork
	ProfilePath string // profiling sink: "", "file:<path>", or "ws:<addr>"
	Provenance  bool   // use ProvenanceExistenceCheck-aware evaluation
	Color       bool   // colorize stderr diagnostics
	Verbose     bool
}

// Parse resolves a Config from args (os.Args[1:] in normal use).
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("ramalg", flag.ContinueOnError)
	facts := fs.String("facts", ".", "directory to resolve relative Load directive filenames against")
	out := fs.String("output", ".", "directory to resolve relative Store directive filenames against")
	jobs := fs.Int("jobs", 0, "max concurrent goroutines inside a Parallel fork (0 = no cap)")
	profile := fs.String("profile", "", "profiling sink: file:<path> or ws:<addr>")
	provenance := fs.Bool("provenance", false, "enable provenance-aware existence checks")
	noColor := fs.Bool("no-color", false, "disable colorized diagnostics even on a TTY")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("usage: ramalg [flags] <program.json>")
	}

	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if *noColor {
		color = false
	}

	return &Config{
		ProgramPath: fs.Arg(0),
		FactDir:     *facts,
		OutputDir:   *out,
		Jobs:        *jobs,
		ProfilePath: *profile,
		Provenance:  *provenance,
		Color:       color,
		Verbose:     *verbose,
	}, nil
}
