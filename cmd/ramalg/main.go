// Command ramalg runs a RAM program to fixpoint: it loads a
// program.Program from a JSON program description, wires the
// shared services (lattice, FFI, I/O, profiling), and calls
// interp.ExecuteMain, matching sentra/cmd/sentra/main.go's "construct
// then run" driver shape.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gorilla/websocket"

	"ramalg/internal/analysis"
	"ramalg/internal/config"
	"ramalg/internal/ffi"
	"ramalg/internal/interp"
	"ramalg/internal/iostore"
	"ramalg/internal/profile"
	"ramalg/internal/program"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	prog, err := program.LoadFile(cfg.ProgramPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ramalg: %v\n", err)
		os.Exit(1)
	}

	tables := analysis.Build(prog.Main, prog.Subroutines)
	io := iostore.NewRegistry()
	io.Register(iostore.NewCSVFactory())
	io.Register(iostore.NewTSVFactory())
	io.Register(iostore.NewSQLFactory())
	io.FactDir = cfg.FactDir
	io.OutputDir = cfg.OutputDir
	for _, d := range prog.Directives {
		io.AddDirective(d)
	}

	rec, flush := buildRecorder(cfg)
	bridge := ffi.NewBridge(prog.Plugins)

	ctx := interp.NewContext(prog, tables, io, rec, bridge)
	ctx.Jobs = cfg.Jobs
	ctx.Verbose = cfg.Verbose
	if cfg.Verbose && cfg.Provenance {
		fmt.Fprintln(os.Stderr, "ramalg: provenance-aware evaluation enabled")
	}
	interp.ExecuteMain(ctx, flush)

	if cfg.Verbose {
		fmt.Fprintln(os.Stderr, "ramalg: run complete")
	}
}

func buildRecorder(cfg *config.Config) (profile.Recorder, func()) {
	switch {
	case cfg.ProfilePath == "":
		return profile.NopRecorder{}, nil
	case strings.HasPrefix(cfg.ProfilePath, "file:"):
		rec, err := profile.NewFileRecorder(strings.TrimPrefix(cfg.ProfilePath, "file:"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ramalg: profile file: %v\n", err)
			return profile.NopRecorder{}, nil
		}
		return rec, func() { rec.Close() }
	case strings.HasPrefix(cfg.ProfilePath, "ws:"):
		addr := strings.TrimPrefix(cfg.ProfilePath, "ws:")
		conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ramalg: profile websocket: %v\n", err)
			return profile.NopRecorder{}, nil
		}
		rec := profile.NewWebSocketRecorder(conn)
		return rec, func() { conn.Close() }
	default:
		fmt.Fprintf(os.Stderr, "ramalg: unsupported profile sink %q, disabling profiling\n", cfg.ProfilePath)
		return profile.NopRecorder{}, nil
	}
}
