// Command stackc compiles .stackspec documents (combinator expressions
// over a rune alphabet and a string accumulator) down to a deterministic
// graph, and either reports the diagnostics found along the way or
// drives that graph with one of the toolchain's two deterministic
// backends: the reference interpreter or the Go source emitter.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dtromb/stackfa/combinator"
	"github.com/dtromb/stackfa/determinize"
	"github.com/dtromb/stackfa/diag"
	"github.com/dtromb/stackfa/emit"
	"github.com/dtromb/stackfa/graph"
	"github.com/dtromb/stackfa/interp"
)

const usage = `Usage:
  stackc compile <spec.stackspec>            report diagnostics or confirm the graph compiles
  stackc dot     <spec.stackspec>             write the compiled graph as Graphviz DOT
  stackc text    <spec.stackspec>             write the compiled graph as a line-oriented dump
  stackc run     <spec.stackspec> <input>     interpret input against the compiled graph
  stackc emit    <spec.stackspec> <out.go>    emit a standalone Go parser package

Flags:
  -verbose       log at slog.LevelDebug instead of slog.LevelInfo
  -package NAME  package clause for "emit" (default "parser")
  -prefix NAME   per-state function prefix for "emit" (default "state")
`

func main() {
	verbose := flag.Bool("verbose", false, "log at debug level")
	pkg := flag.String("package", "parser", "emitted package name")
	prefix := flag.String("prefix", "state", "emitted state-function prefix")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		os.Exit(2)
	}

	cmd, specPath := args[0], args[1]
	spec, err := loadSpec(specPath)
	if err != nil {
		logger.Error("failed to load spec", "path", specPath, "error", err)
		os.Exit(1)
	}

	expr, err := spec.Expr.build()
	if err != nil {
		logger.Error("failed to build expression", "error", err)
		os.Exit(1)
	}
	ng := combinator.Build[rune, string](expr)
	dg, bag := determinize.Compile(ng, determinize.DefaultOptions())
	if !bag.Empty() {
		diag.Render(bag, os.Stdout)
		os.Exit(1)
	}
	logger.Debug("compiled", "states", dg.NumStates())

	switch cmd {
	case "compile":
		fmt.Printf("ok: %d states\n", dg.NumStates())
	case "dot":
		graph.WriteDOT(dg, os.Stdout)
	case "text":
		graph.WriteText(dg, os.Stdout)
	case "run":
		if len(args) < 3 {
			flag.Usage()
			os.Exit(2)
		}
		runInput(dg, args[2], logger)
	case "emit":
		if len(args) < 3 {
			flag.Usage()
			os.Exit(2)
		}
		p, pr := *pkg, *prefix
		if spec.Package != "" {
			p = spec.Package
		}
		if spec.Prefix != "" {
			pr = spec.Prefix
		}
		emitTo(dg, args[2], p, pr, logger)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runInput(dg *graph.DGraph[rune, string], input string, logger *slog.Logger) {
	result, err := interp.Run(dg, interp.NewSliceStream([]rune(input)), "")
	if err != nil {
		logger.Error("rejected", "error", err)
		os.Exit(1)
	}
	fmt.Println(result)
}

func emitTo(dg *graph.DGraph[rune, string], outPath, pkg, prefix string, logger *slog.Logger) {
	src, err := emit.Emit[rune, string](dg, emit.Config{
		Package:   pkg,
		Prefix:    prefix,
		TokenType: "rune",
		AccType:   "string",
		Literal:   func(v interface{}) string { return fmt.Sprintf("%q", v.(rune)) },
	})
	if err != nil {
		logger.Error("emit failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		logger.Error("failed to write emitted source", "path", outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("wrote parser", "path", outPath, "states", dg.NumStates())
}
