// bst2groovy - BibTeX style to Groovy compiler
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/codegen"
	"github.com/chazu/bst2groovy/pkg/report"
)

var (
	outDir     = flag.String("o", "", "output directory (default: next to each input)")
	pkg        = flag.String("package", "", "Groovy package of the generated classes")
	className  = flag.String("class", "", "class name (single input only; default: derived from the file name)")
	baseClass  = flag.String("base", codegen.DefaultBaseClass, "runtime base class")
	groovy     = flag.String("groovy", codegen.DefaultTargetVersion, "target Groovy version")
	static     = flag.Bool("static", false, "annotate classes with @CompileStatic")
	prune      = flag.Bool("prune", false, "leave out functions nothing calls")
	strict     = flag.Bool("strict", false, "fail when a function is left out or a warning is reported")
	dryRun     = flag.Bool("dry-run", false, "compile without writing output files")
	jobs       = flag.Int("j", runtime.NumCPU(), "number of files compiled in parallel")
	watchFlag  = flag.Bool("watch", false, "recompile inputs when they change")
	reportPath = flag.String("report", "", "write a JSON function report to this file (- for stdout)")
	dbPath     = flag.String("db", "", "append function reports to this SQLite database")
	trace      = flag.Bool("trace", false, "log compiler decisions to stderr")
	astInput   = flag.Bool("ast", false, "stdin holds a JSON program (as printed by bst-inspect parse)")
	version    = flag.Bool("version", false, "print version and exit")
)

const versionStr = "0.3.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "bst2groovy - BibTeX style to Groovy compiler\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  bst2groovy [options] style.bst...\n")
		fmt.Fprintf(os.Stderr, "  bst2groovy [options] < style.bst > Style.groovy\n")
		fmt.Fprintf(os.Stderr, "  bst-inspect parse style.bst | bst2groovy -ast > Style.groovy\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("bst2groovy version %s\n", versionStr)
		os.Exit(0)
	}

	cfg := codegen.Config{
		Package:       *pkg,
		ClassName:     *className,
		BaseClass:     *baseClass,
		TargetVersion: *groovy,
		CompileStatic: *static,
		PruneUnused:   *prune,
	}
	if _, err := codegen.CheckVersion(cfg.TargetVersion); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var logf func(string, ...interface{})
	if *trace {
		log.SetFlags(0)
		log.SetPrefix("bst2groovy: ")
		logf = log.Printf
	}

	files := flag.Args()
	if len(files) == 0 {
		if err := runStdin(cfg, logf); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if cfg.ClassName != "" && len(files) > 1 {
		fmt.Fprintf(os.Stderr, "Error: -class needs exactly one input file\n")
		os.Exit(1)
	}

	b := &builder{cfg: cfg, outDir: *outDir, jobs: max(*jobs, 1), dryRun: *dryRun, logf: logf}
	if *dbPath != "" {
		store, err := report.Open(&report.Config{DBPath: *dbPath})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		b.store = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := b.build(ctx, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if rerr := writeReports(b.reports); rerr != nil {
		fmt.Fprintf(os.Stderr, "Error: writing report: %v\n", rerr)
		os.Exit(1)
	}
	if *strict && hasDiagnostics(b.reports) {
		fmt.Fprintf(os.Stderr, "Error: -strict enabled, refusing warnings\n")
		os.Exit(1)
	}

	if *watchFlag {
		if werr := b.watch(ctx, files); werr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", werr)
			os.Exit(1)
		}
		return
	}
	if err != nil {
		os.Exit(1)
	}
}

// runStdin compiles one style read from stdin to stdout.
func runStdin(cfg codegen.Config, logf func(string, ...interface{})) error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if len(input) == 0 {
		return fmt.Errorf("no input provided")
	}

	var tr *translation
	if *astInput {
		prog, perr := ast.ParseBytes(input)
		if perr != nil {
			return perr
		}
		tr, err = translateProgram("stdin.json", prog, cfg, logf)
	} else {
		tr, err = translate("stdin.bst", string(input), cfg, logf)
	}
	if err != nil {
		return err
	}
	printDiagnostics(tr)
	if err := writeReports([]*report.Report{tr.Report}); err != nil {
		return err
	}
	if *strict && hasDiagnostics([]*report.Report{tr.Report}) {
		return fmt.Errorf("-strict enabled, refusing warnings")
	}
	if *dryRun {
		fmt.Fprintf(os.Stderr, "Dry run - would generate %d bytes of Groovy code\n", len(tr.Result.Code))
		return nil
	}
	fmt.Print(tr.Result.Code)
	return nil
}

func writeReports(reports []*report.Report) error {
	switch *reportPath {
	case "":
		return nil
	case "-":
		return report.WriteJSON(os.Stdout, reports...)
	}
	f, err := os.Create(*reportPath)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(f, reports...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func hasDiagnostics(reports []*report.Report) bool {
	for _, r := range reports {
		if len(r.Warnings) > 0 {
			return true
		}
	}
	return false
}
