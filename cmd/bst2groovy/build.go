package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/codegen"
	"github.com/chazu/bst2groovy/pkg/compiler"
	"github.com/chazu/bst2groovy/pkg/parser"
	"github.com/chazu/bst2groovy/pkg/report"
)

// translation is the outcome of compiling one source file.
type translation struct {
	Source string
	Output string // Destination path; empty means stdout
	Result *codegen.Result
	Report *report.Report
}

// translate runs the whole pipeline over one source text.
func translate(name, src string, cfg codegen.Config, logf func(string, ...interface{})) (*translation, error) {
	style := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	prog, parseWarnings, err := parser.ParseSource(src, style)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tr, err := translateProgram(name, prog, cfg, logf)
	if err != nil {
		return nil, err
	}
	for _, w := range parseWarnings {
		tr.Result.Warnings = append(tr.Result.Warnings, fmt.Sprintf("line %d: %s", w.Line, w.Message))
	}
	tr.Report.Warnings = tr.Result.Warnings
	return tr, nil
}

// translateProgram compiles an already parsed program.
func translateProgram(name string, prog *ast.Program, cfg codegen.Config, logf func(string, ...interface{})) (*translation, error) {
	var opts []compiler.Option
	if logf != nil {
		opts = append(opts, compiler.WithLogf(logf))
	}
	unit, err := compiler.NewSession(opts...).Compile(prog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	result, err := codegen.Generate(unit, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	rep := report.Build(name, unit)
	rep.ClassName = result.ClassName
	rep.Warnings = result.Warnings
	return &translation{Source: name, Result: result, Report: rep}, nil
}

// outputPath returns where the Groovy class for src is written: next to
// the source, or in outDir when set.
func outputPath(src, outDir, className string) string {
	dir := filepath.Dir(src)
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, className+".groovy")
}

// builder compiles source files concurrently.
type builder struct {
	cfg     codegen.Config
	outDir  string
	jobs    int
	dryRun  bool
	logf    func(string, ...interface{})
	store   *report.Store
	mu      sync.Mutex
	reports []*report.Report
}

// build compiles every file. Failures do not stop the other files; they
// are returned together. Reports of earlier builds are dropped.
func (b *builder) build(ctx context.Context, files []string) error {
	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	b.mu.Lock()
	b.reports = nil
	b.mu.Unlock()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.jobs)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err := b.buildFile(file); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errs.ErrorOrNil()
}

func (b *builder) buildFile(file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	tr, err := translate(file, string(src), b.cfg, b.logf)
	if err != nil {
		return err
	}
	tr.Output = outputPath(file, b.outDir, tr.Result.ClassName)

	b.mu.Lock()
	defer b.mu.Unlock()
	printDiagnostics(tr)
	b.addReport(tr.Report)
	if b.store != nil {
		id, err := b.store.Save(tr.Report)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if b.logf != nil {
			b.logf("stored report of %s as run %s", file, id)
		}
	}
	if b.dryRun {
		fmt.Fprintf(os.Stderr, "Dry run - would write %d bytes to %s\n", len(tr.Result.Code), tr.Output)
		return nil
	}
	return os.WriteFile(tr.Output, []byte(tr.Result.Code), 0o644)
}

// addReport records rep, replacing an earlier report of the same source.
// Reports stay ordered by source path. Callers hold b.mu.
func (b *builder) addReport(rep *report.Report) {
	i := sort.Search(len(b.reports), func(i int) bool { return b.reports[i].Source >= rep.Source })
	if i < len(b.reports) && b.reports[i].Source == rep.Source {
		b.reports[i] = rep
		return
	}
	b.reports = append(b.reports, nil)
	copy(b.reports[i+1:], b.reports[i:])
	b.reports[i] = rep
}

func printDiagnostics(tr *translation) {
	if len(tr.Result.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "bst2groovy: %s\n", tr.Source)
		for _, s := range tr.Result.Skipped {
			fmt.Fprintf(os.Stderr, "  - %s: %s\n", s.Name, s.Reason)
		}
	}
	for _, w := range tr.Result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", tr.Source, w)
	}
}
