// Package codegen generates a Groovy class from a compiled bst unit.
package codegen

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/compiler"
	"github.com/chazu/bst2groovy/pkg/ir"
	"github.com/chazu/bst2groovy/pkg/names"
)

// Defaults used when the corresponding Config field is empty.
const (
	DefaultBaseClass     = "BstStyle"
	DefaultTargetVersion = "3.0"
)

// Config controls the shape of the generated class.
type Config struct {
	Package       string // Groovy package; none when empty
	ClassName     string // Derived from the unit name when empty
	BaseClass     string // Runtime class supplying the bst builtins
	TargetVersion string // Groovy version the output must compile with
	CompileStatic bool   // Annotate the class with @CompileStatic
	PruneUnused   bool   // Leave out functions nothing can reach
}

// Result contains the generated code and any warnings.
type Result struct {
	Code      string
	Warnings  []string
	Skipped   []SkippedFunction
	ClassName string
}

// SkippedFunction records a function left out of the generated class.
type SkippedFunction struct {
	Name   string
	Reason string
}

var minVersion = mustConstraint(">= 2.0")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// CheckVersion validates a target Groovy version.
func CheckVersion(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid Groovy version %q: %w", version, err)
	}
	if !minVersion.Check(v) {
		return nil, fmt.Errorf("unsupported Groovy version %s: need %s", v, minVersion)
	}
	return v, nil
}

// Generate renders unit as Groovy source.
func Generate(unit *compiler.Unit, cfg Config) (*Result, error) {
	if cfg.TargetVersion == "" {
		cfg.TargetVersion = DefaultTargetVersion
	}
	if _, err := CheckVersion(cfg.TargetVersion); err != nil {
		return nil, err
	}
	if cfg.BaseClass == "" {
		cfg.BaseClass = DefaultBaseClass
	}
	if cfg.ClassName == "" {
		cfg.ClassName = ClassName(unit.Name)
	}

	g := &generator{
		unit:     unit,
		cfg:      cfg,
		w:        NewLineWriter(),
		warnings: append([]string{}, unit.Warnings...),
	}
	return g.generate(), nil
}

// ClassName derives a Groovy class name from a style name.
func ClassName(style string) string {
	base := names.Sanitize(style)
	return strings.ToUpper(base[:1]) + base[1:]
}

type generator struct {
	unit     *compiler.Unit
	cfg      Config
	w        *LineWriter
	warnings []string
	skipped  []SkippedFunction
}

func (g *generator) generate() *Result {
	keep := g.reachable()
	var functions []*compiler.Function
	for _, fn := range g.unit.Functions {
		if g.cfg.PruneUnused && !keep[fn] {
			g.skipped = append(g.skipped, SkippedFunction{Name: fn.Name, Reason: "never called"})
			g.warnings = append(g.warnings, fmt.Sprintf("function %q is never called; left out", fn.Name))
			continue
		}
		functions = append(functions, fn)
	}

	w := g.w
	if g.cfg.Package != "" {
		w.Line(0, "package "+g.cfg.Package)
		w.Blank()
	}
	if g.cfg.CompileStatic {
		w.Line(0, "import groovy.transform.CompileStatic")
		w.Blank()
		w.Line(0, "@CompileStatic")
		g.checkStatic(functions)
	}
	w.Line(0, fmt.Sprintf("class %s extends %s {", g.cfg.ClassName, g.cfg.BaseClass))

	g.generateGlobals()
	g.generateConstructor()
	for _, fn := range functions {
		g.generateFunction(fn)
	}
	if g.unit.UsesCallType {
		g.generateCallType(functions)
	}
	g.generateRun()

	w.Line(0, "}")
	return &Result{
		Code:      w.String(),
		Warnings:  g.warnings,
		Skipped:   g.skipped,
		ClassName: g.cfg.ClassName,
	}
}

// reachable marks the functions run by commands or call.type$, and every
// function they call.
func (g *generator) reachable() map[*compiler.Function]bool {
	byIdent := map[string]*compiler.Function{}
	for _, fn := range g.unit.Functions {
		byIdent[fn.Ident] = fn
	}
	keep := map[*compiler.Function]bool{}
	var visit func(fn *compiler.Function)
	visit = func(fn *compiler.Function) {
		if fn == nil || keep[fn] {
			return
		}
		keep[fn] = true
		for _, id := range ir.UserCalls(fn.Body) {
			visit(byIdent[id])
		}
	}
	for _, c := range g.unit.Commands {
		visit(c.Function)
	}
	if g.unit.UsesCallType {
		for _, fn := range callTypeCases(g.unit.Functions) {
			visit(fn)
		}
	}
	return keep
}

// callTypeCases returns the functions call.type$ may dispatch to: every
// function taking nothing from the stack.
func callTypeCases(fns []*compiler.Function) []*compiler.Function {
	var out []*compiler.Function
	for _, fn := range fns {
		if fn.Arity() == 0 {
			out = append(out, fn)
		}
	}
	return out
}

func (g *generator) checkStatic(fns []*compiler.Function) {
	for _, fn := range fns {
		for _, p := range fn.Params {
			if p.ResultType() == ir.TypeUnknown {
				g.warnings = append(g.warnings,
					fmt.Sprintf("function %q has an untyped parameter; @CompileStatic may reject it", fn.Name))
				break
			}
		}
	}
}

func (g *generator) generateGlobals() {
	if len(g.unit.Globals) == 0 {
		return
	}
	g.w.Blank()
	for _, gl := range g.unit.Globals {
		init := "0"
		if gl.Type == ir.TypeString {
			init = "''"
		}
		g.w.Line(1, fmt.Sprintf("%s %s = %s", ir.GroovyType(gl.Type), gl.Ident, init))
	}
}

func (g *generator) generateConstructor() {
	u, w := g.unit, g.w
	w.Blank()
	w.Line(1, g.cfg.ClassName+"() {")
	declare := func(method string, list []string) {
		if len(list) == 0 {
			return
		}
		quoted := make([]string, len(list))
		for i, s := range list {
			quoted[i] = ir.Quote(s)
		}
		w.Line(2, method+"("+strings.Join(quoted, ", ")+")")
	}
	declare("fields", u.Fields)
	declare("integers", u.EntryIntegers)
	declare("strings", u.EntryStrings)
	for _, m := range u.Macros {
		w.Line(2, "macro("+ir.Quote(m.Name)+", "+ir.Quote(m.Value)+")")
	}
	w.Line(1, "}")
}

func (g *generator) generateFunction(fn *compiler.Function) {
	g.w.Blank()
	writeFunction(g.w, fn, 1)
}

// FunctionSource renders a single compiled function as a Groovy method.
func FunctionSource(fn *compiler.Function) string {
	w := NewLineWriter()
	writeFunction(w, fn, 0)
	return w.String()
}

func writeFunction(w *LineWriter, fn *compiler.Function, indent int) {
	var params []string
	if fn.NeedsEntry {
		params = append(params, "Entry entry")
	}
	for _, p := range fn.Params {
		params = append(params, ir.GroovyType(p.ResultType())+" "+ir.LocalName(p))
	}
	w.Line(indent, fmt.Sprintf("%s %s(%s) {", ir.GroovyType(fn.Return), fn.Ident, strings.Join(params, ", ")))
	ir.RenderBlock(w, fn.Body, indent+1)
	w.Line(indent, "}")
}

func (g *generator) generateCallType(fns []*compiler.Function) {
	w := g.w
	w.Blank()
	w.Line(1, "void callType(Entry entry) {")
	w.Line(2, "switch (entry.getType()) {")
	var fallback *compiler.Function
	for _, fn := range callTypeCases(fns) {
		if fn.Name == "default.type" {
			fallback = fn
			continue
		}
		w.Line(3, "case "+ir.Quote(fn.Name)+":")
		w.Line(4, call(fn, "entry"))
		w.Line(4, "break")
	}
	w.Line(3, "default:")
	if fallback != nil {
		w.Line(4, call(fallback, "entry"))
	} else {
		w.Line(4, "warning('unknown entry type ' + entry.getType())")
	}
	w.Line(2, "}")
	w.Line(1, "}")
}

func (g *generator) generateRun() {
	w := g.w
	w.Blank()
	w.Line(1, "void run() {")
	for _, c := range g.unit.Commands {
		switch c.Kind {
		case ast.CmdRead:
			w.Line(2, "read()")
		case ast.CmdSort:
			w.Line(2, "sort()")
		case ast.CmdExecute:
			w.Line(2, g.commandCall(c, "null"))
		case ast.CmdIterate, ast.CmdReverse:
			list := "entries"
			if c.Kind == ast.CmdReverse {
				list = "entries.reverse()"
			}
			w.Line(2, "for (Entry entry in "+list+") {")
			w.Line(3, g.commandCall(c, "entry"))
			w.Line(2, "}")
		}
	}
	w.Line(1, "}")
}

func (g *generator) commandCall(c compiler.Command, entry string) string {
	if c.Function == nil {
		return "callType(" + entry + ")"
	}
	return call(c.Function, entry)
}

func call(fn *compiler.Function, entry string) string {
	if fn.NeedsEntry {
		return fn.Ident + "(" + entry + ")"
	}
	return fn.Ident + "()"
}
