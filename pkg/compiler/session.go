// Package compiler translates parsed bst programs into the generated-code IR.
//
// Each function body is evaluated symbolically: the evaluator walks its
// tokens while keeping a stack of IR expressions instead of run-time
// values. Builtins are handlers in a Registry; they pop operands, push
// pure expressions and append effectful statements. Conditionals evaluate
// both branches on fresh stacks and unify what they leave behind into
// shared local variables.
package compiler

import (
	"fmt"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/ir"
	"github.com/chazu/bst2groovy/pkg/names"
)

// Unit is a compiled bst program.
type Unit struct {
	Name          string
	Fields        []string
	EntryIntegers []string
	EntryStrings  []string
	Globals       []Global
	Macros        []ast.Macro
	Functions     []*Function
	Commands      []Command
	UsesCallType  bool
	Warnings      []string
}

// Function returns the compiled function with the given bst name.
func (u *Unit) Function(name string) (*Function, bool) {
	for _, fn := range u.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// Global is a global INTEGERS or STRINGS variable.
type Global struct {
	Name  string
	Ident string
	Type  ir.Type
}

// Command is an executable top-level command (READ, EXECUTE, ITERATE,
// REVERSE, SORT). Function is nil for READ, SORT and call.type$.
type Command struct {
	Kind     ast.CommandKind
	Target   string
	Function *Function
	Location ast.Location
}

// Function is a compiled bst function.
type Function struct {
	Name       string
	Ident      string
	Params     []ir.Local // In call order
	Body       *ir.Block
	Return     ir.Type
	Pushes     *ir.CodeBlock // Code block left on the caller's stack after the call
	NeedsEntry bool
	Uses       int
	Vars       *ir.VarTable
	Location   ast.Location

	compiling bool
}

// Arity returns the number of parameters.
func (f *Function) Arity() int {
	return len(f.Params)
}

// Option configures a Session.
type Option func(*Session)

// WithLogf sets the trace logger.
func WithLogf(logfn func(mess string, args ...interface{})) Option {
	return func(s *Session) { s.logfn = logfn }
}

// WithRegistry replaces DefaultRegistry as the parent of the session's
// symbol table.
func WithRegistry(r *Registry) Option {
	return func(s *Session) { s.builtins = r }
}

// Session holds the state of one source-file translation: the identifier
// table, the symbol table overlay and the compiled functions.
type Session struct {
	builtins     *Registry
	registry     *Registry
	names        *names.Table
	functions    []*Function
	byName       map[string]*Function
	globals      []Global
	usesCallType bool
	warnings     []string
	logfn        func(mess string, args ...interface{})
}

// NewSession creates a session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		builtins: DefaultRegistry,
		names:    names.NewTable(),
		byName:   make(map[string]*Function),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = NewRegistry(s.builtins)
	return s
}

// Names returns the identifier table.
func (s *Session) Names() *names.Table {
	return s.names
}

// Registry returns the session's symbol table.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Warnings returns the warnings collected so far.
func (s *Session) Warnings() []string {
	return s.warnings
}

func (s *Session) logf(mess string, args ...interface{}) {
	if s.logfn != nil {
		s.logfn(mess, args...)
	}
}

func (s *Session) warnf(format string, args ...interface{}) {
	w := fmt.Sprintf(format, args...)
	s.warnings = append(s.warnings, w)
	s.logf("warning: %s", w)
}

// Compile translates a whole program. The first error aborts translation.
func (s *Session) Compile(prog *ast.Program) (*Unit, error) {
	u := &Unit{Name: prog.Name, Macros: prog.Macros}

	if err := s.declareEntry(prog.Entry, u); err != nil {
		return nil, err
	}
	for _, name := range prog.Integers {
		if err := s.declareGlobal(name, ir.TypeInt); err != nil {
			return nil, err
		}
	}
	for _, name := range prog.Strings {
		if err := s.declareGlobal(name, ir.TypeString); err != nil {
			return nil, err
		}
	}
	u.Globals = s.globals

	for i := range prog.Functions {
		if _, err := s.CompileFunction(&prog.Functions[i]); err != nil {
			return nil, err
		}
	}
	u.Functions = s.functions

	for _, c := range prog.Commands {
		cmd, ok, err := s.command(c)
		if err != nil {
			return nil, err
		}
		if ok {
			u.Commands = append(u.Commands, cmd)
		}
	}
	u.UsesCallType = s.usesCallType
	u.Warnings = s.warnings
	return u, nil
}

func (s *Session) declareEntry(e ast.Entry, u *Unit) error {
	fields := append([]string{}, e.Fields...)
	if !contains(fields, "crossref") {
		fields = append(fields, "crossref")
	}
	strs := append([]string{}, e.Strings...)
	if !contains(strs, "sort.key$") {
		strs = append(strs, "sort.key$")
	}
	for _, name := range fields {
		if err := s.declareVar(ir.VarRefExpr{Name: name, Kind: ir.VarField, Type_: ir.TypeString}); err != nil {
			return err
		}
	}
	for _, name := range e.Integers {
		if err := s.declareVar(ir.VarRefExpr{Name: name, Kind: ir.VarEntryInt, Type_: ir.TypeInt}); err != nil {
			return err
		}
	}
	for _, name := range strs {
		if err := s.declareVar(ir.VarRefExpr{Name: name, Kind: ir.VarEntryString, Type_: ir.TypeString}); err != nil {
			return err
		}
	}
	u.Fields, u.EntryIntegers, u.EntryStrings = fields, e.Integers, strs
	return nil
}

func (s *Session) declareGlobal(name string, typ ir.Type) error {
	ref := ir.VarRefExpr{Name: name, Kind: ir.VarGlobal, Type_: typ}
	if err := s.checkNew(name); err != nil {
		return err
	}
	ref.Ident = s.names.Translate(name)
	s.globals = append(s.globals, Global{Name: name, Ident: ref.Ident, Type: typ})
	return s.declareVar(ref)
}

func (s *Session) declareVar(ref ir.VarRefExpr) error {
	if err := s.checkNew(ref.Name); err != nil {
		return err
	}
	s.registry.Register(ref.Name, &variableHandler{ref: ref})
	return nil
}

func (s *Session) checkNew(name string) error {
	if s.registry.Defines(name) {
		return &TranslateError{Kind: ErrSyntax, Message: fmt.Sprintf("%q is already defined", name)}
	}
	return nil
}

// command resolves an executable command. Declarations report ok=false.
func (s *Session) command(c ast.Command) (Command, bool, error) {
	cmd := Command{Kind: c.Kind, Target: c.Target, Location: c.Location}
	switch c.Kind {
	case ast.CmdRead, ast.CmdSort:
		return cmd, true, nil
	case ast.CmdExecute, ast.CmdIterate, ast.CmdReverse:
	default:
		return cmd, false, nil
	}

	if c.Target == "call.type$" && c.Kind != ast.CmdExecute {
		s.usesCallType = true
		return cmd, true, nil
	}
	fn, ok := s.byName[c.Target]
	if !ok {
		return cmd, false, &TranslateError{
			Kind:    ErrUnknownToken,
			Message: fmt.Sprintf("%s {%s}: no such function", c.Kind, c.Target),
		}
	}
	if fn.Arity() > 0 {
		return cmd, false, &TranslateError{
			Kind:     ErrStackEffect,
			Function: fn.Name,
			Message:  fmt.Sprintf("%s target takes %d arguments from the stack", c.Kind, fn.Arity()),
		}
	}
	if c.Kind == ast.CmdExecute && fn.NeedsEntry {
		s.warnf("EXECUTE {%s} reads entry data outside of ITERATE", fn.Name)
	}
	if fn.Return != ir.TypeVoid {
		s.warnf("%s {%s} discards the function's result", c.Kind, fn.Name)
	}
	cmd.Function = fn
	return cmd, true, nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
