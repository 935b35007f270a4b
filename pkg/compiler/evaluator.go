package compiler

import (
	"errors"
	"strconv"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/ir"
)

// Evaluator holds the state of one function being compiled. Every frame
// of the function, including the frames of nested if$ and while$ blocks,
// shares its variable table.
type Evaluator struct {
	session    *Session
	fn         *Function
	vars       *ir.VarTable
	needsEntry bool
}

func newEvaluator(s *Session, fn *Function) *Evaluator {
	return &Evaluator{session: s, fn: fn, vars: fn.Vars}
}

// Frame is a symbolic stack together with the statement list it appends to.
type Frame struct {
	ev    *Evaluator
	Stack *Stack
	Out   *ir.Block
	wrote bool // a statement that may change globals or entry data was emitted
}

// NewFrame returns a frame with an empty stack and output.
func (ev *Evaluator) NewFrame() *Frame {
	return &Frame{ev: ev, Stack: NewStack(ev.vars), Out: ir.NewBlock()}
}

// Run evaluates tokens against fr.
func (ev *Evaluator) Run(fr *Frame, tokens []ast.Token) error {
	return fr.Run(tokens)
}

func (ev *Evaluator) step(fr *Frame, tok ast.Token) error {
	switch tok.Type {
	case ast.TokenInteger:
		n, err := strconv.ParseInt(tok.Value, 10, 32)
		if err != nil {
			return errorf(ErrSyntax, "integer %q out of range", tok.Value)
		}
		fr.Push(ir.IntLit{Value: n})
	case ast.TokenString:
		fr.Push(ir.StrLit{Value: tok.Value})
	case ast.TokenBlock:
		var tokens []ast.Token
		if tok.Block != nil {
			tokens = tok.Block.Tokens
		}
		fr.Push(ir.CodeBlock{Tokens: tokens})
	case ast.TokenQuoted:
		if !ev.session.registry.Defines(tok.Value) {
			return errorf(ErrUnknownToken, "unknown name %q", tok.Value)
		}
		ref := ast.Ident(tok.Value, tok.Loc())
		fr.Push(ir.CodeBlock{Tokens: []ast.Token{ref}, Quoted: tok.Value})
	case ast.TokenIdentifier:
		h := ev.session.registry.Lookup(tok.Value)
		if h == nil {
			return errorf(ErrUnknownToken, "unknown function or builtin %q", tok.Value)
		}
		return h.Evaluate(fr, tok)
	default:
		return errorf(ErrSyntax, "unexpected token type %s", tok.Type)
	}
	return nil
}

// Session returns the compilation session.
func (fr *Frame) Session() *Session {
	return fr.ev.session
}

// Vars returns the variable table of the function being compiled.
func (fr *Frame) Vars() *ir.VarTable {
	return fr.ev.vars
}

// Sub returns a fresh frame of the same function, used for nested blocks.
func (fr *Frame) Sub() *Frame {
	return fr.ev.NewFrame()
}

// Run evaluates a token list in this frame.
func (fr *Frame) Run(tokens []ast.Token) error {
	for i := range tokens {
		if err := fr.ev.step(fr, tokens[i]); err != nil {
			return locate(err, fr.ev.fn.Name, &tokens[i])
		}
	}
	return nil
}

// UseEntry marks the function as needing the current entry.
func (fr *Frame) UseEntry() {
	fr.ev.needsEntry = true
}

// Push pushes e onto the stack.
func (fr *Frame) Push(e ir.Expression) {
	fr.Stack.Push(e)
}

// Pop pops any item.
func (fr *Frame) Pop() ir.Expression {
	return fr.Stack.Pop()
}

// PopType pops a value of type t, refining an untyped future.
func (fr *Frame) PopType(t ir.Type) (ir.Expression, error) {
	e := fr.Stack.Pop()
	if err := fr.Expect(e, t); err != nil {
		return nil, err
	}
	return e, nil
}

// PopValue pops an int or string, or a future of yet unknown type.
func (fr *Frame) PopValue() (ir.Expression, error) {
	e := fr.Stack.Pop()
	if e.ResultType() == ir.TypeCode || e.ResultType() == ir.TypeVoid {
		return nil, errorf(ErrType, "expected a value, got %s", e.ResultType())
	}
	return e, nil
}

// PopCode pops a code block.
func (fr *Frame) PopCode() (ir.CodeBlock, bool) {
	cb, ok := fr.Stack.Pop().(ir.CodeBlock)
	return cb, ok
}

// Expect checks that e has type t. An untyped local is refined to t.
// TypeUnknown accepts any value.
func (fr *Frame) Expect(e ir.Expression, t ir.Type) error {
	got := e.ResultType()
	switch {
	case got == t:
		return nil
	case t == ir.TypeUnknown:
		if got == ir.TypeCode || got == ir.TypeVoid {
			return errorf(ErrType, "expected a value, got %s", got)
		}
		return nil
	case got == ir.TypeUnknown:
		if l, ok := e.(ir.Local); ok {
			return typeError(fr.ev.vars.Refine(l.ID, t))
		}
	}
	return errorf(ErrType, "expected %s, got %s", t, got)
}

func typeError(err error) error {
	var mismatch *ir.ErrTypeMismatch
	if errors.As(err, &mismatch) {
		return errorf(ErrType, "%s", mismatch.Error())
	}
	return err
}

// Emit appends a statement. Items still on the stack are spilled into
// temporaries first when evaluating them later could observe the
// statement's effects, or when they have effects of their own.
func (fr *Frame) Emit(s ir.Statement, writes bool) {
	fr.Spill(writes)
	fr.Out.Append(s)
	if writes {
		fr.wrote = true
	}
}

// Spill replaces stack items that call user functions, and items reading
// state when writes is set, by temporaries declared in source order.
func (fr *Frame) Spill(writes bool) {
	for i, e := range fr.Stack.items {
		if ir.HasUserCall(e) || (writes && ir.ReadsState(e)) {
			fr.Stack.set(i, fr.declareTemp(e))
		}
	}
}

// Temp declares a temporary holding e and returns it.
func (fr *Frame) Temp(e ir.Expression) ir.Local {
	fr.Spill(ir.HasUserCall(e))
	return fr.declareTemp(e)
}

func (fr *Frame) declareTemp(e ir.Expression) ir.Local {
	t := fr.ev.vars.New(e.ResultType())
	fr.Out.Append(ir.DeclareStmt{Var: t, Value: e})
	if ir.HasUserCall(e) {
		fr.wrote = true
	}
	return t
}

// Warnf records a non-fatal diagnostic for the current function.
func (fr *Frame) Warnf(format string, args ...interface{}) {
	fr.ev.session.warnf("function %q: "+format, append([]interface{}{fr.ev.fn.Name}, args...)...)
}

// Logf writes a trace line through the session logger.
func (fr *Frame) Logf(format string, args ...interface{}) {
	fr.ev.session.logf(format, args...)
}
