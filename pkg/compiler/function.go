package compiler

import (
	"fmt"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/ir"
)

// CompileFunction compiles one FUNCTION definition and registers it so
// later bodies can call it.
func (s *Session) CompileFunction(def *ast.Function) (*Function, error) {
	if err := s.checkNew(def.Name); err != nil {
		return nil, locate(err, def.Name, nil)
	}
	fn := &Function{
		Name:     def.Name,
		Ident:    s.names.Translate(def.Name),
		Vars:     ir.NewVarTable(),
		Location: def.Location,
	}
	s.registry.Register(def.Name, &functionHandler{fn: fn})

	ev := newEvaluator(s, fn)
	fr := ev.NewFrame()
	fn.compiling = true
	err := ev.Run(fr, def.Body.Tokens)
	fn.compiling = false
	if err != nil {
		s.registry.Register(def.Name, &failedHandler{name: def.Name})
		return nil, err
	}

	futures := fr.Stack.Futures()
	for i := len(futures) - 1; i >= 0; i-- {
		fn.Params = append(fn.Params, futures[i])
	}

	if err := fn.finishResult(fr); err != nil {
		return nil, locate(err, fn.Name, nil)
	}
	fn.NeedsEntry = ev.needsEntry
	fn.Body = fr.Out

	n := ir.Optimize(fn.Body, s.logfn)
	s.nameLocals(fn)

	s.functions = append(s.functions, fn)
	s.byName[fn.Name] = fn
	s.logf("compiled %s as %s: %d params, returns %s, %d rewrites", fn.Name, fn.Ident, fn.Arity(), fn.Return, n)
	return fn, nil
}

// finishResult turns what the body left on the stack into the function's
// result.
func (fn *Function) finishResult(fr *Frame) error {
	items := fr.Stack.Items()
	switch len(items) {
	case 0:
		fn.Return = ir.TypeVoid
		return nil
	case 1:
	default:
		return errorf(ErrStackEffect, "function leaves %d values on the stack", len(items))
	}

	e := items[0]
	switch t := e.ResultType(); t {
	case ir.TypeInt, ir.TypeString:
		fn.Return = t
		fr.Out.Append(ir.ReturnStmt{Value: e})
	case ir.TypeCode:
		cb := e.(ir.CodeBlock)
		fn.Return = ir.TypeVoid
		fn.Pushes = &cb
	default:
		return errorf(ErrUnknownReturnType, "cannot classify result of type %s", t)
	}
	return nil
}

// nameLocals gives every variable class of fn a name: parameters p1..pn,
// other locals v1, v2, ... in order of first appearance.
func (s *Session) nameLocals(fn *Function) {
	next := map[string]int{"p": 1, "v": 1}
	alloc := func(prefix string) string {
		for {
			name := fmt.Sprintf("%s%d", prefix, next[prefix])
			next[prefix]++
			if !s.names.Taken(name) {
				return name
			}
		}
	}
	for _, p := range fn.Params {
		if fn.Vars.Name(p.ID) == "" {
			fn.Vars.SetName(p.ID, alloc("p"))
		}
	}
	nameExpr := func(e ir.Expression) {
		ir.VisitExpr(e, func(x ir.Expression) {
			if l, ok := x.(ir.Local); ok && fn.Vars.Name(l.ID) == "" {
				fn.Vars.SetName(l.ID, alloc("v"))
			}
		})
	}
	var walk func(b *ir.Block)
	walk = func(b *ir.Block) {
		if b == nil {
			return
		}
		for _, st := range b.Stmts {
			switch st := st.(type) {
			case *ir.Block:
				walk(st)
			case ir.DeclareStmt:
				nameExpr(st.Var)
				nameExpr(st.Value)
			case ir.AssignStmt:
				nameExpr(st.Target)
				nameExpr(st.Value)
			case ir.StoreStmt:
				nameExpr(st.Value)
			case ir.ExprStmt:
				nameExpr(st.Expr)
			case ir.ReturnStmt:
				nameExpr(st.Value)
			case ir.IfStmt:
				nameExpr(st.Condition)
				walk(st.Then)
				walk(st.Else)
			case ir.WhileStmt:
				walk(st.Pre)
				nameExpr(st.Condition)
				walk(st.Body)
			}
		}
	}
	walk(fn.Body)
}

// functionHandler compiles call sites of a user function.
type functionHandler struct {
	fn *Function
}

func (h *functionHandler) Evaluate(fr *Frame, tok ast.Token) error {
	return CompileCall(fr, h.fn)
}

// CompileCall pops fn's arguments off the caller's stack and either pushes
// the call (value-returning functions) or appends it as a statement.
func CompileCall(fr *Frame, fn *Function) error {
	if fn.compiling {
		return errorf(ErrSyntax, "recursive call to %q", fn.Name)
	}
	n := fn.Arity()
	args := make([]ir.Expression, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = fr.Pop()
	}
	for i, a := range args {
		if err := fr.Expect(a, fn.Params[i].ResultType()); err != nil {
			return err
		}
	}
	if fn.NeedsEntry {
		fr.UseEntry()
	}
	fn.Uses++

	call := ir.CallExpr{Func: fn.Ident, Args: args, Type_: fn.Return, User: true, WithEntry: fn.NeedsEntry}
	switch fn.Return {
	case ir.TypeInt, ir.TypeString:
		fr.Push(call)
	case ir.TypeVoid, ir.TypeCode:
		fr.Emit(ir.ExprStmt{Expr: call}, true)
		if fn.Pushes != nil {
			fr.Push(*fn.Pushes)
		}
	default:
		return errorf(ErrUnknownReturnType, "cannot call %q: return type %s", fn.Name, fn.Return)
	}
	return nil
}

// failedHandler stands in for a function whose compilation failed.
type failedHandler struct {
	name string
}

func (h *failedHandler) Evaluate(fr *Frame, tok ast.Token) error {
	return errorf(ErrSyntax, "function %q failed to compile", h.name)
}
