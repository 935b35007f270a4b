// builtins.go provides the handlers for the bst stack, arithmetic,
// control and entry builtins.

package compiler

import (
	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/ir"
)

// RegisterArithmeticHandlers registers + - * < > =.
func RegisterArithmeticHandlers(r *Registry) {
	r.RegisterFunc("+", intOp("+", func(a, b int64) int64 { return a + b }))
	r.RegisterFunc("-", intOp("-", func(a, b int64) int64 { return a - b }))
	r.RegisterFunc("<", intOp("<", func(a, b int64) int64 { return truth(a < b) }))
	r.RegisterFunc(">", intOp(">", func(a, b int64) int64 { return truth(a > b) }))

	// * - string concatenation
	r.RegisterFunc("*", func(fr *Frame, tok ast.Token) error {
		b, err := fr.PopType(ir.TypeString)
		if err != nil {
			return err
		}
		a, err := fr.PopType(ir.TypeString)
		if err != nil {
			return err
		}
		if la, ok := a.(ir.StrLit); ok {
			if lb, ok := b.(ir.StrLit); ok {
				fr.Push(ir.StrLit{Value: la.Value + lb.Value})
				return nil
			}
		}
		fr.Push(ir.BinaryExpr{Left: a, Op: "+", Right: b, Type_: ir.TypeString})
		return nil
	})

	// = - equality of two integers or two strings
	r.RegisterFunc("=", func(fr *Frame, tok ast.Token) error {
		b, err := fr.PopValue()
		if err != nil {
			return err
		}
		a, err := fr.PopValue()
		if err != nil {
			return err
		}
		ta, tb := a.ResultType(), b.ResultType()
		switch {
		case ta != ir.TypeUnknown:
			err = fr.Expect(b, ta)
		case tb != ir.TypeUnknown:
			err = fr.Expect(a, tb)
		default:
			err = errorf(ErrType, "cannot infer the operand type of =")
		}
		if err != nil {
			return err
		}
		switch la := a.(type) {
		case ir.IntLit:
			if lb, ok := b.(ir.IntLit); ok {
				fr.Push(ir.IntLit{Value: truth(la.Value == lb.Value)})
				return nil
			}
		case ir.StrLit:
			if lb, ok := b.(ir.StrLit); ok {
				fr.Push(ir.IntLit{Value: truth(la.Value == lb.Value)})
				return nil
			}
		}
		fr.Push(ir.BinaryExpr{Left: a, Op: "==", Right: b, Type_: ir.TypeInt})
		return nil
	})
}

// intOp builds the handler of a binary integer operator, folding literal
// operands with fold. Folded results wrap around like 32-bit Groovy ints.
func intOp(op string, fold func(a, b int64) int64) HandlerFunc {
	return func(fr *Frame, tok ast.Token) error {
		b, err := fr.PopType(ir.TypeInt)
		if err != nil {
			return err
		}
		a, err := fr.PopType(ir.TypeInt)
		if err != nil {
			return err
		}
		if la, ok := a.(ir.IntLit); ok {
			if lb, ok := b.(ir.IntLit); ok {
				fr.Push(ir.IntLit{Value: int64(int32(fold(la.Value, lb.Value)))})
				return nil
			}
		}
		fr.Push(ir.BinaryExpr{Left: a, Op: op, Right: b, Type_: ir.TypeInt})
		return nil
	}
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// RegisterStackHandlers registers duplicate$ pop$ swap$ and :=.
func RegisterStackHandlers(r *Registry) {
	// duplicate$ - non-trivial values are evaluated once into a temporary
	r.RegisterFunc("duplicate$", func(fr *Frame, tok ast.Token) error {
		e := fr.Pop()
		if !ir.IsTrivial(e) {
			if e.ResultType() == ir.TypeVoid {
				return errorf(ErrType, "cannot duplicate a statement")
			}
			e = fr.Temp(e)
		}
		fr.Push(e)
		fr.Push(e)
		return nil
	})

	// pop$ - a discarded user call still runs
	r.RegisterFunc("pop$", func(fr *Frame, tok ast.Token) error {
		e := fr.Pop()
		if ir.HasUserCall(e) {
			fr.Emit(ir.ExprStmt{Expr: e}, true)
		}
		return nil
	})

	// swap$ - order-sensitive operands are fixed in temporaries first
	r.RegisterFunc("swap$", func(fr *Frame, tok ast.Token) error {
		a, b := fr.Pop(), fr.Pop()
		fr.Push(b)
		fr.Push(a)
		fr.Spill(ir.HasUserCall(a) || ir.HasUserCall(b))
		a, b = fr.Pop(), fr.Pop()
		fr.Push(a)
		fr.Push(b)
		return nil
	})

	// := - value 'name :=
	r.RegisterFunc(":=", func(fr *Frame, tok ast.Token) error {
		target, ok := fr.PopCode()
		if !ok || target.Quoted == "" {
			return errorf(ErrSyntax, ":= needs a quoted variable name")
		}
		vh, ok := fr.Session().registry.Lookup(target.Quoted).(*variableHandler)
		if !ok {
			return errorf(ErrSyntax, "cannot assign to %q: not a variable", target.Quoted)
		}
		ref := vh.ref
		if ref.Kind == ir.VarField {
			return errorf(ErrSyntax, "cannot assign to field %q", ref.Name)
		}
		value, err := fr.PopValue()
		if err != nil {
			return err
		}
		if err := fr.Expect(value, ref.Type_); err != nil {
			return err
		}
		if ref.Kind.IsEntry() {
			fr.UseEntry()
		}
		fr.Emit(ir.StoreStmt{Target: ref, Value: value}, true)
		return nil
	})
}

// RegisterControlHandlers registers if$ while$ and skip$.
func RegisterControlHandlers(r *Registry) {
	r.RegisterFunc("if$", evalIf)
	r.RegisterFunc("while$", evalWhile)
	r.RegisterFunc("skip$", func(fr *Frame, tok ast.Token) error { return nil })
}

// RegisterEntryHandlers registers the builtins reading the current entry.
func RegisterEntryHandlers(r *Registry) {
	r.RegisterFunc("cite$", func(fr *Frame, tok ast.Token) error {
		fr.UseEntry()
		fr.Push(ir.CallExpr{Func: "getKey", Type_: ir.TypeString, OnEntry: true})
		return nil
	})

	r.RegisterFunc("type$", func(fr *Frame, tok ast.Token) error {
		fr.UseEntry()
		fr.Push(ir.CallExpr{Func: "getType", Type_: ir.TypeString, OnEntry: true})
		return nil
	})

	// call.type$ - dispatches on the entry type to a function of the same name
	r.RegisterFunc("call.type$", func(fr *Frame, tok ast.Token) error {
		fr.UseEntry()
		fr.Session().usesCallType = true
		call := ir.CallExpr{Func: "callType", Type_: ir.TypeVoid, WithEntry: true, User: true}
		fr.Emit(ir.ExprStmt{Expr: call}, true)
		return nil
	})
}

// variableHandler reads a declared global or entry variable.
type variableHandler struct {
	ref ir.VarRefExpr
}

func (h *variableHandler) Evaluate(fr *Frame, tok ast.Token) error {
	if h.ref.Kind.IsEntry() {
		fr.UseEntry()
	}
	fr.Push(h.ref)
	return nil
}
