package compiler

import (
	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/ir"
)

// RegisterOutputHandlers registers the builtins that write to the output
// or the log. They are statements and keep their order.
func RegisterOutputHandlers(r *Registry) {
	r.RegisterFunc("write$", output("write", ir.TypeString))
	r.RegisterFunc("warning$", output("warning", ir.TypeString))
	r.RegisterFunc("top$", output("top", ir.TypeUnknown))

	r.RegisterFunc("newline$", func(fr *Frame, tok ast.Token) error {
		fr.Emit(ir.ExprStmt{Expr: ir.CallExpr{Func: "newline", Type_: ir.TypeVoid}}, false)
		return nil
	})

	r.RegisterFunc("stack$", func(fr *Frame, tok ast.Token) error {
		return errorf(ErrUnimplemented, "stack$ has no translation")
	})
}

func output(fn string, param ir.Type) HandlerFunc {
	return func(fr *Frame, tok ast.Token) error {
		e, err := fr.PopValue()
		if err != nil {
			return err
		}
		if err := fr.Expect(e, param); err != nil {
			return err
		}
		fr.Emit(ir.ExprStmt{Expr: ir.CallExpr{Func: fn, Args: []ir.Expression{e}, Type_: ir.TypeVoid}}, false)
		return nil
	}
}
