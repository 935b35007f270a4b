package compiler

import (
	"strconv"
	"strings"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/ir"
)

// Limits reported by entry.max$ and global.max$.
const (
	EntryMax  = 250
	GlobalMax = 20000
)

// RegisterStringHandlers registers the pure string and integer builtins.
// Each one becomes a call to the runtime base class; literal operands are
// folded where the result is unambiguous.
func RegisterStringHandlers(r *Registry) {
	r.RegisterFunc("add.period$", pure("addPeriod", ir.TypeString, []ir.Type{ir.TypeString}, func(args []ir.Expression) ir.Expression {
		s, ok := args[0].(ir.StrLit)
		if !ok {
			return nil
		}
		return ir.StrLit{Value: addPeriod(s.Value)}
	}))

	// change.case$ - s t change.case$
	r.RegisterFunc("change.case$", pure("changeCase", ir.TypeString, []ir.Type{ir.TypeString, ir.TypeString}, nil))

	r.RegisterFunc("chr.to.int$", pure("chrToInt", ir.TypeInt, []ir.Type{ir.TypeString}, func(args []ir.Expression) ir.Expression {
		s, ok := args[0].(ir.StrLit)
		if !ok || len(s.Value) != 1 {
			return nil
		}
		return ir.IntLit{Value: int64(s.Value[0])}
	}))

	// format.name$ - names i pattern format.name$
	r.RegisterFunc("format.name$", pure("formatName", ir.TypeString, []ir.Type{ir.TypeString, ir.TypeInt, ir.TypeString}, nil))

	r.RegisterFunc("int.to.chr$", pure("intToChr", ir.TypeString, []ir.Type{ir.TypeInt}, func(args []ir.Expression) ir.Expression {
		n, ok := args[0].(ir.IntLit)
		if !ok || n.Value < 0 || n.Value > 127 {
			return nil
		}
		return ir.StrLit{Value: string(rune(n.Value))}
	}))

	r.RegisterFunc("int.to.str$", pure("intToStr", ir.TypeString, []ir.Type{ir.TypeInt}, func(args []ir.Expression) ir.Expression {
		n, ok := args[0].(ir.IntLit)
		if !ok {
			return nil
		}
		return ir.StrLit{Value: strconv.FormatInt(n.Value, 10)}
	}))

	r.RegisterFunc("num.names$", pure("numNames", ir.TypeInt, []ir.Type{ir.TypeString}, nil))
	r.RegisterFunc("purify$", pure("purify", ir.TypeString, []ir.Type{ir.TypeString}, nil))

	// substring$ - s start len substring$
	r.RegisterFunc("substring$", pure("substring", ir.TypeString, []ir.Type{ir.TypeString, ir.TypeInt, ir.TypeInt}, nil))

	r.RegisterFunc("text.length$", pure("textLength", ir.TypeInt, []ir.Type{ir.TypeString}, nil))

	// text.prefix$ - s n text.prefix$, n is on top
	r.RegisterFunc("text.prefix$", pure("textPrefix", ir.TypeString, []ir.Type{ir.TypeString, ir.TypeInt}, nil))

	r.RegisterFunc("width$", pure("width", ir.TypeInt, []ir.Type{ir.TypeString}, nil))

	r.RegisterFunc("empty$", pure("isEmpty", ir.TypeInt, []ir.Type{ir.TypeString}, func(args []ir.Expression) ir.Expression {
		s, ok := args[0].(ir.StrLit)
		if !ok {
			return nil
		}
		return ir.IntLit{Value: truth(strings.TrimSpace(s.Value) == "")}
	}))

	r.RegisterFunc("missing$", pure("isMissing", ir.TypeInt, []ir.Type{ir.TypeString}, func(args []ir.Expression) ir.Expression {
		if _, ok := args[0].(ir.StrLit); ok {
			return ir.IntLit{Value: 0}
		}
		return nil
	}))

	r.RegisterFunc("preamble$", pure("preamble", ir.TypeString, nil, nil))

	r.RegisterFunc("quote$", func(fr *Frame, tok ast.Token) error {
		fr.Push(ir.StrLit{Value: `"`})
		return nil
	})
	r.RegisterFunc("entry.max$", func(fr *Frame, tok ast.Token) error {
		fr.Push(ir.IntLit{Value: EntryMax})
		return nil
	})
	r.RegisterFunc("global.max$", func(fr *Frame, tok ast.Token) error {
		fr.Push(ir.IntLit{Value: GlobalMax})
		return nil
	})
}

// pure builds the handler of a side-effect free builtin. params lists the
// operand types in call order; the last one is on top of the stack. fold,
// when set, may return a literal replacing the call.
func pure(fn string, result ir.Type, params []ir.Type, fold func([]ir.Expression) ir.Expression) HandlerFunc {
	return func(fr *Frame, tok ast.Token) error {
		args := make([]ir.Expression, len(params))
		for i := len(params) - 1; i >= 0; i-- {
			a, err := fr.PopType(params[i])
			if err != nil {
				return err
			}
			args[i] = a
		}
		if fold != nil {
			if lit := fold(args); lit != nil {
				fr.Push(lit)
				return nil
			}
		}
		fr.Push(ir.CallExpr{Func: fn, Args: args, Type_: result})
		return nil
	}
}

// addPeriod appends a period unless the last character that is not a
// closing brace already ends a sentence.
func addPeriod(s string) string {
	t := strings.TrimRight(s, "}")
	if t == "" {
		return s
	}
	switch t[len(t)-1] {
	case '.', '?', '!':
		return s
	}
	return s + "."
}
