package compiler

import (
	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/ir"
)

// evalIf translates `cond then else if$`.
//
// Both branches run on fresh open-ended stacks. Their stacks are padded to
// the same depth, the futures they consumed become shared input
// variables, and every leftover slot becomes a merged variable assigned at
// the tail of each branch. The merged variables replace the consumed
// inputs on the caller's stack.
func evalIf(fr *Frame, tok ast.Token) error {
	elseBlock, okElse := fr.PopCode()
	thenBlock, okThen := fr.PopCode()
	if !okElse || !okThen {
		return errorf(ErrSyntax, "syntax error in then/else for if$")
	}
	cond, err := fr.PopType(ir.TypeInt)
	if err != nil {
		return err
	}

	if lit, ok := cond.(ir.IntLit); ok {
		chosen := elseBlock
		if lit.Value > 0 {
			chosen = thenBlock
		}
		fr.Logf("if$ with constant condition %d inlined", lit.Value)
		return fr.Run(chosen.Tokens)
	}

	tf, ef := fr.Sub(), fr.Sub()
	if err := tf.Run(thenBlock.Tokens); err != nil {
		return err
	}
	if err := ef.Run(elseBlock.Tokens); err != nil {
		return err
	}
	return unify(fr, cond, tf, ef)
}

func unify(fr *Frame, cond ir.Expression, tf, ef *Frame) error {
	vars := fr.Vars()

	depth := max(tf.Stack.Len(), ef.Stack.Len())
	tf.Stack.Ensure(depth)
	ef.Stack.Ensure(depth)
	tNet := tf.Stack.Len() - tf.Stack.Consumed()
	eNet := ef.Stack.Len() - ef.Stack.Consumed()
	if tNet != eNet {
		fr.Warnf("if$ branches have different stack effects (then %+d, else %+d)", tNet, eNet)
	}

	// Inputs: caller values consumed by either branch, top first.
	tIn, eIn := tf.Stack.Futures(), ef.Stack.Futures()
	inputs := make([]ir.Local, max(len(tIn), len(eIn)))
	for i := range inputs {
		switch {
		case i >= len(tIn):
			inputs[i] = eIn[i]
		case i >= len(eIn):
			inputs[i] = tIn[i]
		default:
			if _, err := vars.Union(tIn[i].ID, eIn[i].ID); err != nil {
				return typeError(err)
			}
			inputs[i] = tIn[i]
		}
	}

	// Merged slots, top first. Tails are assigned bottom first, the order
	// the values were pushed in.
	merged := make([]ir.Local, depth)
	isNew := make([]bool, depth)
	fresh := 0
	for i := range merged {
		m, created, err := mergeSlot(fr, tf.Stack.Top(i), ef.Stack.Top(i))
		if err != nil {
			return err
		}
		merged[i], isNew[i] = m, created
		if created {
			fresh++
		}
	}
	for i := depth - 1; i >= 0; i-- {
		if isNew[i] {
			tf.Out.Append(ir.AssignStmt{Target: merged[i], Value: tf.Stack.Top(i)})
			ef.Out.Append(ir.AssignStmt{Target: merged[i], Value: ef.Stack.Top(i)})
		}
	}

	// Bind inputs to the caller's values. Whatever stays below them is
	// spilled first, since it was pushed earlier.
	outer := make([]ir.Expression, len(inputs))
	for i := range inputs {
		outer[i] = fr.Pop()
	}
	writes := tf.wrote || ef.wrote || ir.HasUserCall(cond)
	fr.Spill(writes)
	for i := len(inputs) - 1; i >= 0; i-- {
		in, val := inputs[i], outer[i]
		if err := fr.Expect(val, in.ResultType()); err != nil {
			return err
		}
		if l, ok := val.(ir.Local); ok {
			if _, err := vars.Union(in.ID, l.ID); err != nil {
				return typeError(err)
			}
			continue
		}
		if err := vars.Refine(in.ID, val.ResultType()); err != nil {
			return typeError(err)
		}
		fr.Out.Append(ir.DeclareStmt{Var: in, Value: val})
		if ir.HasUserCall(val) {
			fr.wrote = true
		}
	}
	fr.Logf("if$ unified %d inputs, %d merged slots", len(inputs), fresh)

	for _, m := range merged {
		if !isInput(m, inputs) {
			fr.Out.Append(ir.DeclareStmt{Var: m})
		}
	}

	if tf.Out.Len() == 0 && ef.Out.Len() == 0 {
		if ir.HasUserCall(cond) {
			fr.Emit(ir.ExprStmt{Expr: cond}, true)
		}
	} else {
		fr.Emit(ir.IfStmt{Condition: cond, Then: tf.Out, Else: ef.Out}, writes)
	}

	for i := depth - 1; i >= 0; i-- {
		fr.Push(merged[i])
	}
	return nil
}

// mergeSlot picks the variable that carries one stack slot out of the
// conditional. A slot holding the same input in both branches keeps it;
// anything else gets a fresh variable.
func mergeSlot(fr *Frame, t, e ir.Expression) (ir.Local, bool, error) {
	tl, tok := t.(ir.Local)
	el, eok := e.(ir.Local)
	if tok && eok && tl.Same(el) {
		return tl, false, nil
	}
	tt, et := t.ResultType(), e.ResultType()
	if tt == ir.TypeCode || et == ir.TypeCode {
		return ir.Local{}, false, errorf(ErrType, "code block left on the stack by an if$ branch")
	}
	typ := tt
	switch {
	case tt == et:
	case tt == ir.TypeUnknown:
		typ = et
		if err := fr.Expect(t, et); err != nil {
			return ir.Local{}, false, err
		}
	case et == ir.TypeUnknown:
		if err := fr.Expect(e, tt); err != nil {
			return ir.Local{}, false, err
		}
	default:
		return ir.Local{}, false, errorf(ErrType, "if$ branches leave %s and %s in the same stack slot", tt, et)
	}
	return fr.Vars().New(typ), true, nil
}

func isInput(m ir.Local, inputs []ir.Local) bool {
	for _, in := range inputs {
		if in.Same(m) {
			return true
		}
	}
	return false
}
