package compiler

import (
	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/ir"
)

// evalWhile translates `{cond} {body} while$`.
//
// The condition and the body run once each on fresh stacks. Caller values
// either of them consumes become loop variables: declared before the loop
// from the caller's values, read through the futures of both blocks, and
// reassigned from the body's leftovers at the end of every iteration.
func evalWhile(fr *Frame, tok ast.Token) error {
	bodyBlock, okBody := fr.PopCode()
	condBlock, okCond := fr.PopCode()
	if !okBody || !okCond {
		return errorf(ErrSyntax, "syntax error in condition/body for while$")
	}

	cf, bf := fr.Sub(), fr.Sub()
	if err := cf.Run(condBlock.Tokens); err != nil {
		return err
	}
	test, err := cf.PopType(ir.TypeInt)
	if err != nil {
		return err
	}
	if !untouched(cf.Stack) {
		return errorf(ErrStackEffect, "while$ condition must leave only its test on the stack")
	}
	if err := bf.Run(bodyBlock.Tokens); err != nil {
		return err
	}
	if bf.Stack.Len() != bf.Stack.Consumed() {
		return errorf(ErrStackEffect, "while$ body changes the stack depth by %+d",
			bf.Stack.Len()-bf.Stack.Consumed())
	}

	k := max(cf.Stack.Consumed(), bf.Stack.Consumed())
	cf.Stack.Ensure(k)
	bf.Stack.Ensure(k)
	cIn, bIn := cf.Stack.Futures(), bf.Stack.Futures()

	vars := fr.Vars()
	outer := make([]ir.Expression, k)
	for i := range outer {
		outer[i] = fr.Pop()
	}
	writes := cf.wrote || bf.wrote || ir.HasUserCall(test)
	fr.Spill(writes)

	loopVars := make([]ir.Local, k)
	for i := k - 1; i >= 0; i-- {
		l := vars.New(ir.TypeUnknown)
		if _, err := vars.Union(l.ID, cIn[i].ID); err != nil {
			return typeError(err)
		}
		if _, err := vars.Union(l.ID, bIn[i].ID); err != nil {
			return typeError(err)
		}
		if err := fr.Expect(outer[i], l.ResultType()); err != nil {
			return err
		}
		if err := vars.Refine(l.ID, outer[i].ResultType()); err != nil {
			return typeError(err)
		}
		fr.Out.Append(ir.DeclareStmt{Var: l, Value: outer[i]})
		loopVars[i] = l
	}

	next, err := carry(fr, loopVars, bf.Stack)
	if err != nil {
		return err
	}
	bf.Out.Append(next...)

	fr.Logf("while$ lifted with %d loop variables", k)
	fr.Emit(ir.WhileStmt{Pre: cf.Out, Condition: test, Body: bf.Out}, writes)

	for i := k - 1; i >= 0; i-- {
		fr.Push(loopVars[i])
	}
	return nil
}

// untouched reports whether a stack holds exactly the futures it consumed,
// in their original order.
func untouched(s *Stack) bool {
	if s.Len() != s.Consumed() {
		return false
	}
	futures := s.Futures()
	for i := range futures {
		l, ok := s.Top(i).(ir.Local)
		if !ok || !l.Same(futures[i]) {
			return false
		}
	}
	return true
}

// carry builds the end-of-iteration assignments of the loop variables
// from the body's leftovers. When a new value reads a loop variable and
// more than one variable changes, all values go through temporaries.
func carry(fr *Frame, loopVars []ir.Local, body *Stack) ([]ir.Statement, error) {
	roots := map[ir.VarID]bool{}
	for _, l := range loopVars {
		roots[l.Root()] = true
	}
	type update struct {
		target ir.Local
		value  ir.Expression
	}
	var updates []update
	reads := false
	for i := len(loopVars) - 1; i >= 0; i-- {
		l, v := loopVars[i], body.Top(i)
		if vl, ok := v.(ir.Local); ok && vl.Same(l) {
			continue
		}
		if err := fr.Expect(v, l.ResultType()); err != nil {
			return nil, err
		}
		if err := fr.Vars().Refine(l.ID, v.ResultType()); err != nil {
			return nil, typeError(err)
		}
		if ir.References(v, roots) {
			reads = true
		}
		updates = append(updates, update{l, v})
	}

	var stmts []ir.Statement
	if reads && len(updates) > 1 {
		temps := make([]ir.Local, len(updates))
		for i, u := range updates {
			temps[i] = fr.Vars().New(u.value.ResultType())
			stmts = append(stmts, ir.DeclareStmt{Var: temps[i], Value: u.value})
		}
		for i, u := range updates {
			stmts = append(stmts, ir.AssignStmt{Target: u.target, Value: temps[i]})
		}
		return stmts, nil
	}
	for _, u := range updates {
		stmts = append(stmts, ir.AssignStmt{Target: u.target, Value: u.value})
	}
	return stmts, nil
}
