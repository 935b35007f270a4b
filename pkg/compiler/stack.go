package compiler

import "github.com/chazu/bst2groovy/pkg/ir"

// Stack is the open-ended symbolic operand stack. Popping past the bottom
// never fails: it allocates a future, a placeholder for a value the caller
// left on its own stack. Futures are recorded in pop order, so futures[0]
// stands for the caller's top of stack.
type Stack struct {
	items   []ir.Expression
	futures []ir.Local
	vars    *ir.VarTable
}

// NewStack creates an empty stack allocating futures from vars.
func NewStack(vars *ir.VarTable) *Stack {
	return &Stack{vars: vars}
}

// Push pushes e.
func (s *Stack) Push(e ir.Expression) {
	s.items = append(s.items, e)
}

// Pop removes and returns the top item, allocating a future on underflow.
func (s *Stack) Pop() ir.Expression {
	if len(s.items) == 0 {
		f := s.vars.New(ir.TypeUnknown)
		s.futures = append(s.futures, f)
		return f
	}
	e := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return e
}

// Len returns the number of materialized items.
func (s *Stack) Len() int {
	return len(s.items)
}

// Ensure materializes futures until the stack holds at least n items,
// leaving existing items in place above them.
func (s *Stack) Ensure(n int) {
	if len(s.items) >= n {
		return
	}
	popped := make([]ir.Expression, n)
	for i := range popped {
		popped[i] = s.Pop()
	}
	for i := n - 1; i >= 0; i-- {
		s.Push(popped[i])
	}
}

// Items returns the materialized items, bottom first.
func (s *Stack) Items() []ir.Expression {
	return append([]ir.Expression(nil), s.items...)
}

// Top returns the item i positions below the top (0 is the top).
func (s *Stack) Top(i int) ir.Expression {
	return s.items[len(s.items)-1-i]
}

// Futures returns the allocated futures in pop order.
func (s *Stack) Futures() []ir.Local {
	return append([]ir.Local(nil), s.futures...)
}

// Consumed returns the number of caller values this stack has used.
func (s *Stack) Consumed() int {
	return len(s.futures)
}

func (s *Stack) set(i int, e ir.Expression) {
	s.items[i] = e
}
