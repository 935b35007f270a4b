package ir

// VisitExpr calls fn for e and every sub-expression, parents first.
func VisitExpr(e Expression, fn func(Expression)) {
	if e == nil {
		return
	}
	fn(e)
	switch e := e.(type) {
	case BinaryExpr:
		VisitExpr(e.Left, fn)
		VisitExpr(e.Right, fn)
	case CallExpr:
		for _, a := range e.Args {
			VisitExpr(a, fn)
		}
	}
}

// HasUserCall reports whether evaluating e calls a compiled function.
func HasUserCall(e Expression) bool {
	found := false
	VisitExpr(e, func(x Expression) {
		if c, ok := x.(CallExpr); ok && c.User {
			found = true
		}
	})
	return found
}

// ReadsState reports whether e reads a global or entry variable, or calls
// something that might.
func ReadsState(e Expression) bool {
	found := false
	VisitExpr(e, func(x Expression) {
		switch x := x.(type) {
		case VarRefExpr:
			found = true
		case CallExpr:
			if x.User || x.OnEntry {
				found = true
			}
		}
	})
	return found
}

// IsTrivial reports whether e can be duplicated without re-evaluation cost.
func IsTrivial(e Expression) bool {
	switch e.(type) {
	case IntLit, StrLit, Local, CodeBlock:
		return true
	}
	return false
}

// References reports whether e reads any local of the given classes.
func References(e Expression, roots map[VarID]bool) bool {
	found := false
	VisitExpr(e, func(x Expression) {
		if l, ok := x.(Local); ok && roots[l.Root()] {
			found = true
		}
	})
	return found
}

// Usage counts reads and writes per variable class.
type Usage struct {
	Reads  map[VarID]int
	Writes map[VarID]int
}

// CountUsage walks b and all nested blocks.
func CountUsage(b *Block) Usage {
	u := Usage{Reads: map[VarID]int{}, Writes: map[VarID]int{}}
	u.block(b)
	return u
}

func (u Usage) expr(e Expression) {
	VisitExpr(e, func(x Expression) {
		if l, ok := x.(Local); ok {
			u.Reads[l.Root()]++
		}
	})
}

func (u Usage) block(b *Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		u.stmt(s)
	}
}

func (u Usage) stmt(s Statement) {
	switch s := s.(type) {
	case *Block:
		u.block(s)
	case DeclareStmt:
		u.Writes[s.Var.Root()]++
		u.expr(s.Value)
	case AssignStmt:
		u.Writes[s.Target.Root()]++
		u.expr(s.Value)
	case StoreStmt:
		u.expr(s.Value)
	case ExprStmt:
		u.expr(s.Expr)
	case ReturnStmt:
		u.expr(s.Value)
	case IfStmt:
		u.expr(s.Condition)
		u.block(s.Then)
		u.block(s.Else)
	case WhileStmt:
		u.block(s.Pre)
		u.expr(s.Condition)
		u.block(s.Body)
	}
}

// WritesState reports whether running b may change a global or entry
// variable.
func WritesState(b *Block) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *Block:
			if WritesState(s) {
				return true
			}
		case StoreStmt:
			return true
		case DeclareStmt:
			if s.Value != nil && HasUserCall(s.Value) {
				return true
			}
		case AssignStmt:
			if HasUserCall(s.Value) {
				return true
			}
		case ExprStmt:
			if HasUserCall(s.Expr) {
				return true
			}
		case ReturnStmt:
			if s.Value != nil && HasUserCall(s.Value) {
				return true
			}
		case IfStmt:
			if HasUserCall(s.Condition) || WritesState(s.Then) || WritesState(s.Else) {
				return true
			}
		case WhileStmt:
			if HasUserCall(s.Condition) || WritesState(s.Pre) || WritesState(s.Body) {
				return true
			}
		}
	}
	return false
}

// UserCalls returns the names of the compiled functions b calls, in order
// of first appearance.
func UserCalls(b *Block) []string {
	var names []string
	seen := map[string]bool{}
	visitBlock(b, func(e Expression) {
		VisitExpr(e, func(x Expression) {
			if c, ok := x.(CallExpr); ok && c.User && !seen[c.Func] {
				seen[c.Func] = true
				names = append(names, c.Func)
			}
		})
	})
	return names
}

// visitBlock calls fn for every top-level expression of every statement in
// b and its nested blocks.
func visitBlock(b *Block, fn func(Expression)) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *Block:
			visitBlock(s, fn)
		case DeclareStmt:
			fn(s.Value)
		case AssignStmt:
			fn(s.Value)
		case StoreStmt:
			fn(s.Value)
		case ExprStmt:
			fn(s.Expr)
		case ReturnStmt:
			fn(s.Value)
		case IfStmt:
			fn(s.Condition)
			visitBlock(s.Then, fn)
			visitBlock(s.Else, fn)
		case WhileStmt:
			visitBlock(s.Pre, fn)
			fn(s.Condition)
			visitBlock(s.Body, fn)
		}
	}
}
