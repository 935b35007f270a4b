package ir

// Optimizer applies peephole rewrites to a function body until a pass
// changes nothing. Rewrites only look at adjacent statements; usage counts
// are taken over the whole body at the start of each pass.
type Optimizer struct {
	root     *Block
	usage    Usage
	changed  bool
	Rewrites int
	logf     func(mess string, args ...interface{})
}

// NewOptimizer creates an optimizer for the given function body.
func NewOptimizer(body *Block, logf func(mess string, args ...interface{})) *Optimizer {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Optimizer{root: body, logf: logf}
}

// Optimize runs the peephole rules over body to a fixed point and returns
// the number of rewrites.
func Optimize(body *Block, logf func(mess string, args ...interface{})) int {
	o := NewOptimizer(body, logf)
	o.Run()
	return o.Rewrites
}

// Run iterates passes until nothing changes.
func (o *Optimizer) Run() {
	for {
		o.usage = CountUsage(o.root)
		o.changed = false
		o.pass(o.root)
		if !o.changed {
			return
		}
	}
}

func (o *Optimizer) pass(b *Block) {
	for i := 0; i < len(b.Stmts); {
		switch s := b.Stmts[i].(type) {
		case *Block:
			o.pass(s)
		case IfStmt:
			o.pass(s.Then)
			o.pass(s.Else)
		case WhileStmt:
			o.pass(s.Pre)
			o.pass(s.Body)
		}
		i = o.Step(b, i)
	}
}

// Step inspects the statement at index i of b, applies at most one rewrite
// and returns the index of the next statement to inspect.
func (o *Optimizer) Step(b *Block, i int) int {
	if o.usage.Reads == nil {
		o.usage = CountUsage(o.root)
	}
	switch s := b.Stmts[i].(type) {
	case DeclareStmt:
		if o.returnCopy(b, i, s) || o.forward(b, i, s.Var, s.Value) || o.deadStore(b, i, s.Var, s.Value) {
			return i
		}
	case AssignStmt:
		if o.deadStore(b, i, s.Target, s.Value) {
			return i
		}
	case IfStmt:
		if s.Then.Len() == 0 && s.Else.Len() == 0 {
			o.replace(b, i, 1, effectOnly(s.Condition)...)
			o.note("empty if removed")
			return i
		}
	}
	return i + 1
}

// returnCopy rewrites `declare t = E; return t` into `return E`.
func (o *Optimizer) returnCopy(b *Block, i int, decl DeclareStmt) bool {
	if decl.Value == nil || i+1 >= len(b.Stmts) {
		return false
	}
	ret, ok := b.Stmts[i+1].(ReturnStmt)
	if !ok {
		return false
	}
	l, ok := ret.Value.(Local)
	if !ok || !l.Same(decl.Var) {
		return false
	}
	o.replace(b, i, 2, ReturnStmt{Value: decl.Value})
	o.note("return copy of %s propagated", LocalName(decl.Var))
	return true
}

// forward moves the initializer of a single-use temporary into the next
// statement, when the move cannot reorder effects.
func (o *Optimizer) forward(b *Block, i int, v Local, value Expression) bool {
	root := v.Root()
	if value == nil || i+1 >= len(b.Stmts) || o.usage.Reads[root] != 1 || o.usage.Writes[root] != 1 {
		return false
	}
	var next Statement
	switch s := b.Stmts[i+1].(type) {
	case AssignStmt:
		if !o.canForward(s.Value, root, value) {
			return false
		}
		s.Value = substitute(s.Value, root, value)
		next = s
	case DeclareStmt:
		if s.Value == nil || !o.canForward(s.Value, root, value) {
			return false
		}
		s.Value = substitute(s.Value, root, value)
		next = s
	case StoreStmt:
		if !o.canForward(s.Value, root, value) {
			return false
		}
		s.Value = substitute(s.Value, root, value)
		next = s
	case ExprStmt:
		if !o.canForward(s.Expr, root, value) {
			return false
		}
		s.Expr = substitute(s.Expr, root, value)
		next = s
	case ReturnStmt:
		if s.Value == nil || !o.canForward(s.Value, root, value) {
			return false
		}
		s.Value = substitute(s.Value, root, value)
		next = s
	case IfStmt:
		if !o.canForward(s.Condition, root, value) {
			return false
		}
		s.Condition = substitute(s.Condition, root, value)
		next = s
	default:
		return false
	}
	o.replace(b, i, 2, next)
	o.note("single-use %s forwarded", LocalName(v))
	return true
}

// canForward reports whether value may replace the only read of root in
// target: either value has no observable dependencies, or nothing else in
// target does.
func (o *Optimizer) canForward(target Expression, root VarID, value Expression) bool {
	if countRefs(target, root) != 1 {
		return false
	}
	if inert(value) {
		return true
	}
	ok := true
	VisitExpr(target, func(x Expression) {
		switch x := x.(type) {
		case VarRefExpr:
			ok = false
		case CallExpr:
			if x.User || x.OnEntry {
				ok = false
			}
		}
	})
	return ok
}

// deadStore removes a declaration or assignment of a variable that is
// never read, keeping the value's effects.
func (o *Optimizer) deadStore(b *Block, i int, v Local, value Expression) bool {
	if o.usage.Reads[v.Root()] != 0 {
		return false
	}
	o.replace(b, i, 1, effectOnly(value)...)
	o.note("dead store to %s removed", LocalName(v))
	return true
}

func (o *Optimizer) replace(b *Block, i, n int, with ...Statement) {
	stmts := make([]Statement, 0, len(b.Stmts)-n+len(with))
	stmts = append(stmts, b.Stmts[:i]...)
	stmts = append(stmts, with...)
	stmts = append(stmts, b.Stmts[i+n:]...)
	b.Stmts = stmts
	o.changed = true
	o.Rewrites++
}

func (o *Optimizer) note(format string, args ...interface{}) {
	o.logf("optimize: "+format, args...)
}

// effectOnly keeps an expression as a statement only when evaluating it
// may have effects.
func effectOnly(e Expression) []Statement {
	if e == nil || !HasUserCall(e) {
		return nil
	}
	return []Statement{ExprStmt{Expr: e}}
}

func inert(e Expression) bool {
	return !HasUserCall(e) && !ReadsState(e)
}

func countRefs(e Expression, root VarID) int {
	n := 0
	VisitExpr(e, func(x Expression) {
		if l, ok := x.(Local); ok && l.Root() == root {
			n++
		}
	})
	return n
}

func substitute(e Expression, root VarID, with Expression) Expression {
	switch x := e.(type) {
	case Local:
		if x.Root() == root {
			return with
		}
	case BinaryExpr:
		x.Left = substitute(x.Left, root, with)
		x.Right = substitute(x.Right, root, with)
		return x
	case CallExpr:
		args := make([]Expression, len(x.Args))
		for i, a := range x.Args {
			args[i] = substitute(a, root, with)
		}
		x.Args = args
		return x
	}
	return e
}
