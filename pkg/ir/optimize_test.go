package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(vars *VarTable, typ Type, name string) Local {
	l := vars.New(typ)
	vars.SetName(l.ID, name)
	return l
}

func TestOptimizeReturnCopy(t *testing.T) {
	vars := NewVarTable()
	tmp := named(vars, TypeString, "tmp")
	e := CallExpr{Func: "purify", Args: []Expression{StrLit{Value: "A"}}, Type_: TypeString}

	b := &Block{Stmts: []Statement{
		DeclareStmt{Var: tmp, Value: e},
		ReturnStmt{Value: tmp},
	}}
	n := Optimize(b, nil)
	assert.Equal(t, 1, n)
	require.Len(t, b.Stmts, 1)
	assert.Equal(t, ReturnStmt{Value: e}, b.Stmts[0])

	once := BlockString(b)
	assert.Equal(t, 0, Optimize(b, nil), "second run reaches the same fixed point")
	assert.Equal(t, once, BlockString(b))
	assert.Equal(t, "return purify('A')", once)
}

func TestOptimizeStepContract(t *testing.T) {
	vars := NewVarTable()
	tmp := named(vars, TypeInt, "tmp")
	b := &Block{Stmts: []Statement{
		ExprStmt{Expr: CallExpr{Func: "newline", Type_: TypeVoid}},
		DeclareStmt{Var: tmp, Value: IntLit{Value: 7}},
		ReturnStmt{Value: tmp},
	}}

	o := NewOptimizer(b, nil)
	assert.Equal(t, 1, o.Step(b, 0), "nothing to do moves on")
	assert.Equal(t, 1, o.Step(b, 1), "a rewrite re-inspects the same index")
	assert.Len(t, b.Stmts, 2)
	assert.Equal(t, ReturnStmt{Value: IntLit{Value: 7}}, b.Stmts[1])
}

func TestOptimizeForwardSingleUse(t *testing.T) {
	vars := NewVarTable()
	x := named(vars, TypeString, "x")
	tmp := named(vars, TypeString, "tmp")
	f := CallExpr{Func: "f", Type_: TypeString, User: true}

	b := &Block{Stmts: []Statement{
		DeclareStmt{Var: x},
		DeclareStmt{Var: tmp, Value: f},
		AssignStmt{Target: x, Value: tmp},
		ExprStmt{Expr: CallExpr{Func: "write", Args: []Expression{x}, Type_: TypeVoid}},
	}}
	Optimize(b, nil)

	assert.Equal(t, "String x\nx = f()\nwrite(x)", BlockString(b))
}

func TestOptimizeForwardKeepsEffectOrder(t *testing.T) {
	vars := NewVarTable()
	tmp := named(vars, TypeInt, "tmp")
	y := named(vars, TypeInt, "y")
	g := VarRefExpr{Name: "g", Ident: "g", Type_: TypeInt}
	f := CallExpr{Func: "f", Type_: TypeInt, User: true}

	b := &Block{Stmts: []Statement{
		DeclareStmt{Var: tmp, Value: g},
		DeclareStmt{Var: y, Value: BinaryExpr{Left: f, Op: "+", Right: tmp, Type_: TypeInt}},
		ReturnStmt{Value: y},
	}}
	Optimize(b, nil)

	assert.Equal(t, "int tmp = g\nreturn (f() + tmp)", BlockString(b))
}

func TestOptimizeForwardIntoCondition(t *testing.T) {
	vars := NewVarTable()
	tmp := named(vars, TypeInt, "tmp")
	b := &Block{Stmts: []Statement{
		DeclareStmt{Var: tmp, Value: CallExpr{Func: "isEmpty", Args: []Expression{StrLit{Value: ""}}, Type_: TypeInt}},
		IfStmt{
			Condition: tmp,
			Then:      &Block{Stmts: []Statement{ExprStmt{Expr: CallExpr{Func: "newline", Type_: TypeVoid}}}},
			Else:      NewBlock(),
		},
	}}
	Optimize(b, nil)

	assert.Equal(t, "if (isEmpty('') > 0) {\n    newline()\n}", BlockString(b))
}

func TestOptimizeDeadStores(t *testing.T) {
	vars := NewVarTable()
	t1 := named(vars, TypeInt, "t1")
	t2 := named(vars, TypeString, "t2")
	merged := named(vars, TypeString, "m")
	f := CallExpr{Func: "f", Type_: TypeInt, User: true}

	b := &Block{Stmts: []Statement{
		DeclareStmt{Var: t1, Value: f},
		DeclareStmt{Var: t2, Value: StrLit{Value: "a"}},
		DeclareStmt{Var: merged},
		IfStmt{
			Condition: IntLit{Value: 1},
			Then:      &Block{Stmts: []Statement{AssignStmt{Target: merged, Value: StrLit{Value: "x"}}}},
			Else:      &Block{Stmts: []Statement{AssignStmt{Target: merged, Value: StrLit{Value: "y"}}}},
		},
	}}
	var logged []string
	Optimize(b, func(mess string, args ...interface{}) { logged = append(logged, mess) })

	assert.Equal(t, "f()", BlockString(b))
	assert.NotEmpty(t, logged)
}

func TestOptimizeNestedBlocks(t *testing.T) {
	vars := NewVarTable()
	tmp := named(vars, TypeString, "tmp")
	b := &Block{Stmts: []Statement{
		WhileStmt{
			Pre:       NewBlock(),
			Condition: VarRefExpr{Name: "n", Ident: "n", Type_: TypeInt},
			Body: &Block{Stmts: []Statement{
				DeclareStmt{Var: tmp, Value: StrLit{Value: "z"}},
				ExprStmt{Expr: CallExpr{Func: "write", Args: []Expression{tmp}, Type_: TypeVoid}},
			}},
		},
	}}
	Optimize(b, nil)

	assert.Equal(t, "while (n > 0) {\n    write('z')\n}", BlockString(b))
}
