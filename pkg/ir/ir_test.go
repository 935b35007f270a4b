package ir

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeUnknown, "unknown"},
		{TypeInt, "int"},
		{TypeString, "string"},
		{TypeVoid, "void"},
		{TypeCode, "code"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
	assert.True(t, TypeInt.IsValue())
	assert.False(t, TypeCode.IsValue())
}

func TestVarTableUnionIdempotent(t *testing.T) {
	vars := NewVarTable()
	x := vars.New(TypeUnknown)

	root, err := vars.Union(x.ID, x.ID)
	require.NoError(t, err)
	assert.Equal(t, x.ID, root)
	assert.Equal(t, x.ID, vars.Find(x.ID))
	assert.Equal(t, TypeUnknown, vars.Type(x.ID))
}

func TestVarTableUnionTransitive(t *testing.T) {
	pairwise := NewVarTable()
	x, y, z := pairwise.New(TypeUnknown), pairwise.New(TypeUnknown), pairwise.New(TypeString)
	_, err := pairwise.Union(x.ID, y.ID)
	require.NoError(t, err)
	_, err = pairwise.Union(y.ID, z.ID)
	require.NoError(t, err)

	direct := NewVarTable()
	a, b, c := direct.New(TypeUnknown), direct.New(TypeUnknown), direct.New(TypeString)
	_, err = direct.Union(a.ID, c.ID)
	require.NoError(t, err)
	_, err = direct.Union(b.ID, c.ID)
	require.NoError(t, err)

	for _, id := range []VarID{0, 1, 2} {
		assert.Equal(t, direct.Find(id), pairwise.Find(id))
		assert.Equal(t, VarID(0), pairwise.Find(id), "lowest id is the representative")
		assert.Equal(t, TypeString, pairwise.Type(id))
	}
	assert.True(t, x.Same(z))
	assert.True(t, a.Same(b))
}

func TestVarTableTypeMismatch(t *testing.T) {
	vars := NewVarTable()
	i := vars.New(TypeInt)
	s := vars.New(TypeString)

	_, err := vars.Union(i.ID, s.ID)
	var mismatch *ErrTypeMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, TypeInt, mismatch.Want)
	assert.Equal(t, TypeString, mismatch.Got)
	assert.False(t, i.Same(s), "failed union must not merge")

	u := vars.New(TypeUnknown)
	require.NoError(t, vars.Refine(u.ID, TypeInt))
	assert.Equal(t, TypeInt, u.ResultType())
	err = vars.Refine(u.ID, TypeString)
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, TypeInt, u.ResultType())
	assert.NoError(t, vars.Refine(u.ID, TypeUnknown))
	assert.Equal(t, TypeInt, u.ResultType())
}

func TestVarTableNames(t *testing.T) {
	vars := NewVarTable()
	a := vars.New(TypeInt)
	b := vars.New(TypeInt)
	vars.SetName(b.ID, "count")

	_, err := vars.Union(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "count", vars.Name(a.ID), "name survives the merge")
	assert.Equal(t, "count", LocalName(a))

	c := vars.New(TypeInt)
	assert.Equal(t, "v_2", LocalName(c))
}

func TestRenderStatements(t *testing.T) {
	vars := NewVarTable()
	v := vars.New(TypeString)
	vars.SetName(v.ID, "v1")
	n := VarRefExpr{Name: "n", Ident: "n", Kind: VarGlobal, Type_: TypeInt}

	b := &Block{Stmts: []Statement{
		DeclareStmt{Var: v, Value: StrLit{Value: "it's"}},
		IfStmt{
			Condition: BinaryExpr{Left: n, Op: "<", Right: IntLit{Value: 3}, Type_: TypeInt},
			Then: &Block{Stmts: []Statement{
				ExprStmt{Expr: CallExpr{Func: "write", Args: []Expression{v}, Type_: TypeVoid}},
			}},
			Else: NewBlock(),
		},
		StoreStmt{Target: VarRefExpr{Name: "label", Kind: VarEntryString, Type_: TypeString}, Value: v},
		StoreStmt{Target: n, Value: BinaryExpr{Left: n, Op: "+", Right: IntLit{Value: 1}, Type_: TypeInt}},
	}}

	want := `String v1 = 'it\'s'
if (n < 3) {
    write(v1)
}
entry.setString('label', v1)
n = (n + 1)`
	assert.Equal(t, want, BlockString(b))
}

func TestRenderIfElseAndWhile(t *testing.T) {
	vars := NewVarTable()
	c := vars.New(TypeInt)
	vars.SetName(c.ID, "v2")
	f := CallExpr{Func: "more", Type_: TypeInt, User: true, WithEntry: true}

	b := &Block{Stmts: []Statement{
		IfStmt{
			Condition: c,
			Then:      &Block{Stmts: []Statement{ExprStmt{Expr: CallExpr{Func: "newline", Type_: TypeVoid}}}},
			Else:      &Block{Stmts: []Statement{ReturnStmt{}}},
		},
		WhileStmt{
			Pre:       &Block{Stmts: []Statement{DeclareStmt{Var: c, Value: f}}},
			Condition: c,
			Body:      &Block{Stmts: []Statement{ExprStmt{Expr: CallExpr{Func: "write", Args: []Expression{StrLit{Value: "x"}}, Type_: TypeVoid}}}},
		},
		WhileStmt{
			Pre:       NewBlock(),
			Condition: IntLit{Value: 1},
			Body:      NewBlock(),
		},
	}}

	want := `if (v2 > 0) {
    newline()
} else {
    return
}
while (true) {
    int v2 = more(entry)
    if (!(v2 > 0)) {
        break
    }
    write('x')
}
while (true) {
}`
	assert.Equal(t, want, BlockString(b))
}

func TestRenderElseOnly(t *testing.T) {
	s := VarRefExpr{Name: "s", Ident: "s", Type_: TypeString}
	b := &Block{Stmts: []Statement{
		IfStmt{
			Condition: CallExpr{Func: "isEmpty", Args: []Expression{s}, Type_: TypeInt},
			Then:      NewBlock(),
			Else:      &Block{Stmts: []Statement{ExprStmt{Expr: CallExpr{Func: "write", Args: []Expression{s}, Type_: TypeVoid}}}},
		},
	}}
	want := `if (!(isEmpty(s) > 0)) {
    write(s)
}`
	assert.Equal(t, want, BlockString(b))
}

func TestRenderExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{"negative int", IntLit{Value: -4}, "-4"},
		{"smallest int", IntLit{Value: math.MinInt32}, "Integer.MIN_VALUE"},
		{"backslash", StrLit{Value: `\newblock `}, `'\\newblock '`},
		{"field", VarRefExpr{Name: "title", Kind: VarField, Type_: TypeString}, "entry.field('title')"},
		{"entry int", VarRefExpr{Name: "nameptr", Kind: VarEntryInt, Type_: TypeInt}, "entry.getInt('nameptr')"},
		{
			"comparison as value",
			BinaryExpr{Left: StrLit{Value: "a"}, Op: "==", Right: StrLit{Value: "b"}, Type_: TypeInt},
			"('a' == 'b' ? 1 : 0)",
		},
		{
			"entry method",
			CallExpr{Func: "getKey", OnEntry: true, Type_: TypeString},
			"entry.getKey()",
		},
		{
			"nested call",
			CallExpr{Func: "textPrefix", Args: []Expression{StrLit{Value: "abc"}, IntLit{Value: 2}}, Type_: TypeString},
			"textPrefix('abc', 2)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExprString(tt.expr))
		})
	}
}

func TestQuoteControlCharacters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"carriage return", "\r", `'\r'`},
		{"nul", "\x00", `'\u0000'`},
		{"backspace", "\b", `'\b'`},
		{"form feed", "\f", `'\f'`},
		{"delete", "\x7f", `'\u007f'`},
		{"escape", "a\x1bb", `'a\u001bb'`},
		{"quote and tab", "it's\t", `'it\'s\t'`},
		{"non-ascii kept", "é", `'é'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestRenderCodeBlockPanics(t *testing.T) {
	assert.Panics(t, func() { ExprString(CodeBlock{Quoted: "skip$"}) })
}

func TestAnalysis(t *testing.T) {
	vars := NewVarTable()
	l := vars.New(TypeInt)
	user := CallExpr{Func: "f", User: true, Type_: TypeInt}
	global := VarRefExpr{Name: "g", Ident: "g", Type_: TypeInt}

	assert.True(t, HasUserCall(BinaryExpr{Left: l, Op: "+", Right: user, Type_: TypeInt}))
	assert.False(t, HasUserCall(global))
	assert.True(t, ReadsState(global))
	assert.True(t, ReadsState(user))
	assert.False(t, ReadsState(CallExpr{Func: "purify", Args: []Expression{StrLit{Value: "x"}}}))
	assert.True(t, IsTrivial(l))
	assert.False(t, IsTrivial(global))
	assert.True(t, References(BinaryExpr{Left: IntLit{}, Op: "-", Right: l}, map[VarID]bool{l.Root(): true}))

	b := &Block{Stmts: []Statement{
		DeclareStmt{Var: l, Value: global},
		ExprStmt{Expr: CallExpr{Func: "write", Args: []Expression{CallExpr{Func: "intToStr", Args: []Expression{l}}}}},
	}}
	u := CountUsage(b)
	assert.Equal(t, 1, u.Reads[l.Root()])
	assert.Equal(t, 1, u.Writes[l.Root()])
	assert.False(t, WritesState(b))
	b.Append(StoreStmt{Target: global, Value: l})
	assert.True(t, WritesState(b))

	b.Append(IfStmt{
		Condition: user,
		Then:      &Block{Stmts: []Statement{ExprStmt{Expr: CallExpr{Func: "other", User: true}}}},
		Else:      &Block{Stmts: []Statement{ExprStmt{Expr: user}}},
	})
	assert.Equal(t, []string{user.Func, "other"}, UserCalls(b))
}
