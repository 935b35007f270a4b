// Package ir defines the generated-code (GCode) representation for bst compilation.
// The IR sits between the symbolic stack evaluator and the Groovy generator, providing:
// - A closed set of expression and statement nodes with static result types
// - A union-find table of local variables shared by every node of one function
// - Rendering through an abstract Writer
// - Peephole optimization over statement lists
package ir

import "github.com/chazu/bst2groovy/pkg/ast"

// Type represents the static result type of a node
type Type int

const (
	TypeUnknown Type = iota
	TypeInt
	TypeString
	TypeVoid // Statements and void calls
	TypeCode // Deferred token block
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeVoid:
		return "void"
	case TypeCode:
		return "code"
	default:
		return "unknown"
	}
}

// IsValue reports whether values of the type can live in a variable.
func (t Type) IsValue() bool {
	return t == TypeInt || t == TypeString
}

// Statement represents an IR statement
type Statement interface {
	irStmt()
}

// Expression represents an IR expression
type Expression interface {
	irExpr()
	ResultType() Type
}

// === Statements ===

// DeclareStmt introduces a local variable, optionally initialized.
type DeclareStmt struct {
	Var   Local
	Value Expression // nil declares with the type's default
}

func (DeclareStmt) irStmt() {}

// AssignStmt assigns to an already declared local.
type AssignStmt struct {
	Target Local
	Value  Expression
}

func (AssignStmt) irStmt() {}

// StoreStmt writes a global or entry variable.
type StoreStmt struct {
	Target VarRefExpr
	Value  Expression
}

func (StoreStmt) irStmt() {}

// ExprStmt evaluates an expression for its effects
type ExprStmt struct {
	Expr Expression
}

func (ExprStmt) irStmt() {}

// IfStmt represents conditional execution
type IfStmt struct {
	Condition Expression
	Then      *Block
	Else      *Block
}

func (IfStmt) irStmt() {}

// WhileStmt represents a loop. When Pre is non-empty the condition needs
// statements of its own; they run before every test of Condition.
type WhileStmt struct {
	Pre       *Block
	Condition Expression
	Body      *Block
}

func (WhileStmt) irStmt() {}

// ReturnStmt represents a function return
type ReturnStmt struct {
	Value Expression // nil for bare return
}

func (ReturnStmt) irStmt() {}

// Block is an ordered statement container.
type Block struct {
	Stmts []Statement
}

func (*Block) irStmt() {}

// NewBlock returns an empty block.
func NewBlock() *Block {
	return &Block{}
}

// Append adds statements at the end of the block.
func (b *Block) Append(stmts ...Statement) {
	b.Stmts = append(b.Stmts, stmts...)
}

// Len returns the number of statements.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Stmts)
}

// === Expressions ===

// IntLit is an integer literal
type IntLit struct {
	Value int64
}

func (IntLit) irExpr()          {}
func (IntLit) ResultType() Type { return TypeInt }

// StrLit is a string literal
type StrLit struct {
	Value string
}

func (StrLit) irExpr()          {}
func (StrLit) ResultType() Type { return TypeString }

// Local references a local variable. Two locals whose ids were unified
// name the same storage.
type Local struct {
	ID   VarID
	Vars *VarTable
}

func (Local) irExpr() {}

// ResultType returns the current type of the variable's class.
func (l Local) ResultType() Type { return l.Vars.Type(l.ID) }

// Root returns the class representative.
func (l Local) Root() VarID { return l.Vars.Find(l.ID) }

// Same reports whether both locals name the same storage.
func (l Local) Same(o Local) bool {
	return l.Vars == o.Vars && l.Vars.Find(l.ID) == l.Vars.Find(o.ID)
}

// VarRefExpr reads a global or entry variable
type VarRefExpr struct {
	Name  string // bst name
	Ident string // Groovy identifier (globals only)
	Kind  VarKind
	Type_ Type
}

func (VarRefExpr) irExpr()            {}
func (e VarRefExpr) ResultType() Type { return e.Type_ }

// VarKind distinguishes variable kinds
type VarKind int

const (
	VarGlobal      VarKind = iota
	VarField               // ENTRY field, read-only
	VarEntryInt            // ENTRY integer
	VarEntryString         // ENTRY string
)

func (k VarKind) String() string {
	switch k {
	case VarField:
		return "field"
	case VarEntryInt:
		return "entry integer"
	case VarEntryString:
		return "entry string"
	default:
		return "global"
	}
}

// IsEntry reports whether the variable lives on the current entry.
func (k VarKind) IsEntry() bool {
	return k != VarGlobal
}

// BinaryExpr represents a binary operation. Comparisons produce an int (0 or 1).
type BinaryExpr struct {
	Left  Expression
	Op    string // "+", "-", "==", "<", ">" ; "+" on strings concatenates
	Right Expression
	Type_ Type
}

func (BinaryExpr) irExpr()            {}
func (e BinaryExpr) ResultType() Type { return e.Type_ }

// IsComparison reports whether the operator yields a truth value.
func (e BinaryExpr) IsComparison() bool {
	switch e.Op {
	case "==", "<", ">":
		return true
	}
	return false
}

// CallExpr calls a runtime builtin, a method on the current entry, or a
// compiled user function.
type CallExpr struct {
	Func      string // Groovy name
	Args      []Expression
	Type_     Type
	OnEntry   bool // entry.func(args)
	WithEntry bool // func(entry, args)
	User      bool // Compiled user function; may have any effect
}

func (CallExpr) irExpr()            {}
func (e CallExpr) ResultType() Type { return e.Type_ }

// CodeBlock is a deferred token block on the symbolic stack. It never
// reaches rendered output.
type CodeBlock struct {
	Tokens []ast.Token
	Quoted string // Set when the block came from a 'name reference
}

func (CodeBlock) irExpr()          {}
func (CodeBlock) ResultType() Type { return TypeCode }
