package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Writer receives the abstract output of rendering.
type Writer interface {
	WriteLiteral(text string)
	WriteNewline(indent int)
}

// GroovyType returns the declaration keyword for a type.
func GroovyType(t Type) string {
	switch t {
	case TypeInt:
		return "int"
	case TypeString:
		return "String"
	case TypeVoid:
		return "void"
	default:
		return "def"
	}
}

// Quote renders a Groovy single-quoted string literal. Control characters
// are escaped.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04x`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// LocalName returns the rendered name of a local.
func LocalName(l Local) string {
	if name := l.Vars.Name(l.ID); name != "" {
		return name
	}
	return fmt.Sprintf("v_%d", l.Root())
}

// RenderBlock renders each statement of b on its own line.
func RenderBlock(w Writer, b *Block, indent int) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		RenderStmt(w, s, indent)
	}
}

// RenderStmt renders one statement, starting on a new line at indent.
func RenderStmt(w Writer, s Statement, indent int) {
	switch s := s.(type) {
	case *Block:
		RenderBlock(w, s, indent)
		return
	case DeclareStmt:
		w.WriteNewline(indent)
		w.WriteLiteral(GroovyType(s.Var.ResultType()) + " " + LocalName(s.Var))
		if s.Value != nil {
			w.WriteLiteral(" = ")
			RenderExpr(w, s.Value)
		}
	case AssignStmt:
		w.WriteNewline(indent)
		w.WriteLiteral(LocalName(s.Target) + " = ")
		RenderExpr(w, s.Value)
	case StoreStmt:
		w.WriteNewline(indent)
		renderStore(w, s)
	case ExprStmt:
		w.WriteNewline(indent)
		RenderExpr(w, s.Expr)
	case ReturnStmt:
		w.WriteNewline(indent)
		w.WriteLiteral("return")
		if s.Value != nil {
			w.WriteLiteral(" ")
			RenderExpr(w, s.Value)
		}
	case IfStmt:
		w.WriteNewline(indent)
		then, els := s.Then, s.Else
		if then.Len() == 0 && els.Len() > 0 {
			// Only the else branch does something.
			w.WriteLiteral("if (!(")
			RenderCondition(w, s.Condition)
			w.WriteLiteral(")) {")
			then, els = els, nil
		} else {
			w.WriteLiteral("if (")
			RenderCondition(w, s.Condition)
			w.WriteLiteral(") {")
		}
		RenderBlock(w, then, indent+1)
		w.WriteNewline(indent)
		if els.Len() > 0 {
			w.WriteLiteral("} else {")
			RenderBlock(w, els, indent+1)
			w.WriteNewline(indent)
		}
		w.WriteLiteral("}")
	case WhileStmt:
		w.WriteNewline(indent)
		if s.Pre.Len() == 0 {
			w.WriteLiteral("while (")
			RenderCondition(w, s.Condition)
			w.WriteLiteral(") {")
		} else {
			w.WriteLiteral("while (true) {")
			RenderBlock(w, s.Pre, indent+1)
			w.WriteNewline(indent + 1)
			w.WriteLiteral("if (!(")
			RenderCondition(w, s.Condition)
			w.WriteLiteral(")) {")
			w.WriteNewline(indent + 2)
			w.WriteLiteral("break")
			w.WriteNewline(indent + 1)
			w.WriteLiteral("}")
		}
		RenderBlock(w, s.Body, indent+1)
		w.WriteNewline(indent)
		w.WriteLiteral("}")
	default:
		panic(fmt.Sprintf("ir: cannot render statement %T", s))
	}
}

func renderStore(w Writer, s StoreStmt) {
	switch s.Target.Kind {
	case VarEntryInt:
		w.WriteLiteral("entry.setInt(" + Quote(s.Target.Name) + ", ")
		RenderExpr(w, s.Value)
		w.WriteLiteral(")")
	case VarEntryString:
		w.WriteLiteral("entry.setString(" + Quote(s.Target.Name) + ", ")
		RenderExpr(w, s.Value)
		w.WriteLiteral(")")
	default:
		w.WriteLiteral(s.Target.Ident + " = ")
		RenderExpr(w, s.Value)
	}
}

// RenderCondition renders an int expression in boolean position: bst
// treats values greater than zero as true.
func RenderCondition(w Writer, e Expression) {
	switch e := e.(type) {
	case BinaryExpr:
		if e.IsComparison() {
			renderOperands(w, e)
			return
		}
	case IntLit:
		w.WriteLiteral(strconv.FormatBool(e.Value > 0))
		return
	}
	RenderExpr(w, e)
	w.WriteLiteral(" > 0")
}

// RenderExpr renders an expression.
func RenderExpr(w Writer, e Expression) {
	switch e := e.(type) {
	case IntLit:
		if e.Value == math.MinInt32 {
			// 2147483648 alone is not an int literal
			w.WriteLiteral("Integer.MIN_VALUE")
			return
		}
		w.WriteLiteral(strconv.FormatInt(e.Value, 10))
	case StrLit:
		w.WriteLiteral(Quote(e.Value))
	case Local:
		w.WriteLiteral(LocalName(e))
	case VarRefExpr:
		switch e.Kind {
		case VarField:
			w.WriteLiteral("entry.field(" + Quote(e.Name) + ")")
		case VarEntryInt:
			w.WriteLiteral("entry.getInt(" + Quote(e.Name) + ")")
		case VarEntryString:
			w.WriteLiteral("entry.getString(" + Quote(e.Name) + ")")
		default:
			w.WriteLiteral(e.Ident)
		}
	case BinaryExpr:
		w.WriteLiteral("(")
		renderOperands(w, e)
		if e.IsComparison() {
			w.WriteLiteral(" ? 1 : 0")
		}
		w.WriteLiteral(")")
	case CallExpr:
		if e.OnEntry {
			w.WriteLiteral("entry.")
		}
		w.WriteLiteral(e.Func + "(")
		sep := ""
		if e.WithEntry {
			w.WriteLiteral("entry")
			sep = ", "
		}
		for _, arg := range e.Args {
			w.WriteLiteral(sep)
			RenderExpr(w, arg)
			sep = ", "
		}
		w.WriteLiteral(")")
	case CodeBlock:
		panic("ir: code block cannot be rendered")
	default:
		panic(fmt.Sprintf("ir: cannot render expression %T", e))
	}
}

func renderOperands(w Writer, e BinaryExpr) {
	RenderExpr(w, e.Left)
	w.WriteLiteral(" " + e.Op + " ")
	RenderExpr(w, e.Right)
}

// StringWriter collects rendered output in memory.
type StringWriter struct {
	sb strings.Builder
}

// WriteLiteral appends text.
func (s *StringWriter) WriteLiteral(text string) {
	s.sb.WriteString(text)
}

// WriteNewline starts a new line indented by four spaces per level. The
// first line of the output is not preceded by a newline.
func (s *StringWriter) WriteNewline(indent int) {
	if s.sb.Len() > 0 {
		s.sb.WriteByte('\n')
	}
	s.sb.WriteString(strings.Repeat("    ", indent))
}

func (s *StringWriter) String() string {
	return s.sb.String()
}

// ExprString renders an expression to a string.
func ExprString(e Expression) string {
	var sw StringWriter
	RenderExpr(&sw, e)
	return sw.String()
}

// BlockString renders a block to a string, one statement per line.
func BlockString(b *Block) string {
	var sw StringWriter
	RenderBlock(&sw, b, 0)
	return sw.String()
}
