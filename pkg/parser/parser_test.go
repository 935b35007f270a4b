package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/bst2groovy/pkg/ast"
)

const sampleStyle = `
ENTRY
  { author title year }
  { }
  { label }

INTEGERS { output.state before.all }
STRINGS { s t }

MACRO {jan} {"January"}

FUNCTION {init.state.consts}
{ #0 'before.all :=
}

FUNCTION {output}
{ duplicate$ empty$
    'pop$
    { write$ }
  if$
}

READ
EXECUTE {init.state.consts}
ITERATE {call.type$}
SORT
REVERSE {output}
`

func TestParseSource(t *testing.T) {
	prog, warnings, err := ParseSource(sampleStyle, "sample")
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if prog.Name != "sample" {
		t.Errorf("Name = %q, want sample", prog.Name)
	}
	if got := strings.Join(prog.Entry.Fields, ","); got != "author,title,year" {
		t.Errorf("entry fields = %q", got)
	}
	if len(prog.Entry.Integers) != 0 {
		t.Errorf("entry integers = %v, want none", prog.Entry.Integers)
	}
	if got := strings.Join(prog.Entry.Strings, ","); got != "label" {
		t.Errorf("entry strings = %q", got)
	}
	if got := strings.Join(prog.Integers, ","); got != "output.state,before.all" {
		t.Errorf("integers = %q", got)
	}
	if got := strings.Join(prog.Strings, ","); got != "s,t" {
		t.Errorf("strings = %q", got)
	}
	if len(prog.Macros) != 1 || prog.Macros[0].Name != "jan" || prog.Macros[0].Value != "January" {
		t.Errorf("macros = %+v", prog.Macros)
	}
	if len(prog.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(prog.Functions))
	}

	kinds := []ast.CommandKind{}
	for _, c := range prog.Commands {
		kinds = append(kinds, c.Kind)
	}
	wantKinds := []ast.CommandKind{
		ast.CmdEntry, ast.CmdIntegers, ast.CmdStrings, ast.CmdMacro,
		ast.CmdFunction, ast.CmdFunction, ast.CmdRead, ast.CmdExecute,
		ast.CmdIterate, ast.CmdSort, ast.CmdReverse,
	}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("commands = %v, want %v", kinds, wantKinds)
	}
	for i := range kinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("command %d = %s, want %s", i, kinds[i], wantKinds[i])
		}
	}
	if prog.Commands[8].Target != "call.type$" {
		t.Errorf("ITERATE target = %q", prog.Commands[8].Target)
	}
}

func TestParseFunctionBody(t *testing.T) {
	prog, _, err := ParseSource(sampleStyle, "sample")
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}

	fn, ok := prog.Function("output")
	if !ok {
		t.Fatal("function output not found")
	}
	toks := fn.Body.Tokens
	if len(toks) != 5 {
		t.Fatalf("expected 5 body tokens, got %d: %v", len(toks), toks)
	}

	tests := []struct {
		idx   int
		typ   ast.TokenType
		value string
	}{
		{0, ast.TokenIdentifier, "duplicate$"},
		{1, ast.TokenIdentifier, "empty$"},
		{2, ast.TokenQuoted, "pop$"},
		{3, ast.TokenBlock, ""},
		{4, ast.TokenIdentifier, "if$"},
	}
	for _, tt := range tests {
		if toks[tt.idx].Type != tt.typ || toks[tt.idx].Value != tt.value {
			t.Errorf("token %d = %+v, want %s %q", tt.idx, toks[tt.idx], tt.typ, tt.value)
		}
	}

	inner := toks[3].Block
	if inner == nil || len(inner.Tokens) != 1 || inner.Tokens[0].Value != "write$" {
		t.Errorf("nested block = %+v", inner)
	}

	init, _ := prog.Function("init.state.consts")
	if init.Body.Tokens[0].Type != ast.TokenInteger || init.Body.Tokens[0].Value != "0" {
		t.Errorf("integer token = %+v", init.Body.Tokens[0])
	}
}

func TestParseCaseInsensitiveCommands(t *testing.T) {
	prog, _, err := ParseSource("read execute {f} Sort", "x")
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	if len(prog.Commands) != 3 || prog.Commands[1].Kind != ast.CmdExecute || prog.Commands[1].Target != "f" {
		t.Errorf("commands = %+v", prog.Commands)
	}
}

func TestParseDuplicateReadWarning(t *testing.T) {
	_, warnings, err := ParseSource("READ READ", "x")
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	if len(warnings) != 1 || warnings[0].Type != "duplicate_read" || warnings[0].Col != 5 {
		t.Errorf("warnings = %+v", warnings)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errType string
	}{
		{"unknown command", "FROB {x}", "unknown_command"},
		{"string at top level", `"x"`, "unexpected_token"},
		{"unterminated body", "FUNCTION {f} { #1 ", "unexpected_eof"},
		{"two function names", "FUNCTION {f g} { }", "bad_name"},
		{"macro without string", "MACRO {m} {x}", "unexpected_token"},
		{"missing entry list", "ENTRY {a} {b}", "unexpected_eof"},
		{"huge integer", "FUNCTION {f} { #99999999999999999999 }", "bad_integer"},
		{"integer above 32 bits", "FUNCTION {f} { #3000000000 }", "bad_integer"},
		{"integer below 32 bits", "FUNCTION {f} { #-2147483649 }", "bad_integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseSource(tt.input, "x")
			if err == nil {
				t.Fatal("expected error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if perr.Type != tt.errType {
				t.Errorf("error type = %q, want %q (%v)", perr.Type, tt.errType, err)
			}
		})
	}
}
