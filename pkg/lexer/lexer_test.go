package lexer

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestTokenize_BasicTokens tests tokenization of single tokens.
func TestTokenize_BasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "empty input",
			input:    "",
			expected: []Token{},
		},
		{
			name:  "left brace",
			input: "{",
			expected: []Token{
				{Type: LBRACE, Value: "{", Line: 1, Column: 0},
			},
		},
		{
			name:  "right brace",
			input: "}",
			expected: []Token{
				{Type: RBRACE, Value: "}", Line: 1, Column: 0},
			},
		},
		{
			name:  "builtin with dollar",
			input: "add.period$",
			expected: []Token{
				{Type: IDENTIFIER, Value: "add.period$", Line: 1, Column: 0},
			},
		},
		{
			name:  "assignment operator",
			input: ":=",
			expected: []Token{
				{Type: IDENTIFIER, Value: ":=", Line: 1, Column: 0},
			},
		},
		{
			name:  "integer",
			input: "#42",
			expected: []Token{
				{Type: NUMBER, Value: "42", Line: 1, Column: 0},
			},
		},
		{
			name:  "negative integer",
			input: "#-1",
			expected: []Token{
				{Type: NUMBER, Value: "-1", Line: 1, Column: 0},
			},
		},
		{
			name:  "explicit plus",
			input: "#+3",
			expected: []Token{
				{Type: NUMBER, Value: "3", Line: 1, Column: 0},
			},
		},
		{
			name:  "string",
			input: `"\newblock "`,
			expected: []Token{
				{Type: STRING, Value: `\newblock `, Line: 1, Column: 0},
			},
		},
		{
			name:  "quoted name",
			input: "'skip$",
			expected: []Token{
				{Type: QUOTED, Value: "skip$", Line: 1, Column: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := New(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("Tokenize() got %d tokens, want %d: %v", len(tokens), len(tt.expected), tokens)
			}
			for i, tok := range tokens {
				if tok != tt.expected[i] {
					t.Errorf("token %d = %+v, want %+v", i, tok, tt.expected[i])
				}
			}
		})
	}
}

func TestTokenize_Function(t *testing.T) {
	input := `FUNCTION {not}
{   { #0 }
    { #1 }
  if$
}`
	tokens, err := New(input).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []struct {
		typ   TokenType
		value string
		line  int
	}{
		{IDENTIFIER, "FUNCTION", 1},
		{LBRACE, "{", 1},
		{IDENTIFIER, "not", 1},
		{RBRACE, "}", 1},
		{LBRACE, "{", 2},
		{LBRACE, "{", 2},
		{NUMBER, "0", 2},
		{RBRACE, "}", 2},
		{LBRACE, "{", 3},
		{NUMBER, "1", 3},
		{RBRACE, "}", 3},
		{IDENTIFIER, "if$", 4},
		{RBRACE, "}", 5},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].Value != w.value || tokens[i].Line != w.line {
			t.Errorf("token %d = %+v, want %s %q on line %d", i, tokens[i], w.typ, w.value, w.line)
		}
	}
}

func TestTokenize_Comments(t *testing.T) {
	input := "% a comment\nREAD % trailing\n"

	tokens, err := New(input).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(tokens) != 1 || tokens[0].Value != "READ" || tokens[0].Line != 2 {
		t.Errorf("comments should be dropped, got %v", tokens)
	}

	tokens, err = New(input).KeepComments().Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(tokens) != 3 || tokens[0].Type != COMMENT || tokens[2].Type != COMMENT {
		t.Errorf("KeepComments should keep both comments, got %v", tokens)
	}
}

func TestTokenize_StringStopsIdentifier(t *testing.T) {
	tokens, err := New(`x"y"`).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(tokens) != 2 || tokens[0].Value != "x" || tokens[1].Type != STRING {
		t.Errorf("got %v", tokens)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated string", `"abc`, "unterminated string"},
		{"string across lines", "\"ab\ncd\"", "unterminated string"},
		{"bare hash", "# ", "malformed integer"},
		{"letters after hash", "#12ab", "malformed integer"},
		{"empty quote", "' ", "empty quoted name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.input).Tokenize()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestTokenizeJSON(t *testing.T) {
	out, err := New("READ").TokenizeJSON()
	if err != nil {
		t.Fatalf("TokenizeJSON() error = %v", err)
	}
	var tokens []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &tokens); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(tokens) != 1 || tokens[0]["type"] != "IDENTIFIER" || tokens[0]["col"] != float64(0) {
		t.Errorf("unexpected JSON %s", out)
	}
}

func TestNewFromReader(t *testing.T) {
	l, err := NewFromReader(strings.NewReader("% note\nFUNCTION {f} { #1 }"))
	if err != nil {
		t.Fatalf("NewFromReader: %v", err)
	}
	tokens, err := l.KeepComments().Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(tokens) != 8 {
		t.Fatalf("got %d tokens, want 8: %v", len(tokens), tokens)
	}
	if tokens[0].Type != COMMENT || tokens[1].Value != "FUNCTION" || tokens[6].Value != "1" {
		t.Errorf("unexpected tokens: %v", tokens)
	}
	if tokens[1].Line != 2 {
		t.Errorf("FUNCTION on line %d, want 2", tokens[1].Line)
	}
}
