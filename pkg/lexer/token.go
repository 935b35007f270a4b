// Package lexer provides tokenization for bst style files.
package lexer

// TokenType represents the type of a token.
type TokenType string

// Token types produced by the lexer.
const (
	IDENTIFIER TokenType = "IDENTIFIER" // Commands, builtins, functions, variables (e.g., FUNCTION, write$, format.names)
	QUOTED     TokenType = "QUOTED"     // Quoted names (e.g., 'skip$, 'label)
	STRING     TokenType = "STRING"     // Double-quoted strings (e.g., "\newblock ")
	NUMBER     TokenType = "NUMBER"     // Integer literals (e.g., #1, #-1)

	LBRACE TokenType = "LBRACE" // {
	RBRACE TokenType = "RBRACE" // }

	COMMENT TokenType = "COMMENT" // % to end of line
	EOF     TokenType = "EOF"     // End of file
)

// Token represents a single token from the lexer.
type Token struct {
	Type   TokenType `json:"type"`
	Value  string    `json:"value"`
	Line   int       `json:"line"`
	Column int       `json:"col"`
}

// NewToken creates a new token with the given properties.
func NewToken(typ TokenType, value string, line, col int) Token {
	return Token{
		Type:   typ,
		Value:  value,
		Line:   line,
		Column: col,
	}
}

// IsIdentifier returns true if the token is an identifier.
func (t Token) IsIdentifier() bool {
	return t.Type == IDENTIFIER
}

// IsLiteral returns true if the token represents a literal value.
func (t Token) IsLiteral() bool {
	switch t.Type {
	case STRING, NUMBER:
		return true
	}
	return false
}
