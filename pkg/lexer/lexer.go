// Package lexer provides tokenization for bst style files.
//
// The bst syntax is small: braces group names and function bodies,
// strings are double quoted without escapes, integers start with #,
// quoted names start with ', and % starts a comment. Every other run of
// non-blank characters is an identifier, including names such as
// add.period$ or := .
//
// Token Types:
//
//	IDENTIFIER - Commands, builtins, functions and variables
//	QUOTED     - 'name (value is the bare name)
//	STRING     - "text" (value is the text without quotes)
//	NUMBER     - #42, #-1 (value is the signed digits)
//	LBRACE     - Left brace {
//	RBRACE     - Right brace }
//
// Output Format (JSON array):
//
//	[{"type": "IDENTIFIER", "value": "FUNCTION", "line": 1, "col": 0}, ...]
package lexer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Lexer tokenizes bst source code.
type Lexer struct {
	input    string // The source code being tokenized
	pos      int    // Current position in input
	line     int    // Current line number (1-indexed)
	col      int    // Current column number (0-indexed)
	tokens   []Token
	comments bool // Keep COMMENT tokens
}

// New creates a new Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{
		input:  input,
		pos:    0,
		line:   1,
		col:    0,
		tokens: make([]Token, 0),
	}
}

// NewFromReader creates a new Lexer from an io.Reader.
func NewFromReader(r io.Reader) (*Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return New(string(data)), nil
}

// KeepComments makes the lexer emit COMMENT tokens instead of dropping them.
func (l *Lexer) KeepComments() *Lexer {
	l.comments = true
	return l
}

// Tokenize processes the entire input and returns all tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

// TokenizeJSON processes the input and returns tokens as a JSON array.
func (l *Lexer) TokenizeJSON() (string, error) {
	tokens, err := l.Tokenize()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tokens: %w", err)
	}
	return string(data), nil
}

// Helper methods for character access and movement

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) advance() byte {
	ch := l.input[l.pos]
	l.pos++
	l.col++
	return ch
}

func (l *Lexer) addTokenAt(typ TokenType, value string, line, col int) {
	l.tokens = append(l.tokens, NewToken(typ, value, line, col))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f'
}

// isDelimiter reports whether c ends an identifier.
func isDelimiter(c byte) bool {
	return isSpace(c) || c == '{' || c == '}' || c == '%' || c == '"'
}

// scanToken scans a single token from the current position.
func (l *Lexer) scanToken() error {
	char := l.peek()

	switch char {
	case ' ', '\t', '\r', '\f':
		l.advance()
		return nil

	case '\n':
		l.advance()
		l.line++
		l.col = 0
		return nil

	case '%':
		return l.scanComment()

	case '{':
		l.addTokenAt(LBRACE, "{", l.line, l.col)
		l.advance()
		return nil

	case '}':
		l.addTokenAt(RBRACE, "}", l.line, l.col)
		l.advance()
		return nil

	case '"':
		return l.scanString()

	case '#':
		return l.scanNumber()

	case '\'':
		return l.scanQuoted()

	default:
		return l.scanIdentifier()
	}
}

// scanComment skips (or records) a % comment up to the end of the line.
func (l *Lexer) scanComment() error {
	startCol := l.col
	var comment strings.Builder
	for !l.isAtEnd() && l.peek() != '\n' {
		comment.WriteByte(l.advance())
	}
	if l.comments {
		l.addTokenAt(COMMENT, comment.String(), l.line, startCol)
	}
	return nil
}

// scanString handles "text". bst strings cannot span lines.
func (l *Lexer) scanString() error {
	startCol := l.col
	startLine := l.line
	l.advance() // consume opening quote

	var str strings.Builder
	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\n' {
			return fmt.Errorf("line %d, col %d: unterminated string", startLine, startCol)
		}
		str.WriteByte(l.advance())
	}
	if l.isAtEnd() {
		return fmt.Errorf("line %d, col %d: unterminated string", startLine, startCol)
	}
	l.advance() // consume closing quote

	l.addTokenAt(STRING, str.String(), startLine, startCol)
	return nil
}

// scanNumber handles #42, #-1 and #+7.
func (l *Lexer) scanNumber() error {
	startCol := l.col
	l.advance() // consume #

	var num strings.Builder
	if c := l.peek(); (c == '-' || c == '+') && isDigit(l.peekNext()) {
		if c == '-' {
			num.WriteByte('-')
		}
		l.advance()
	}
	if !isDigit(l.peek()) {
		return fmt.Errorf("line %d, col %d: malformed integer literal", l.line, startCol)
	}
	for !l.isAtEnd() && isDigit(l.peek()) {
		num.WriteByte(l.advance())
	}
	if !l.isAtEnd() && !isDelimiter(l.peek()) {
		return fmt.Errorf("line %d, col %d: malformed integer literal", l.line, startCol)
	}

	l.addTokenAt(NUMBER, num.String(), l.line, startCol)
	return nil
}

// scanQuoted handles 'name.
func (l *Lexer) scanQuoted() error {
	startCol := l.col
	l.advance() // consume '

	var name strings.Builder
	for !l.isAtEnd() && !isDelimiter(l.peek()) {
		name.WriteByte(l.advance())
	}
	if name.Len() == 0 {
		return fmt.Errorf("line %d, col %d: empty quoted name", l.line, startCol)
	}

	l.addTokenAt(QUOTED, name.String(), l.line, startCol)
	return nil
}

// scanIdentifier handles every other run of non-blank characters.
func (l *Lexer) scanIdentifier() error {
	startCol := l.col

	var word strings.Builder
	for !l.isAtEnd() && !isDelimiter(l.peek()) {
		word.WriteByte(l.advance())
	}

	l.addTokenAt(IDENTIFIER, word.String(), l.line, startCol)
	return nil
}
