// Package parser implements the bst command parser.
//
// The parser consumes tokens from the lexer and produces an ast.Program.
// The grammar is a flat list of commands:
//   - ENTRY { fields } { integers } { strings }
//   - FUNCTION { name } { body }
//   - MACRO { name } { "text" }
//   - INTEGERS { names } and STRINGS { names }
//   - EXECUTE { f }, ITERATE { f }, REVERSE { f }
//   - READ and SORT
//
// Function bodies keep their nested { ... } blocks as ast.TokenBlock tokens;
// they are not interpreted here.
package parser

import (
	"fmt"
	"strconv"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/lexer"
)

// ParseWarning represents a non-fatal parse warning.
type ParseWarning struct {
	Type    string `json:"type"`    // Warning type (e.g., "duplicate_read")
	Message string `json:"message"` // Warning message
	Line    int    `json:"line"`    // Source line
	Col     int    `json:"col"`     // Source column
}

// ParseError represents a parse error with context.
type ParseError struct {
	Type    string       `json:"type"`    // Error type
	Message string       `json:"message"` // Error message
	Token   *lexer.Token `json:"token"`   // Token that caused the error
	Context string       `json:"context"` // Parsing context
}

func (e *ParseError) Error() string {
	if e.Token != nil {
		return fmt.Sprintf("%s at line %d, col %d: %s (context: %s)",
			e.Type, e.Token.Line, e.Token.Column, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s (context: %s)", e.Type, e.Message, e.Context)
}

// Parser holds the state for parsing a bst token stream.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	warnings []ParseWarning
	seenRead bool
}

// New creates a new parser for the given token stream.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseSource tokenizes and parses bst source text.
func ParseSource(src, name string) (*ast.Program, []ParseWarning, error) {
	tokens, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, nil, fmt.Errorf("tokenizing %s: %w", name, err)
	}
	p := New(tokens)
	prog, err := p.Parse(name)
	return prog, p.warnings, err
}

// Warnings returns the warnings collected so far.
func (p *Parser) Warnings() []ParseWarning {
	return p.warnings
}

// current returns the current token or nil if at end.
func (p *Parser) current() *lexer.Token {
	if p.pos < len(p.tokens) {
		return &p.tokens[p.pos]
	}
	return nil
}

// atEnd returns true if we've consumed all tokens.
func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// advance moves to the next token.
func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *Parser) errorf(errType, context, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Token:   p.current(),
		Context: context,
	}
}

func (p *Parser) addWarning(warnType, message string, tok *lexer.Token) {
	w := ParseWarning{Type: warnType, Message: message}
	if tok != nil {
		w.Line, w.Col = tok.Line, tok.Column
	}
	p.warnings = append(p.warnings, w)
}

// Parse parses the whole token stream as a bst program.
func (p *Parser) Parse(name string) (*ast.Program, error) {
	prog := &ast.Program{Name: name}

	for !p.atEnd() {
		if err := p.parseCommand(prog); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func (p *Parser) parseCommand(prog *ast.Program) error {
	tok := p.current()
	if tok.Type != lexer.IDENTIFIER {
		return p.errorf("unexpected_token", "command", "expected a command, got %s %q", tok.Type, tok.Value)
	}
	kind, ok := ast.LookupCommand(tok.Value)
	if !ok {
		return p.errorf("unknown_command", "command", "unknown command %q", tok.Value)
	}
	loc := ast.Location{Line: tok.Line, Col: tok.Column}
	p.advance()

	cmd := ast.Command{Kind: kind, Location: loc}

	switch kind {
	case ast.CmdEntry:
		fields, err := p.parseNameList("ENTRY fields")
		if err != nil {
			return err
		}
		ints, err := p.parseNameList("ENTRY integers")
		if err != nil {
			return err
		}
		strs, err := p.parseNameList("ENTRY strings")
		if err != nil {
			return err
		}
		prog.Entry.Fields = append(prog.Entry.Fields, fields...)
		prog.Entry.Integers = append(prog.Entry.Integers, ints...)
		prog.Entry.Strings = append(prog.Entry.Strings, strs...)
		prog.Entry.Location = loc

	case ast.CmdIntegers:
		names, err := p.parseNameList("INTEGERS")
		if err != nil {
			return err
		}
		prog.Integers = append(prog.Integers, names...)

	case ast.CmdStrings:
		names, err := p.parseNameList("STRINGS")
		if err != nil {
			return err
		}
		prog.Strings = append(prog.Strings, names...)

	case ast.CmdFunction:
		fnName, err := p.parseSingleName("FUNCTION name")
		if err != nil {
			return err
		}
		body, err := p.parseBlock("FUNCTION " + fnName)
		if err != nil {
			return err
		}
		prog.Functions = append(prog.Functions, ast.Function{Name: fnName, Body: *body, Location: loc})
		cmd.Target = fnName

	case ast.CmdMacro:
		macroName, err := p.parseSingleName("MACRO name")
		if err != nil {
			return err
		}
		value, err := p.parseMacroText(macroName)
		if err != nil {
			return err
		}
		prog.Macros = append(prog.Macros, ast.Macro{Name: macroName, Value: value, Location: loc})
		cmd.Target = macroName

	case ast.CmdExecute, ast.CmdIterate, ast.CmdReverse:
		target, err := p.parseSingleName(string(kind))
		if err != nil {
			return err
		}
		cmd.Target = target

	case ast.CmdRead:
		if p.seenRead {
			p.addWarning("duplicate_read", "READ appears more than once", tok)
		}
		p.seenRead = true

	case ast.CmdSort:
		// no arguments
	}

	prog.Commands = append(prog.Commands, cmd)
	return nil
}

// expect consumes a token of the given type.
func (p *Parser) expect(typ lexer.TokenType, context string) (*lexer.Token, error) {
	tok := p.current()
	if tok == nil {
		return nil, p.errorf("unexpected_eof", context, "expected %s, got end of file", typ)
	}
	if tok.Type != typ {
		return nil, p.errorf("unexpected_token", context, "expected %s, got %s %q", typ, tok.Type, tok.Value)
	}
	p.advance()
	return tok, nil
}

// parseNameList parses: { name name ... }
func (p *Parser) parseNameList(context string) ([]string, error) {
	if _, err := p.expect(lexer.LBRACE, context); err != nil {
		return nil, err
	}
	names := []string{}
	for {
		tok := p.current()
		if tok == nil {
			return nil, p.errorf("unexpected_eof", context, "unterminated name list")
		}
		if tok.Type == lexer.RBRACE {
			p.advance()
			return names, nil
		}
		if tok.Type != lexer.IDENTIFIER {
			return nil, p.errorf("unexpected_token", context, "expected a name, got %s %q", tok.Type, tok.Value)
		}
		names = append(names, tok.Value)
		p.advance()
	}
}

// parseSingleName parses: { name }
func (p *Parser) parseSingleName(context string) (string, error) {
	names, err := p.parseNameList(context)
	if err != nil {
		return "", err
	}
	if len(names) != 1 {
		return "", p.errorf("bad_name", context, "expected exactly one name, got %d", len(names))
	}
	return names[0], nil
}

// parseMacroText parses: { "text" }
func (p *Parser) parseMacroText(name string) (string, error) {
	context := "MACRO " + name
	if _, err := p.expect(lexer.LBRACE, context); err != nil {
		return "", err
	}
	tok, err := p.expect(lexer.STRING, context)
	if err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.RBRACE, context); err != nil {
		return "", err
	}
	return tok.Value, nil
}

// parseBlock parses a brace-delimited token stream with nested blocks.
func (p *Parser) parseBlock(context string) (*ast.Block, error) {
	if _, err := p.expect(lexer.LBRACE, context); err != nil {
		return nil, err
	}
	block := &ast.Block{Tokens: []ast.Token{}}
	for {
		tok := p.current()
		if tok == nil {
			return nil, p.errorf("unexpected_eof", context, "unterminated block")
		}

		switch tok.Type {
		case lexer.RBRACE:
			p.advance()
			return block, nil

		case lexer.LBRACE:
			line, col := tok.Line, tok.Column
			inner, err := p.parseBlock(context)
			if err != nil {
				return nil, err
			}
			block.Tokens = append(block.Tokens, ast.Token{Type: ast.TokenBlock, Block: inner, Line: line, Col: col})

		case lexer.NUMBER:
			if _, err := strconv.ParseInt(tok.Value, 10, 32); err != nil {
				return nil, p.errorf("bad_integer", context, "integer %q out of range", tok.Value)
			}
			block.Tokens = append(block.Tokens, bodyToken(ast.TokenInteger, tok))
			p.advance()

		case lexer.STRING:
			block.Tokens = append(block.Tokens, bodyToken(ast.TokenString, tok))
			p.advance()

		case lexer.QUOTED:
			block.Tokens = append(block.Tokens, bodyToken(ast.TokenQuoted, tok))
			p.advance()

		case lexer.IDENTIFIER:
			block.Tokens = append(block.Tokens, bodyToken(ast.TokenIdentifier, tok))
			p.advance()

		default:
			p.advance()
		}
	}
}

func bodyToken(typ ast.TokenType, tok *lexer.Token) ast.Token {
	return ast.Token{Type: typ, Value: tok.Value, Line: tok.Line, Col: tok.Column}
}
