// Package ast defines types for a parsed bst (BibTeX style) program.
package ast

import "strings"

// Program represents a complete bst style file.
type Program struct {
	Name      string     `json:"name"` // Style name, usually the file base name
	Entry     Entry      `json:"entry"`
	Integers  []string   `json:"integers"` // Global integer variables, in declaration order
	Strings   []string   `json:"strings"`  // Global string variables, in declaration order
	Macros    []Macro    `json:"macros"`
	Functions []Function `json:"functions"`
	Commands  []Command  `json:"commands"` // Every command in source order
}

// Entry holds the ENTRY declaration: per-record fields and variables.
type Entry struct {
	Fields   []string `json:"fields"`
	Integers []string `json:"integers"`
	Strings  []string `json:"strings"`
	Location Location `json:"location"`
}

// Macro represents MACRO {name} {"text"}.
type Macro struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Location Location `json:"location"`
}

// Function represents FUNCTION {name} { body }.
type Function struct {
	Name     string   `json:"name"`
	Body     Block    `json:"body"`
	Location Location `json:"location"`
}

// Command is one top-level command. Target is set for EXECUTE, ITERATE and
// REVERSE; for declaring commands it names the declared function or macro.
type Command struct {
	Kind     CommandKind `json:"kind"`
	Target   string      `json:"target,omitempty"`
	Location Location    `json:"location"`
}

// CommandKind names a bst command.
type CommandKind string

// Command kinds
const (
	CmdEntry    CommandKind = "ENTRY"
	CmdFunction CommandKind = "FUNCTION"
	CmdMacro    CommandKind = "MACRO"
	CmdIntegers CommandKind = "INTEGERS"
	CmdStrings  CommandKind = "STRINGS"
	CmdRead     CommandKind = "READ"
	CmdExecute  CommandKind = "EXECUTE"
	CmdIterate  CommandKind = "ITERATE"
	CmdReverse  CommandKind = "REVERSE"
	CmdSort     CommandKind = "SORT"
)

// LookupCommand maps a (case-insensitive) command word to its kind.
func LookupCommand(word string) (CommandKind, bool) {
	kind := CommandKind(strings.ToUpper(word))
	switch kind {
	case CmdEntry, CmdFunction, CmdMacro, CmdIntegers, CmdStrings,
		CmdRead, CmdExecute, CmdIterate, CmdReverse, CmdSort:
		return kind, true
	}
	return "", false
}

// Location represents a position in the source file.
type Location struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Block is a token stream: a function body or a nested { ... } block.
type Block struct {
	Tokens []Token `json:"tokens"`
}

// Token is one element of a function body.
type Token struct {
	Type  TokenType `json:"type"`
	Value string    `json:"value"`           // Literal text, identifier or quoted name
	Block *Block    `json:"block,omitempty"` // Set for TokenBlock
	Line  int       `json:"line"`
	Col   int       `json:"col"`
}

// TokenType classifies a body token.
type TokenType string

// Token type constants
const (
	TokenInteger    TokenType = "INTEGER"    // #42
	TokenString     TokenType = "STRING"     // "text"
	TokenQuoted     TokenType = "QUOTED"     // 'name
	TokenIdentifier TokenType = "IDENTIFIER" // builtin, function or variable name
	TokenBlock      TokenType = "BLOCK"      // { ... }
)

// Ident builds an identifier token at the given location.
func Ident(name string, loc Location) Token {
	return Token{Type: TokenIdentifier, Value: name, Line: loc.Line, Col: loc.Col}
}

// Loc returns the token's location.
func (t Token) Loc() Location {
	return Location{Line: t.Line, Col: t.Col}
}

// String renders the token roughly as it appeared in the source.
func (t Token) String() string {
	switch t.Type {
	case TokenInteger:
		return "#" + t.Value
	case TokenString:
		return `"` + t.Value + `"`
	case TokenQuoted:
		return "'" + t.Value
	case TokenBlock:
		return "{...}"
	default:
		return t.Value
	}
}

// Function looks up a function definition by name.
func (p *Program) Function(name string) (*Function, bool) {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i], true
		}
	}
	return nil, false
}
