package compiler

import (
	"errors"
	"fmt"

	"github.com/chazu/bst2groovy/pkg/ast"
)

// Error kinds. A TranslateError unwraps to exactly one of these.
var (
	ErrSyntax            = errors.New("syntax error")
	ErrType              = errors.New("type error")
	ErrUnknownReturnType = errors.New("unknown return type")
	ErrUnimplemented     = errors.New("unimplemented")
	ErrUnknownToken      = errors.New("unknown token")
	ErrStackEffect       = errors.New("stack effect error")
)

// TranslateError reports a fatal problem translating one function.
type TranslateError struct {
	Kind     error
	Function string
	Token    *ast.Token
	Message  string
}

func (e *TranslateError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Message)
	if e.Function != "" {
		msg = fmt.Sprintf("function %q: %s", e.Function, msg)
	}
	if e.Token != nil {
		msg += fmt.Sprintf(" at line %d, col %d (token %q)", e.Token.Line, e.Token.Col, e.Token.String())
	}
	return msg
}

func (e *TranslateError) Unwrap() error {
	return e.Kind
}

// errorf builds a TranslateError; the evaluator fills in function and token.
func errorf(kind error, format string, args ...interface{}) *TranslateError {
	return &TranslateError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// locate attaches function and token context to err if it lacks them.
func locate(err error, function string, tok *ast.Token) error {
	var te *TranslateError
	if !errors.As(err, &te) {
		return &TranslateError{Kind: ErrSyntax, Function: function, Token: tok, Message: err.Error()}
	}
	if te.Function == "" {
		te.Function = function
	}
	if te.Token == nil && tok != nil {
		t := *tok
		te.Token = &t
	}
	return te
}
