package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/chazu/bst2groovy/pkg/ast"
	"github.com/chazu/bst2groovy/pkg/codegen"
	"github.com/chazu/bst2groovy/pkg/compiler"
	"github.com/chazu/bst2groovy/pkg/parser"
)

const (
	historyFile = ".bst_inspect_history"
	promptMain  = "bst> "
	promptCont  = "...> "
)

// replSession keeps the commands accepted so far. Each new input is
// compiled together with them, so later functions can call earlier ones.
type replSession struct {
	accepted []string
}

// eval compiles input after the accepted commands and returns the Groovy of
// the functions input defines. Input that fails to compile is dropped.
func (r *replSession) eval(input string) (string, []string, error) {
	src := strings.Join(append(append([]string{}, r.accepted...), input), "\n")
	prog, _, err := parser.ParseSource(src, "repl")
	if err != nil {
		return "", nil, err
	}
	unit, err := compiler.NewSession().Compile(prog)
	if err != nil {
		return "", nil, err
	}

	defined, _, err := parser.ParseSource(input, "repl")
	if err != nil {
		return "", nil, err
	}
	r.accepted = append(r.accepted, input)

	var out strings.Builder
	for _, def := range defined.Functions {
		if fn, ok := unit.Function(def.Name); ok {
			out.WriteString(codegen.FunctionSource(fn))
		}
	}
	return out.String(), unit.Warnings, nil
}

// reset forgets every accepted command.
func (r *replSession) reset() {
	r.accepted = nil
}

// program returns the accepted commands parsed as one program.
func (r *replSession) program() (*ast.Program, error) {
	prog, _, err := parser.ParseSource(strings.Join(r.accepted, "\n"), "repl")
	return prog, err
}

func cmdRepl() int {
	fmt.Println("bst-inspect repl. Enter bst commands; :help lists the others.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	r := &replSession{}
	for {
		input, ok := readCommand(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(input, ":") {
			if quit := r.meta(input); quit {
				return 0
			}
			continue
		}

		code, warnings, err := r.eval(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		fmt.Print(code)
	}
}

// meta runs a : command and reports whether the repl should exit.
func (r *replSession) meta(input string) bool {
	switch strings.ToLower(input) {
	case ":quit", ":q":
		return true
	case ":reset":
		r.reset()
		fmt.Println("forgot all commands")
	case ":class":
		prog, err := r.program()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		unit, err := compiler.NewSession().Compile(prog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		result, err := codegen.Generate(unit, codegen.Config{ClassName: "Repl"})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		fmt.Print(result.Code)
	case ":help":
		fmt.Println(":class  print the class of every command so far")
		fmt.Println(":reset  forget every command")
		fmt.Println(":quit   exit")
	default:
		fmt.Println("unknown command. Type :help for a list.")
	}
	return false
}

// readCommand reads lines until every brace opened in them is closed.
func readCommand(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if braceDepth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// braceDepth counts braces left open in src, skipping string literals and
// comments.
func braceDepth(src string) int {
	depth := 0
	inString := false
	inComment := false
	for _, c := range src {
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
			}
		case inString:
			if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '%':
			inComment = true
		case c == '{':
			depth++
		case c == '}':
			depth--
		}
	}
	return depth
}
