// Package main provides a CLI tool for looking at each stage of the bst2groovy
// pipeline.
//
// Usage:
//
//	bst-inspect tokenize <file.bst>    # Output JSON tokens
//	bst-inspect parse <file.bst>       # Output JSON AST
//	bst-inspect groovy <file.bst>      # Output the generated Groovy class
//	bst-inspect repl                   # Compile commands interactively
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/bst2groovy/pkg/codegen"
	"github.com/chazu/bst2groovy/pkg/compiler"
	"github.com/chazu/bst2groovy/pkg/lexer"
	"github.com/chazu/bst2groovy/pkg/parser"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	var run func(string) error
	switch command {
	case "tokenize":
		run = cmdTokenize
	case "parse":
		run = cmdParse
	case "groovy":
		run = cmdGroovy
	case "repl":
		os.Exit(cmdRepl())
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Error: missing file argument")
		printUsage()
		os.Exit(1)
	}
	if err := run(os.Args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bst-inspect - Inspect the stages of the bst2groovy compiler

Usage:
  bst-inspect tokenize <file.bst>    Output JSON tokens
  bst-inspect parse <file.bst>       Output JSON AST
  bst-inspect groovy <file.bst>      Output the generated Groovy class
  bst-inspect repl                   Compile commands interactively
  bst-inspect help                   Show this help message

Examples:
  bst-inspect tokenize plain.bst
  bst-inspect parse plain.bst | jq '.functions[].name'
  bst-inspect parse plain.bst | bst2groovy -ast
  bst-inspect groovy plain.bst > Plain.groovy`)
}

// cmdTokenize reads a file and outputs JSON tokens.
func cmdTokenize(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	lex, err := lexer.NewFromReader(f)
	if err != nil {
		return err
	}
	jsonOutput, err := lex.KeepComments().TokenizeJSON()
	if err != nil {
		return fmt.Errorf("tokenizing: %w", err)
	}

	fmt.Println(jsonOutput)
	return nil
}

// cmdParse reads a file, tokenizes, parses, and outputs JSON AST.
func cmdParse(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	prog, warnings, err := parser.ParseSource(string(content), styleName(filename))
	if err != nil {
		// Output parse errors as JSON
		result := map[string]interface{}{
			"error":   true,
			"message": err.Error(),
		}
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			result["errors"] = []*parser.ParseError{pe}
		}
		jsonOutput, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonOutput))
		return nil
	}

	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: line %d: %s\n", w.Line, w.Message)
	}
	jsonOutput, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling AST: %w", err)
	}

	fmt.Println(string(jsonOutput))
	return nil
}

// cmdGroovy reads a file, compiles it and outputs the Groovy class.
func cmdGroovy(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	prog, parseWarnings, err := parser.ParseSource(string(content), styleName(filename))
	if err != nil {
		return err
	}
	for _, w := range parseWarnings {
		fmt.Fprintf(os.Stderr, "Warning: line %d: %s\n", w.Line, w.Message)
	}

	unit, err := compiler.NewSession().Compile(prog)
	if err != nil {
		return err
	}
	result, err := codegen.Generate(unit, codegen.Config{})
	if err != nil {
		return fmt.Errorf("generating groovy: %w", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	fmt.Print(result.Code)
	return nil
}

func styleName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
