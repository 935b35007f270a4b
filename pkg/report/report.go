// Package report collects per-function metadata of a compiled bst unit:
// translated names, use counts and whether a function needs the current
// entry. Reports can be written as JSON or kept in a SQLite store.
package report

import (
	"encoding/json"
	"io"

	"github.com/chazu/bst2groovy/pkg/compiler"
	"github.com/chazu/bst2groovy/pkg/ir"
)

// Report describes one compiled source file.
type Report struct {
	Source    string           `json:"source"`
	ClassName string           `json:"class_name,omitempty"`
	Functions []FunctionReport `json:"functions"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// FunctionReport describes one compiled function.
type FunctionReport struct {
	Name        string   `json:"name"`        // bst name
	GroovyName  string   `json:"groovy_name"` // Translated identifier
	Uses        int      `json:"uses"`        // Call sites in other functions
	NeedsEntry  bool     `json:"needs_entry"`
	Params      []string `json:"params"` // Parameter types in call order
	ReturnType  string   `json:"return_type"`
	WritesState bool     `json:"writes_state"`
	Calls       []string `json:"calls,omitempty"` // Groovy names of called functions
	Line        int      `json:"line"`
}

// Build creates the report of a compiled unit.
func Build(source string, unit *compiler.Unit) *Report {
	r := &Report{
		Source:    source,
		Functions: make([]FunctionReport, 0, len(unit.Functions)),
		Warnings:  unit.Warnings,
	}
	for _, fn := range unit.Functions {
		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = ir.GroovyType(p.ResultType())
		}
		r.Functions = append(r.Functions, FunctionReport{
			Name:        fn.Name,
			GroovyName:  fn.Ident,
			Uses:        fn.Uses,
			NeedsEntry:  fn.NeedsEntry,
			Params:      params,
			ReturnType:  ir.GroovyType(fn.Return),
			WritesState: ir.WritesState(fn.Body),
			Calls:       ir.UserCalls(fn.Body),
			Line:        fn.Location.Line,
		})
	}
	return r
}

// Unused returns the functions no other function calls.
func (r *Report) Unused() []FunctionReport {
	var out []FunctionReport
	for _, f := range r.Functions {
		if f.Uses == 0 {
			out = append(out, f)
		}
	}
	return out
}

// WriteJSON writes reports as an indented JSON array.
func WriteJSON(w io.Writer, reports ...*Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
