package ast

import (
	"encoding/json"
	"fmt"
	"io"
)

// Parse reads program JSON from a reader and returns a Program.
func Parse(r io.Reader) (*Program, error) {
	var prog Program
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&prog); err != nil {
		return nil, fmt.Errorf("failed to parse AST: %w", err)
	}
	return &prog, nil
}

// ParseBytes parses program JSON from a byte slice.
func ParseBytes(data []byte) (*Program, error) {
	var prog Program
	if err := json.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("failed to parse AST: %w", err)
	}
	return &prog, nil
}
