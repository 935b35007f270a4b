package codegen

import (
	"bytes"
	"strings"
)

// LineWriter implements ir.Writer over an in-memory buffer, indenting
// four spaces per level.
type LineWriter struct {
	buf bytes.Buffer
}

// NewLineWriter creates an empty writer.
func NewLineWriter() *LineWriter {
	return &LineWriter{}
}

// WriteLiteral appends text to the current line.
func (w *LineWriter) WriteLiteral(text string) {
	w.buf.WriteString(text)
}

// WriteNewline ends the current line and indents the next one.
func (w *LineWriter) WriteNewline(indent int) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
	}
	w.buf.WriteString(strings.Repeat("    ", indent))
}

// Line writes text on a new line.
func (w *LineWriter) Line(indent int, text string) {
	w.WriteNewline(indent)
	w.WriteLiteral(text)
}

// Blank ends the current line, leaving an empty line before the next one.
func (w *LineWriter) Blank() {
	w.buf.WriteByte('\n')
}

// String returns the text written so far with a final newline.
func (w *LineWriter) String() string {
	return w.buf.String() + "\n"
}
