// Package names translates bst identifiers into Groovy identifiers.
//
// bst names may contain dots, dollars and other punctuation; Groovy
// identifiers may not. Translation splits a name on illegal characters and
// joins the parts in camel case (format.names -> formatNames). A name that
// equals a reserved word gets a trailing underscore, and a name that is
// already taken gets a numeric suffix.
package names

//go:generate go run ../../cmd/gen-keywords -o keywords_gen.go

import (
	"strconv"
	"strings"
	"unicode"
)

// Table maps bst identifiers to unique Groovy identifiers for one
// compilation. The zero value is not usable; call NewTable.
type Table struct {
	byName map[string]string
	taken  map[string]bool
}

// NewTable returns a table pre-seeded with the reserved words.
func NewTable() *Table {
	t := &Table{
		byName: make(map[string]string),
		taken:  make(map[string]bool),
	}
	return t
}

// IsReserved reports whether word is a Groovy keyword or a member of the
// generated class's runtime API.
func IsReserved(word string) bool {
	return reserved[word]
}

// Translate returns the Groovy identifier for name, allocating one on
// first use.
func (t *Table) Translate(name string) string {
	if id, ok := t.byName[name]; ok {
		return id
	}
	base := Sanitize(name)
	if IsReserved(base) {
		base += "_"
	}
	id := base
	for n := 2; t.taken[id] || IsReserved(id); n++ {
		id = base + strconv.Itoa(n)
	}
	t.byName[name] = id
	t.taken[id] = true
	return id
}

// Lookup returns the identifier previously allocated for name.
func (t *Table) Lookup(name string) (string, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Taken reports whether id is a reserved word or already allocated.
func (t *Table) Taken(id string) bool {
	return t.taken[id] || IsReserved(id)
}

// Len returns the number of translated names.
func (t *Table) Len() int {
	return len(t.byName)
}

// Sanitize converts a bst name to a legal Groovy identifier without
// consulting any table.
func Sanitize(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(strings.ToUpper(p[:1]))
			sb.WriteString(p[1:])
			continue
		}
		sb.WriteString(p)
	}
	id := sb.String()
	if id == "" || unicode.IsDigit(rune(id[0])) {
		id = "f" + id
	}
	return id
}
