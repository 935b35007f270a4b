package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"format.names", "formatNames"},
		{"output.nonnull", "outputNonnull"},
		{"sort.key$", "sortKey"},
		{"not", "not"},
		{"first.in.graf", "firstInGraf"},
		{"2nd.pass", "f2ndPass"},
		{"$", "f"},
		{"a..b", "aB"},
		{"émile", "mile"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
	}
}

func TestTranslateStable(t *testing.T) {
	tbl := NewTable()
	id := tbl.Translate("format.names")
	assert.Equal(t, "formatNames", id)
	assert.Equal(t, id, tbl.Translate("format.names"))

	got, ok := tbl.Lookup("format.names")
	assert.True(t, ok)
	assert.Equal(t, id, got)
	_, ok = tbl.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Len())
}

func TestTranslateReservedWords(t *testing.T) {
	tbl := NewTable()

	for _, word := range []string{"if", "while", "write", "class", "entry"} {
		id := tbl.Translate(word)
		assert.NotEqual(t, word, id)
		assert.False(t, IsReserved(id), "%s -> %s must not be reserved", word, id)
	}
	assert.Equal(t, "if_", tbl.Translate("if"))
}

func TestTranslateCollisions(t *testing.T) {
	tbl := NewTable()
	seen := map[string]string{}
	for _, name := range []string{"format.names", "format$names", "formatNames", "if", "if$", "if_"} {
		id := tbl.Translate(name)
		if prev, dup := seen[id]; dup {
			t.Fatalf("%q and %q both translate to %q", prev, name, id)
		}
		seen[id] = name
		assert.True(t, tbl.Taken(id))
	}
	assert.Equal(t, "formatNames2", tbl.Translate("format$names"))
	assert.Equal(t, "if_2", tbl.Translate("if$"))
	assert.Equal(t, "if_3", tbl.Translate("if_"))
}

func TestTaken(t *testing.T) {
	tbl := NewTable()
	assert.True(t, tbl.Taken("return"))
	assert.False(t, tbl.Taken("v1"))
	tbl.Translate("v1")
	assert.True(t, tbl.Taken("v1"))
}
