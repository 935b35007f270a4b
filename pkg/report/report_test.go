package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/bst2groovy/pkg/compiler"
	"github.com/chazu/bst2groovy/pkg/parser"
)

const style = `
ENTRY { title } { } { }
INTEGERS { count }

FUNCTION {bump}
{ count #1 + 'count := }

FUNCTION {emit}
{ write$ bump }

FUNCTION {article}
{ title emit }

ITERATE {article}
`

func buildReport(t *testing.T) *Report {
	t.Helper()
	prog, _, err := parser.ParseSource(style, "style")
	require.NoError(t, err)
	unit, err := compiler.NewSession().Compile(prog)
	require.NoError(t, err)
	return Build("style.bst", unit)
}

func TestBuild(t *testing.T) {
	r := buildReport(t)
	require.Len(t, r.Functions, 3)

	bump := r.Functions[0]
	assert.Equal(t, "bump", bump.Name)
	assert.Equal(t, "bump", bump.GroovyName)
	assert.Equal(t, 1, bump.Uses)
	assert.True(t, bump.WritesState)
	assert.Empty(t, bump.Params)
	assert.Equal(t, "void", bump.ReturnType)

	emit := r.Functions[1]
	assert.Equal(t, []string{"String"}, emit.Params)
	assert.Equal(t, []string{"bump"}, emit.Calls)
	assert.False(t, emit.NeedsEntry)

	article := r.Functions[2]
	assert.True(t, article.NeedsEntry)
	assert.Zero(t, article.Uses)
	assert.Equal(t, 11, article.Line)

	unused := r.Unused()
	require.Len(t, unused, 1)
	assert.Equal(t, "article", unused[0].Name)
}

func TestWriteJSON(t *testing.T) {
	r := buildReport(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var decoded []Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "style.bst", decoded[0].Source)
	assert.Equal(t, r.Functions, decoded[0].Functions)
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&Config{DBPath: filepath.Join(t.TempDir(), "reports.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	r := buildReport(t)
	r.ClassName = "Style"

	id, err := s.Save(r)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	loaded, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "style.bst", loaded.Source)
	assert.Equal(t, "Style", loaded.ClassName)
	assert.Equal(t, r.Functions, loaded.Functions)

	unused, err := s.Unused(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"article"}, unused)
}

func TestStoreRuns(t *testing.T) {
	s := testStore(t)
	r := buildReport(t)

	first, err := s.Save(r)
	require.NoError(t, err)
	second, err := s.Save(r)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err := s.Runs("style.bst")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)

	runs, err = s.Runs("other.bst")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreMissingRun(t *testing.T) {
	s := testStore(t)
	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestOpenFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("BST2GROOVY_DB", path)
	s, err := Open(nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())
}
