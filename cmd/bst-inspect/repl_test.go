package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraceDepth(t *testing.T) {
	assert.Equal(t, 0, braceDepth(`FUNCTION {f} { #1 }`))
	assert.Equal(t, 1, braceDepth(`FUNCTION {f} {`))
	assert.Equal(t, 1, braceDepth("FUNCTION {f} { \"}\" % }\n"))
	assert.Equal(t, 0, braceDepth("READ % {"))
}

func TestReplSession(t *testing.T) {
	r := &replSession{}

	_, _, err := r.eval(`INTEGERS { count }`)
	require.NoError(t, err)

	code, _, err := r.eval(`FUNCTION {bump} { count #1 + 'count := }`)
	require.NoError(t, err)
	assert.Equal(t, "void bump() {\n    count = (count + 1)\n}\n", code)

	// a failing command is dropped and leaves the session usable
	_, _, err = r.eval(`FUNCTION {bad} { undefined.thing }`)
	require.Error(t, err)
	assert.Len(t, r.accepted, 2)

	code, _, err = r.eval(`FUNCTION {twice} { bump bump }`)
	require.NoError(t, err)
	assert.Contains(t, code, "void twice() {\n    bump()\n    bump()\n}\n")

	r.reset()
	_, _, err = r.eval(`FUNCTION {again} { bump }`)
	require.Error(t, err)
}
