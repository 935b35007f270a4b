package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/bst2groovy/pkg/codegen"
)

func TestWatchRebuildsOnWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "good.bst")
	require.NoError(t, os.WriteFile(src, []byte(helloStyle), 0o644))

	w, wanted, err := watchFiles([]string{src})
	require.NoError(t, err)
	defer w.Close()
	assert.Len(t, wanted, 1)

	b := &builder{cfg: codegen.Config{}, jobs: 1}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.watchLoop(ctx, w, wanted) }()

	changed := `FUNCTION {hello} { "again" write$ newline$ } EXECUTE {hello}`
	require.NoError(t, os.WriteFile(src, []byte(changed), 0o644))

	out := filepath.Join(dir, "Good.groovy")
	require.Eventually(t, func() bool {
		code, err := os.ReadFile(out)
		return err == nil && strings.Contains(string(code), "write('again')")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
