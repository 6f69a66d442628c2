package testhelpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lri/internal/types"
)

// WriteRubyProject writes files (relative path -> content) into a fresh temp dir and returns it
func WriteRubyProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile writes one fixture file below root, creating directories as needed
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// PositionOf returns the zero-based position of the nth (0-based) occurrence of needle in src
func PositionOf(t *testing.T, src, needle string, nth int) types.Position {
	t.Helper()

	offset := -1
	for i := 0; i <= nth; i++ {
		next := strings.Index(src[offset+1:], needle)
		require.GreaterOrEqual(t, next, 0, "occurrence %d of %q not found", nth, needle)
		offset += next + 1
	}

	line := strings.Count(src[:offset], "\n")
	column := offset - (strings.LastIndex(src[:offset], "\n") + 1)
	return types.NewPosition(line, column)
}

// WaitFor waits for a condition to become true with timeout
// Usage:
//
//	testhelpers.WaitFor(t, func() bool {
//	    return idx.Stats().Generation > 1
//	}, 5*time.Second)
func WaitFor(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within %v", timeout)
			return
		}
	}
}
