package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/optimal/internal/loader"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// loadTestModule writes CUE sources into a temp directory and loads root.
func loadTestModule(t *testing.T, root string, files map[string]string) *loader.Module {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name+loader.Ext), []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	m, err := loader.Load(dir, root)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", root, err)
	}
	return m
}

const testBoolModule = `
defs: {
	"true":  "λt f. t"
	"false": "λt f. f"
	not:     "λb. b false true"
}
`

const testMainModule = `
imports: ["bool"]
defs: main: "bool/not bool/false"
`

// createTestRun creates a run with minimal required fields.
func createTestRun(id, target string) Run {
	return Run{
		ID:         id,
		Target:     target,
		ModuleHash: "test-hash",
		Mode:       "optimal",
		Loops:      6,
		Rewrites:   4,
		MaxLen:     4,
		Result:     "λt f. t",
		ResultHash: "result-hash",
	}
}
