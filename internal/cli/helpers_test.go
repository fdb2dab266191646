package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/optimal/internal/loader"
)

const boolModule = `
defs: {
	"true":  "λt f. t"
	"false": "λt f. f"
	not:     "λb. b false true"
}
`

const mainModule = `
imports: ["bool"]
defs: {
	main: "bool/not bool/false"
	loop: "λx. loop x"
	spin: "loop bool/true"
}
`

// writeModules writes CUE module files into a fresh directory.
func writeModules(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+loader.Ext), []byte(src), 0o644))
	}
	return dir
}

// testModules writes the bool and main modules.
func testModules(t *testing.T) string {
	t.Helper()
	return writeModules(t, map[string]string{"bool": boolModule, "main": mainModule})
}

func mustLoad(t *testing.T, dir, name string) *loader.Module {
	t.Helper()
	m, err := loader.Load(dir, name)
	require.NoError(t, err)
	return m
}

// execute runs a command built by newCmd with args and returns its
// standard output.
func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newCmd(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// response is a CLIResponse with a typed payload.
type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decodeResponse[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var r response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &r), "output: %s", out)
	return r
}
