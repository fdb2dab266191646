package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name+Ext)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test", `
name: test_scenario
description: "Test scenario for validation"
defs:
  id: 'λx. x'
cases:
  - term: id id
    expect: 'λx. x'
    rewrites: 2
  - term: id
    weak: true
    max_rewrites: 10
    expect: 'λy. y'
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, map[string]string{"id": "λx. x"}, scenario.Defs)
	require.Len(t, scenario.Cases, 2)
	require.NotNil(t, scenario.Cases[0].Rewrites)
	assert.Equal(t, 2, *scenario.Cases[0].Rewrites)
	assert.Nil(t, scenario.Cases[1].Rewrites)
	assert.True(t, scenario.Cases[1].Weak)
	assert.Equal(t, 10, scenario.Cases[1].MaxRewrites)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
cases:
  - term: x
    expect: x
`,
			wantErr: "name is required",
		},
		{
			name:    "no cases",
			content: "name: empty\n",
			wantErr: "cases list is required",
		},
		{
			name: "missing term",
			content: `
name: s
cases:
  - expect: x
`,
			wantErr: "cases[0]: term is required",
		},
		{
			name: "missing expect",
			content: `
name: s
cases:
  - term: x
`,
			wantErr: "expect is required unless error is set",
		},
		{
			name: "expect and error",
			content: `
name: s
cases:
  - term: x
    expect: x
    error: UnboundReference
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "unknown error code",
			content: `
name: s
cases:
  - term: x
    error: Oops
`,
			wantErr: `unknown error code "Oops"`,
		},
		{
			name: "negative budget",
			content: `
name: s
cases:
  - term: x
    expect: x
    max_rewrites: -1
`,
			wantErr: "max_rewrites must be non-negative",
		},
		{
			name: "empty definition",
			content: `
name: s
defs:
  id: ''
cases:
  - term: id
    expect: id
`,
			wantErr: "defs[id]: source is required",
		},
		{
			name: "unknown field",
			content: `
name: s
case:
  - term: x
`,
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDir_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	body := `
cases:
  - term: λx. x
    expect: λy. y
`
	writeScenario(t, dir, "b_second", "name: second"+body)
	writeScenario(t, dir, "a_first", "name: first"+body)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	all, err := LoadDir(dir, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Name)
	assert.Equal(t, "second", all[1].Name)

	filtered, err := LoadDir(dir, "b_*")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "second", filtered[0].Name)
}

func TestLoadDir_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken", "name: broken\n")

	_, err := LoadDir(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestFiles_InvalidFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "one", "name: one\ncases:\n  - term: λx. x\n    expect: λx. x\n")

	_, err := Files(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}
