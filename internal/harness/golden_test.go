package harness

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioDir holds the shared conformance scenarios and their golden
// snapshots. Tests run from the package directory.
const scenarioDir = "../../testdata/scenarios"

var goldenDir = filepath.Join(scenarioDir, "golden")

// TestScenarios runs every shared scenario and compares it with its
// golden snapshot. Regenerate with:
//
//	go test ./internal/harness -run TestScenarios -update
func TestScenarios(t *testing.T) {
	scenarios, err := LoadDir(scenarioDir, "")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s, goldie.WithFixtureDir(goldenDir))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Marshal(t *testing.T) {
	s := Snapshot{
		ScenarioName: "demo",
		Cases: []CaseResult{
			{Term: "loop true", Error: "ReductionBudgetExceeded"},
		},
	}

	data, err := s.Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"cases":[{"error":"ReductionBudgetExceeded","term":"loop true"}],"scenario_name":"demo"}`,
		string(data))
}

func TestScenarioFilesHaveGoldens(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join(scenarioDir, "*"+Ext))
	require.NoError(t, err)

	for _, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(goldenDir, s.Name+".golden"))
	}
}
