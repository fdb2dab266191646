package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/optimal/internal/ir"
)

// Snapshot captures the printed results and statistics of a scenario run.
// It is serialized with canonical JSON so that equal runs produce equal
// bytes.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Cases        []CaseResult `json:"cases"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical
// JSON serialization. Failed cases keep only their error code: the
// statistics of a stopped run say little about the term.
func (s *Snapshot) toCanonicalMap() map[string]any {
	cases := make([]any, len(s.Cases))
	for i, c := range s.Cases {
		m := map[string]any{"term": c.Term}
		if c.Error != "" {
			m["error"] = c.Error
		} else {
			m["output"] = c.Output
			m["loops"] = c.Stats.Loops
			m["rewrites"] = c.Stats.Rewrites
			m["max_len"] = c.Stats.MaxLen
			m["reference_steps"] = c.ReferenceSteps
		}
		cases[i] = m
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"cases":         cases,
	}
}

// Marshal returns the canonical JSON form of the snapshot.
func (s *Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden. Extra goldie
// options are applied after the defaults, so goldie.WithFixtureDir moves
// the golden directory.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...goldie.Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result, opts...); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result, opts ...goldie.Option) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName, Cases: result.Cases}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	defaults := []goldie.Option{
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	}
	g := goldie.New(t, append(defaults, opts...)...)
	g.Assert(t, scenarioName, data)

	return nil
}
