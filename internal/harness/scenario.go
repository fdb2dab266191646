package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/optimal/internal/engine"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Defs maps definition names to their source. Every definition is in
	// scope in every other definition and in every case.
	Defs map[string]string `yaml:"defs"`

	// Cases are evaluated in order.
	Cases []Case `yaml:"cases"`
}

// Case is one term to evaluate and what to expect of it.
type Case struct {
	// Term is the source of the term to evaluate.
	Term string `yaml:"term"`

	// Expect is the source of the expected result, compared up to
	// α-equivalence. Required unless Error is set.
	Expect string `yaml:"expect,omitempty"`

	// Weak stops at weak head normal form.
	Weak bool `yaml:"weak,omitempty"`

	// MaxRewrites bounds the reducer; 0 means unbounded.
	MaxRewrites int `yaml:"max_rewrites,omitempty"`

	// Rewrites, when set, is the exact rewrite count expected.
	Rewrites *int `yaml:"rewrites,omitempty"`

	// Error is the expected error code.
	Error string `yaml:"error,omitempty"`
}

// Ext is the scenario file extension.
const Ext = ".yaml"

var knownErrors = map[engine.RuntimeErrorCode]bool{
	engine.ErrCodeUnboundReference: true,
	engine.ErrCodeBudgetExceeded:   true,
	engine.ErrCodeOpenGraph:        true,
	engine.ErrCodePortInvariant:    true,
	engine.ErrCodeUnstratified:     true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Files lists the scenario files in dir whose base name matches the glob
// filter ("" matches all), sorted by file name.
func Files(dir, filter string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(paths)

	var out []string
	for _, path := range paths {
		if filter != "" {
			ok, err := filepath.Match(filter, filepath.Base(path))
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, path)
	}
	return out, nil
}

// LoadDir loads every scenario file listed by Files. The first file that
// fails to load fails the whole directory.
func LoadDir(dir, filter string) ([]*Scenario, error) {
	paths, err := Files(dir, filter)
	if err != nil {
		return nil, err
	}
	var scenarios []*Scenario
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and case consistency.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for name, src := range s.Defs {
		if src == "" {
			return fmt.Errorf("defs[%s]: source is required", name)
		}
	}

	for i, c := range s.Cases {
		if err := validateCase(i, &c); err != nil {
			return err
		}
	}

	return nil
}

func validateCase(index int, c *Case) error {
	if c.Term == "" {
		return fmt.Errorf("cases[%d]: term is required", index)
	}
	if c.MaxRewrites < 0 {
		return fmt.Errorf("cases[%d]: max_rewrites must be non-negative", index)
	}
	if c.Rewrites != nil && *c.Rewrites < 0 {
		return fmt.Errorf("cases[%d]: rewrites must be non-negative", index)
	}

	switch {
	case c.Error != "":
		if !knownErrors[engine.RuntimeErrorCode(c.Error)] {
			return fmt.Errorf("cases[%d]: unknown error code %q", index, c.Error)
		}
		if c.Expect != "" {
			return fmt.Errorf("cases[%d]: expect and error are mutually exclusive", index)
		}
	case c.Expect == "":
		return fmt.Errorf("cases[%d]: expect is required unless error is set", index)
	}

	return nil
}
