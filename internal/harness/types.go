package harness

import "github.com/roach88/optimal/internal/engine"

// CaseResult is the outcome of one case.
type CaseResult struct {
	Term string `json:"term"`
	// Output is the printed result of the optimal pipeline. Empty when the
	// case failed with an error.
	Output string       `json:"output,omitempty"`
	Stats  engine.Stats `json:"stats"`
	// ReferenceSteps counts the reference reducer's steps for the same term.
	ReferenceSteps int `json:"reference_steps"`
	// Error is the error code the case ended with, if any.
	Error string `json:"error,omitempty"`
	Pass  bool   `json:"pass"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every case passed.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors contains one message per failed check. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
