package harness

import (
	"fmt"

	"github.com/roach88/optimal/internal/term"
)

// AssertionError is a failed check. Its Error form is what ends up in
// Result.Errors.
type AssertionError struct {
	Check    string // output, reference, rewrites or error
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

func failed(check, expected, actual string) []string {
	return []string{(&AssertionError{Check: check, Expected: expected, Actual: actual}).Error()}
}

// checkError compares the error code a case ended with against the one
// it expects. An empty code on both sides passes.
func checkError(c Case, cr CaseResult) []string {
	if c.Error == cr.Error {
		return nil
	}
	expected, actual := c.Error, cr.Error
	if expected == "" {
		expected = "success"
	}
	if actual == "" {
		actual = "success (" + cr.Output + ")"
	}
	return failed("error", expected, actual)
}

// checkOutput compares the result with the expected term up to
// α-equivalence.
func checkOutput(expect, got term.Term) []string {
	if term.Equal(expect, got) {
		return nil
	}
	return failed("output", term.Show(expect), term.Show(got))
}

// checkReference compares the result with the reference reducer's.
func checkReference(ref, got term.Term) []string {
	if term.Equal(ref, got) {
		return nil
	}
	return failed("reference", term.Show(ref), term.Show(got))
}

// checkRewrites compares the rewrite count when the case pins it.
func checkRewrites(c Case, cr CaseResult) []string {
	if c.Rewrites == nil || *c.Rewrites == cr.Stats.Rewrites {
		return nil
	}
	return failed("rewrites", fmt.Sprint(*c.Rewrites), fmt.Sprint(cr.Stats.Rewrites))
}
