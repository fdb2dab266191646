package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/optimal/internal/compiler"
	"github.com/roach88/optimal/internal/engine"
	"github.com/roach88/optimal/internal/term"
	"github.com/roach88/optimal/internal/testutil"
)

// referenceLimit bounds the reference reducer so that a case expected to
// succeed cannot hang the harness when the optimal side is bounded.
const referenceLimit = 1 << 20

// Harness evaluates the cases of one scenario.
type Harness struct {
	defs   term.Defs
	labels *testutil.DeterministicLabels
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// A failed check does not stop the run: it marks the case and the result
// as failed and the next case runs. An error is returned only when the
// scenario itself is broken (a definition or an expected term that does
// not parse) or evaluation stops for a reason no case can expect, such as
// cancellation.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	defs, err := parseDefs(scenario.Defs)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		defs:   defs,
		labels: testutil.NewDeterministicLabels(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		cr, failures, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("cases[%d] %q: %w", i, c.Term, err)
		}
		cr.Pass = len(failures) == 0
		for _, msg := range failures {
			result.AddError(fmt.Sprintf("cases[%d] %q: %s", i, c.Term, msg))
		}
		result.Cases = append(result.Cases, cr)
	}
	return result, nil
}

// parseDefs parses definitions that all see each other by plain name.
func parseDefs(srcs map[string]string) (term.Defs, error) {
	defs := make(term.Defs, len(srcs))
	names := make([]string, 0, len(srcs))
	for name := range srcs {
		defs[name] = nil
		names = append(names, name)
	}
	sort.Strings(names)

	resolve := term.DefsResolver(defs)
	for _, name := range names {
		t, err := term.Parse(srcs[name], resolve)
		if err != nil {
			return nil, fmt.Errorf("defs[%s]: %w", name, err)
		}
		defs[name] = t
	}
	return defs, nil
}

// runCase evaluates one case with both reducers and checks the outcome.
func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, []string, error) {
	cr := CaseResult{Term: c.Term}
	resolve := term.DefsResolver(h.defs)

	t, err := term.Parse(c.Term, resolve)
	if err != nil {
		if !term.IsUnbound(err) {
			return cr, nil, err
		}
		cr.Error = string(engine.ErrorCode(err))
		return cr, checkError(c, cr), nil
	}

	var expect term.Term
	if c.Expect != "" {
		expect, err = term.Parse(c.Expect, resolve)
		if err != nil {
			return cr, nil, fmt.Errorf("expect: %w", err)
		}
	}

	h.labels.Reset()
	book := compiler.NewBook(h.defs, compiler.WithLabels(h.labels))
	out, stats, err := engine.Normalize(ctx, t, book, c.Weak,
		engine.WithMaxRewrites(c.MaxRewrites),
		engine.WithLogger(h.logger),
	)
	cr.Stats = stats
	if err != nil {
		code := engine.ErrorCode(err)
		if code == "" {
			return cr, nil, err
		}
		cr.Error = string(code)
		return cr, checkError(c, cr), nil
	}
	cr.Output = term.Show(out)

	failures := checkError(c, cr)
	if expect != nil {
		failures = append(failures, checkOutput(expect, out)...)
	}
	failures = append(failures, checkRewrites(c, cr)...)

	ref, refStats, err := term.Normalize(t, h.defs, term.ReduceOptions{Weak: c.Weak, MaxSteps: referenceLimit})
	cr.ReferenceSteps = refStats.Steps
	if err != nil {
		failures = append(failures, fmt.Sprintf("reference reducer failed: %v", err))
		return cr, failures, nil
	}
	failures = append(failures, checkReference(ref, out)...)
	return cr, failures, nil
}
