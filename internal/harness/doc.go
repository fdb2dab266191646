// Package harness runs conformance scenarios against the evaluator.
//
// A scenario is a set of definitions and a list of cases. Each case is
// evaluated twice, once by the interaction-net pipeline (compile, lazy
// reduction, read-back) and once by the substitution-based reference
// reducer, and both results must be α-equivalent to the expected term.
//
// # Scenario Format
//
//	name: church_numerals
//	description: "Arithmetic on Church numerals"
//	defs:
//	  two:   'λf x. f (f x)'
//	  three: 'λf x. f (f (f x))'
//	  add:   'λm n f x. m f (n f x)'
//	cases:
//	  - term: add two three
//	    expect: 'λf x. f (f (f (f (f x))))'
//	    rewrites: 9
//	  - term: loop loop
//	    max_rewrites: 50
//	    error: ReductionBudgetExceeded
//
// Definitions see each other by plain name. A case may set weak to stop at
// weak head normal form, max_rewrites to bound the reducer, rewrites to pin
// the exact rewrite count, and error to expect a failure code instead of a
// result (see engine.ErrorCode).
//
// # Deterministic Testing
//
// Every case gets a fresh testutil.DeterministicLabels source, so nets and
// statistics are identical across runs and golden snapshots stay stable.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/church_numerals.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
