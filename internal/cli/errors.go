package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/optimal/internal/engine"
	"github.com/roach88/optimal/internal/loader"
	"github.com/roach88/optimal/internal/store"
)

// Error codes for CLI output.
const (
	// Command errors (exit 2)
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Module file or stored module not found
	ErrCodeLoadFailed  = "E003" // CUE load or build failed
	ErrCodeImportCycle = "E004" // Modules import each other
	ErrCodeStore       = "E005" // Database error
	ErrCodeWriteFailed = "E006" // File write error
	ErrCodeAmbiguous   = "E007" // Hash prefix matches several modules

	// Evaluation errors
	ErrCodeUnbound   = "E101" // UnboundReference (exit 1)
	ErrCodeBudget    = "E102" // ReductionBudgetExceeded (exit 1)
	ErrCodeInvariant = "E103" // OpenGraph or PortInvariantViolation (exit 2)
	ErrCodeCancelled = "E104" // Interrupted (exit 1)
	ErrCodeFragment  = "E105" // Term outside the stratified fragment (exit 1)

	ErrCodeTestFailed = "E201" // One or more scenarios failed (exit 1)
)

// newFormatter builds the output formatter of a command.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// fail reports an error through the formatter and returns the matching
// ExitError.
func fail(f *OutputFormatter, exitCode int, code, message string, err error) error {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, msg, nil)
	return &ExitError{Code: exitCode, Message: fmt.Sprintf("%s: %s", code, message), Err: err, Reported: true}
}

// loadTarget loads the module of target ("module" or "module/name") from
// dir and returns it with the qualified name to evaluate.
func loadTarget(f *OutputFormatter, dir, target string) (*loader.Module, string, error) {
	module, name := loader.ParseTarget(target)
	f.VerboseLog("Loading module %s from %s", module, dir)

	m, err := loader.Load(dir, module)
	if err != nil {
		return nil, "", loadFailure(f, module, err)
	}
	f.VerboseLog("Loaded %s#%s (%d definitions)", m.Name, m.Hash, len(m.Sources))

	q := m.Qualified(name)
	if _, ok := m.Defs[q]; !ok {
		return nil, "", fail(f, ExitFailure, ErrCodeUnbound,
			fmt.Sprintf("%s: unbound reference: %q is not defined", engine.ErrCodeUnboundReference, q), nil)
	}
	return m, q, nil
}

// loadFailure maps a loader error onto an exit code and error code.
func loadFailure(f *OutputFormatter, module string, err error) error {
	var notFound *loader.NotFoundError
	var cycle *loader.ImportCycleError
	var compileErr *loader.CompileError
	switch {
	case errors.As(err, &notFound):
		return fail(f, ExitCommandError, ErrCodeNotFound, "module not found", err)
	case errors.As(err, &cycle):
		return fail(f, ExitCommandError, ErrCodeImportCycle, "cannot load "+module, err)
	case errors.As(err, &compileErr):
		return fail(f, ExitCommandError, ErrCodeLoadFailed, "cannot load "+module, err)
	default:
		return fail(f, ExitCommandError, ErrCodeGeneric, "cannot load "+module, err)
	}
}

// evalFailure maps an evaluation error onto an exit code and error code.
func evalFailure(f *OutputFormatter, err error) error {
	switch engine.ErrorCode(err) {
	case engine.ErrCodeUnboundReference:
		return fail(f, ExitFailure, ErrCodeUnbound, "evaluation failed", err)
	case engine.ErrCodeBudgetExceeded:
		return fail(f, ExitFailure, ErrCodeBudget, "evaluation failed", err)
	case engine.ErrCodeUnstratified:
		return fail(f, ExitFailure, ErrCodeFragment, "evaluation failed", err)
	case engine.ErrCodeOpenGraph, engine.ErrCodePortInvariant:
		return fail(f, ExitCommandError, ErrCodeInvariant, "internal error", err)
	}
	if errors.Is(err, context.Canceled) {
		return fail(f, ExitFailure, ErrCodeCancelled, "evaluation interrupted", err)
	}
	return fail(f, ExitFailure, ErrCodeGeneric, "evaluation failed", err)
}

// storeFailure maps a store error onto an exit code and error code.
func storeFailure(f *OutputFormatter, message string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fail(f, ExitCommandError, ErrCodeNotFound, message, err)
	case errors.Is(err, store.ErrAmbiguous):
		return fail(f, ExitCommandError, ErrCodeAmbiguous, message, err)
	default:
		return fail(f, ExitCommandError, ErrCodeStore, message, err)
	}
}
