package loader

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a malformed module file or definition.
type CompileError struct {
	Module  string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Module != "" {
		return fmt.Sprintf("%s: %s: %s", e.Module, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a module file that does not exist.
type NotFoundError struct {
	Module string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %s not found (looked for %s)", e.Module, e.Path)
}

// ImportCycleError reports modules that import each other.
type ImportCycleError struct {
	Path []string
}

func (e *ImportCycleError) Error() string {
	return "import cycle: " + strings.Join(e.Path, " → ")
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(module string, err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Module:  module,
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return &CompileError{Module: module, Field: "cue", Message: first.Error()}
}
