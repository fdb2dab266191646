package term

import (
	"errors"
	"fmt"
)

// UnboundError reports a name that resolves to neither a binder nor a
// definition (UnboundReference). It is fatal for the invocation that hit it.
type UnboundError struct {
	Name string
	// Free is set when the name is a variable escaping its term, as opposed
	// to a global reference missing from defs.
	Free bool
}

func (e *UnboundError) Error() string {
	if e.Free {
		return fmt.Sprintf("unbound reference: free variable %q", e.Name)
	}
	return fmt.Sprintf("unbound reference: %q is not defined", e.Name)
}

// IsUnbound returns true if err is (or wraps) an *UnboundError.
func IsUnbound(err error) bool {
	var ue *UnboundError
	return errors.As(err, &ue)
}

// SyntaxError reports a malformed term source.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

// LimitError is returned by the reference reducer when it runs out of steps.
type LimitError struct {
	Limit int
	Steps int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("reduction exceeded %d steps", e.Limit)
}
