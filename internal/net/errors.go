package net

import (
	"errors"
	"fmt"
)

// InvariantCode identifies the structural rule a net broke.
type InvariantCode string

const (
	// CodeOpenGraph marks a dangling or self-wired port, or a node of the
	// wrong kind found where a term is expected.
	CodeOpenGraph InvariantCode = "OpenGraph"

	// CodePortInvariant marks an asymmetric wire, a wire into a freed node
	// or a slot beyond a node's arity.
	CodePortInvariant InvariantCode = "PortInvariantViolation"
)

// InvariantError reports a structural defect in a net. It means the
// runtime itself is wrong; callers never recover from it.
type InvariantError struct {
	Code    InvariantCode
	Port    Port
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s at port %s: %s", e.Code, e.Port, e.Message)
}

// IsInvariantError returns true if err is (or wraps) an *InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// IsOpenGraph returns true if err is an *InvariantError with CodeOpenGraph.
func IsOpenGraph(err error) bool {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code == CodeOpenGraph
	}
	return false
}

// OpenGraph builds a CodeOpenGraph error at p.
func OpenGraph(p Port, format string, args ...any) *InvariantError {
	return &InvariantError{Code: CodeOpenGraph, Port: p, Message: fmt.Sprintf(format, args...)}
}

// PortViolation builds a CodePortInvariant error at p.
func PortViolation(p Port, format string, args ...any) *InvariantError {
	return &InvariantError{Code: CodePortInvariant, Port: p, Message: fmt.Sprintf(format, args...)}
}
