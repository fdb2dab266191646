package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/optimal/internal/net"
	"github.com/roach88/optimal/internal/term"
)

// RuntimeError represents an error detected while reducing a net.
//
// It carries the node the reducer was working on so that a failure can be
// traced back to the rule that hit it.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Node is the id of the node being rewritten, or -1.
	Node int

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnboundReference indicates a REF whose definition is missing
	// or fails to compile.
	ErrCodeUnboundReference RuntimeErrorCode = "UnboundReference"

	// ErrCodeBudgetExceeded indicates the rewrite budget ran out.
	ErrCodeBudgetExceeded RuntimeErrorCode = "ReductionBudgetExceeded"

	// ErrCodeOpenGraph indicates a dangling port or a node of the wrong
	// kind where a term was expected.
	ErrCodeOpenGraph RuntimeErrorCode = "OpenGraph"

	// ErrCodePortInvariant indicates a broken wire.
	ErrCodePortInvariant RuntimeErrorCode = "PortInvariantViolation"

	// ErrCodeUnstratified indicates that the spine walk closed into a loop.
	// Deciding annihilation by label equality alone is sound for stratified
	// (elementary typable) terms. Outside that class a DUP can end up
	// copying a subgraph that leads back into its own fan.
	ErrCodeUnstratified RuntimeErrorCode = "UnstratifiedTerm"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Node >= 0 {
		return fmt.Sprintf("%s: %s (node=%d)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error { return e.Err }

// newUnboundError wraps a failed template lookup for REF node id.
func newUnboundError(id int, name string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnboundReference,
		Message: fmt.Sprintf("cannot expand %s: %v", name, err),
		Node:    id,
		Err:     err,
	}
}

// newUnstratifiedError reports a spine walk that entered node id again.
func newUnstratifiedError(id, depth, live int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnstratified,
		Message: fmt.Sprintf("spine walk is cyclic (depth %d over %d live nodes): term is outside the stratified fragment", depth, live),
		Node:    id,
	}
}

// IsUnstratified returns true if err reports a cyclic spine walk.
func IsUnstratified(err error) bool {
	return ErrorCode(err) == ErrCodeUnstratified
}

// ErrorCode classifies err into one of the runtime error codes. It returns
// the empty code for errors the reducer did not produce, such as context
// cancellation.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	if IsBudgetError(err) {
		return ErrCodeBudgetExceeded
	}
	var ie *net.InvariantError
	if errors.As(err, &ie) {
		if ie.Code == net.CodeOpenGraph {
			return ErrCodeOpenGraph
		}
		return ErrCodePortInvariant
	}
	if term.IsUnbound(err) {
		return ErrCodeUnboundReference
	}
	return ""
}
