package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/optimal/internal/net"
	"github.com/roach88/optimal/internal/term"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RuntimeErrorCode
	}{
		{"budget", &BudgetExceededError{Limit: 1}, ErrCodeBudgetExceeded},
		{"wrapped budget", fmt.Errorf("run: %w", &BudgetExceededError{Limit: 1}), ErrCodeBudgetExceeded},
		{"runtime", newUnboundError(4, "ghost", &term.UnboundError{Name: "ghost"}), ErrCodeUnboundReference},
		{"unbound", &term.UnboundError{Name: "x", Free: true}, ErrCodeUnboundReference},
		{"open graph", net.OpenGraph(net.MakePort(1, 0), "dangling"), ErrCodeOpenGraph},
		{"port", net.PortViolation(net.MakePort(1, 2), "asymmetric"), ErrCodePortInvariant},
		{"foreign", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestRuntimeError_Message(t *testing.T) {
	err := newUnboundError(4, "ghost", &term.UnboundError{Name: "ghost"})
	assert.Contains(t, err.Error(), "UnboundReference")
	assert.Contains(t, err.Error(), "node=4")
	assert.True(t, term.IsUnbound(err))

	bare := &RuntimeError{Code: ErrCodeOpenGraph, Message: "m", Node: -1}
	assert.Equal(t, "OpenGraph: m", bare.Error())
}
