package engine

import (
	"errors"
	"fmt"
)

// budget counts rewrites against an optional limit.
//
// The check happens before the rewrite it guards, so a run stopped by the
// budget has performed exactly limit rewrites.
type budget struct {
	limit int // 0 = unlimited
}

// charge fails if one more rewrite would go over the limit.
func (b budget) charge(stats Stats) error {
	if b.limit > 0 && stats.Rewrites >= b.limit {
		return &BudgetExceededError{Limit: b.limit, Stats: stats}
	}
	return nil
}

// BudgetExceededError is returned when a reduction needs more rewrites
// than WithMaxRewrites allows. Stats is the snapshot at the point of
// failure; Stats.Rewrites equals Limit.
type BudgetExceededError struct {
	Limit int
	Stats Stats
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("%s: reduction exceeded %d rewrites (loops=%d, max_len=%d)",
		ErrCodeBudgetExceeded, e.Limit, e.Stats.Loops, e.Stats.MaxLen)
}

// IsBudgetError returns true if the error is a BudgetExceededError.
// Uses errors.As to handle wrapped errors.
func IsBudgetError(err error) bool {
	var be *BudgetExceededError
	return errors.As(err, &be)
}
