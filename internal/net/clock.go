package net

import "sync/atomic"

// LabelSource hands out DUP labels. Every call must return a value never
// returned before by the same source.
type LabelSource interface {
	Next() uint64
}

// Clock is a monotonic label counter, safe for concurrent use. Label 0 is
// never issued; CON nodes carry it.
type Clock struct {
	seq atomic.Uint64
}

// NewClock creates a clock whose first label is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first label is start+1.
func NewClockAt(start uint64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns a fresh label.
func (c *Clock) Next() uint64 {
	return c.seq.Add(1)
}

// Current returns the last label issued.
func (c *Clock) Current() uint64 {
	return c.seq.Load()
}

// GlobalLabels is the process-wide label counter shared by every net that
// is not given its own source. Nets reduced in different goroutines never
// see the same label.
var GlobalLabels = NewClock()
