package testutil

import "sync"

// DeterministicLabels is a resettable label source for tests. The same
// scenario run after Reset sees the same labels, which keeps printed nets
// and golden files stable.
type DeterministicLabels struct {
	mu  sync.Mutex
	seq uint64
}

// NewDeterministicLabels creates a source whose first label is 1.
func NewDeterministicLabels() *DeterministicLabels {
	return &DeterministicLabels{}
}

// Next returns the next label.
func (c *DeterministicLabels) Next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last label issued.
func (c *DeterministicLabels) Current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the source so that Next returns 1 again.
func (c *DeterministicLabels) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
