package internal

import "time"

// FakeClock is a manually advanced clock for deadline tests
type FakeClock struct {
	t time.Time
}

// NewFakeClock returns a clock stopped at a fixed instant
func NewFakeClock() *FakeClock {
	return &FakeClock{t: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
