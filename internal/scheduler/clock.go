package scheduler

import "time"

// Clock is the real-time source the scheduler measures deltas against.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// WallClock is the process clock.
func WallClock() Clock { return wallClock{} }

// ManualClock only moves when told to.
type ManualClock struct {
	t time.Time
}

func NewManualClock() *ManualClock {
	return &ManualClock{t: time.Unix(0, 0)}
}

func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
