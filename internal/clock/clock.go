package clock

import (
	"sync"
	"time"
)

// Clock provides time to the application.
// Using an interface enables deterministic tests via a controllable implementation.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall-clock time in the gym's time zone, so that
// "today" matches the calendar day the front desk sees.
type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{loc: loc}
}

func (c SystemClock) Now() time.Time { return time.Now().In(c.loc) }

// ManualClock is a Clock for tests that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock { return &ManualClock{now: now} }

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
