package auction

import (
	"sync"
	"time"
)

// tick is the smallest step Postgres timestamps can represent.
const tick = time.Microsecond

// Clock hands out updatedAt values that always move forward, even when two
// mutations land inside the same wall clock reading.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Next returns a timestamp strictly after both prev and every value it
// returned before.
func (c *Clock) Next(prev time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(tick)
	if floor := latest(prev, c.last); !t.After(floor) {
		t = floor.Truncate(tick).Add(tick)
	}
	c.last = t
	return t
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
