package mock

import (
	"sync"
	"time"

	"github.com/marketpulse/indexq/core"
)

var _ core.Clock = (*Clock)(nil)

// Clock is a fake clock. After fires immediately and advances the clock by
// the requested duration.
type Clock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
	block bool
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// NewBlockingClock returns a clock whose After never fires.
func NewBlockingClock(start time.Time) *Clock {
	return &Clock{now: start, block: true}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.waits = append(c.waits, d)

	ch := make(chan time.Time, 1)
	if c.block {
		return ch
	}

	c.now = c.now.Add(d)
	ch <- c.now
	return ch
}

// Waits returns every duration passed to After.
func (c *Clock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}
