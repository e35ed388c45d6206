package metronome

import (
	"sync"
	"sync/atomic"
	"time"
)

// fakeClock is a deterministic Clock for driving the beat loop from tests.
// Every NewTimer call announces its duration on the sleeps channel, so a
// test can wait until the loop is parked, mutate configuration, then
// Advance to release exactly one beat.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	sleeps chan time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:    time.Unix(1000, 0),
		sleeps: make(chan time.Duration, 1024),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	t := &fakeTimer{
		ch:       make(chan time.Time, 1),
		deadline: c.now.Add(d),
	}
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	c.sleeps <- d
	return t
}

// Advance moves the clock forward and fires every timer whose deadline has
// passed.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	remaining := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped.Load() && !t.deadline.After(c.now) {
			t.ch <- c.now
			continue
		}
		remaining = append(remaining, t)
	}
	c.timers = remaining
}

type fakeTimer struct {
	ch       chan time.Time
	deadline time.Time
	stopped  atomic.Bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	return !t.stopped.Swap(true)
}
