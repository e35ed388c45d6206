package metronome

import "time"

// Clock abstracts the engine's time source so the drift-compensated loop can
// run against a deterministic clock in tests. The real implementation rides
// on Go's runtime monotonic clock, which is immune to wall-clock steps.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is a single-shot timer whose expiry channel the loop selects against
// its stop signal, so cancellation interrupts an in-progress sleep.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type realClock struct{}

// NewRealClock returns the production clock.
func NewRealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTimer(d time.Duration) Timer {
	return realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (rt realTimer) C() <-chan time.Time { return rt.t.C }
func (rt realTimer) Stop() bool          { return rt.t.Stop() }
