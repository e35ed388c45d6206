package console

import "time"

// tapWindow is how long a tap stays relevant. A pause longer than this
// starts a fresh measurement instead of averaging across the gap.
const tapWindow = 2 * time.Second

// maxTaps caps the number of samples averaged; recent taps dominate.
const maxTaps = 8

// TapBuffer collects tap-tempo timestamps. Not safe for concurrent use; the
// key loop is its only caller.
type TapBuffer struct {
	taps []time.Time
}

// Add records a tap. Taps older than the window relative to this one are
// discarded first, so stale history never skews the average.
func (tb *TapBuffer) Add(at time.Time) {
	kept := tb.taps[:0]
	for _, t := range tb.taps {
		if at.Sub(t) <= tapWindow {
			kept = append(kept, t)
		}
	}
	tb.taps = append(kept, at)
	if len(tb.taps) > maxTaps {
		tb.taps = tb.taps[len(tb.taps)-maxTaps:]
	}
}

// Samples returns the retained timestamps, oldest first.
func (tb *TapBuffer) Samples() []time.Time {
	return append([]time.Time(nil), tb.taps...)
}

// Len reports how many taps are retained.
func (tb *TapBuffer) Len() int { return len(tb.taps) }

// Reset forgets all taps.
func (tb *TapBuffer) Reset() { tb.taps = tb.taps[:0] }
