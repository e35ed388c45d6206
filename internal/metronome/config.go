package metronome

import "time"

// Tempo limits. BPM outside this range is rejected, never clamped silently,
// except by AdjustBPM and tap tempo which clamp by contract.
const (
	MinBPM     = 20
	MaxBPM     = 400
	DefaultBPM = 120
)

// Subdivision limits per beat (1 = quarter notes only, 2 = eighths,
// 4 = sixteenths).
const (
	minSubdivisions = 1
	maxSubdivisions = 4
)

// overrunThreshold is how far behind schedule the beat loop may fall before
// the lag is reported as a scheduling overrun. When an overrun is detected
// the loop resynchronizes to now+interval instead of firing catch-up beats
// back to back. The exact value is tunable, not load-bearing.
const overrunThreshold = 5 * time.Millisecond
