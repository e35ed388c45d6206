package metronome

import (
	"fmt"
	"time"
)

// TempoConfig is an immutable tempo. Construct with NewTempoConfig or
// TempoFromMarking; the zero value is invalid.
type TempoConfig struct {
	BPM  int
	Name string
}

// tempoMarking is an Italian tempo marking with its customary BPM range.
type tempoMarking struct {
	name     string
	min, max int
}

// Ordered slowest to fastest; ranges overlap, first match wins on lookup.
var tempoMarkings = []tempoMarking{
	{"Grave", 25, 45},
	{"Largo", 40, 60},
	{"Lento", 45, 60},
	{"Adagio", 55, 65},
	{"Andante", 73, 77},
	{"Moderato", 86, 97},
	{"Allegretto", 98, 109},
	{"Allegro", 109, 132},
	{"Vivace", 132, 140},
	{"Presto", 168, 177},
	{"Prestissimo", 178, 240},
}

// NewTempoConfig validates the BPM range and constructs a tempo.
func NewTempoConfig(bpm int) (TempoConfig, error) {
	if bpm < MinBPM || bpm > MaxBPM {
		return TempoConfig{}, fmt.Errorf("%w: BPM must be between %d and %d, got %d",
			ErrInvalidConfiguration, MinBPM, MaxBPM, bpm)
	}
	return TempoConfig{BPM: bpm}, nil
}

// TempoFromMarking resolves an Italian tempo marking to the midpoint of its
// customary range.
func TempoFromMarking(name string) (TempoConfig, error) {
	for _, m := range tempoMarkings {
		if m.name == name {
			return TempoConfig{BPM: (m.min + m.max) / 2, Name: m.name}, nil
		}
	}
	return TempoConfig{}, fmt.Errorf("%w: unknown tempo marking %q", ErrInvalidConfiguration, name)
}

// MarkingTable returns one display line per known tempo marking, slowest
// first.
func MarkingTable() []string {
	lines := make([]string, 0, len(tempoMarkings))
	for _, m := range tempoMarkings {
		lines = append(lines, fmt.Sprintf("%-12s %3d-%3d BPM", m.name, m.min, m.max))
	}
	return lines
}

// Interval is the time between main beats. Strictly positive for any valid
// config: the BPM floor of 20 caps it at three seconds.
func (tc TempoConfig) Interval() time.Duration {
	return time.Duration(float64(time.Minute) / float64(tc.BPM))
}

// Marking returns the Italian tempo marking matching this BPM, or "".
func (tc TempoConfig) Marking() string {
	for _, m := range tempoMarkings {
		if tc.BPM >= m.min && tc.BPM <= m.max {
			return m.name
		}
	}
	return ""
}

// AdjustBPM returns a tempo shifted by delta, clamped to the valid range.
func (tc TempoConfig) AdjustBPM(delta int) TempoConfig {
	bpm := tc.BPM + delta
	if bpm < MinBPM {
		bpm = MinBPM
	}
	if bpm > MaxBPM {
		bpm = MaxBPM
	}
	return TempoConfig{BPM: bpm, Name: tc.Name}
}

func (tc TempoConfig) String() string {
	if tc.Name != "" {
		return fmt.Sprintf("%s (%d BPM)", tc.Name, tc.BPM)
	}
	if m := tc.Marking(); m != "" {
		return fmt.Sprintf("%d BPM (%s)", tc.BPM, m)
	}
	return fmt.Sprintf("%d BPM", tc.BPM)
}

// TapTempo derives a tempo from an ordered series of tap timestamps. The BPM
// is 60 over the mean gap between consecutive taps, clamped to the valid
// range. Fewer than two samples cannot define a gap; ok is false and the
// caller keeps its prior tempo.
func TapTempo(samples []time.Time) (TempoConfig, bool) {
	if len(samples) < 2 {
		return TempoConfig{}, false
	}
	total := samples[len(samples)-1].Sub(samples[0])
	if total <= 0 {
		return TempoConfig{}, false
	}
	mean := total / time.Duration(len(samples)-1)
	bpm := int(float64(time.Minute)/float64(mean) + 0.5)
	if bpm < MinBPM {
		bpm = MinBPM
	}
	if bpm > MaxBPM {
		bpm = MaxBPM
	}
	return TempoConfig{BPM: bpm}, true
}
