package metronome

import (
	"fmt"
	"strconv"
	"strings"
)

// BeatKind classifies a single scheduler tick within a measure.
type BeatKind int

const (
	BeatAccent BeatKind = iota
	BeatNormal
	BeatSubdivision
)

func (k BeatKind) String() string {
	switch k {
	case BeatAccent:
		return "accent"
	case BeatNormal:
		return "normal"
	case BeatSubdivision:
		return "subdivision"
	default:
		return "unknown"
	}
}

// TimeSignature is an immutable musical time signature.
type TimeSignature struct {
	BeatsPerMeasure int
	BeatUnit        int
}

// NewTimeSignature validates and constructs a time signature. The beat unit
// must be a power-of-two note value up to sixteenths.
func NewTimeSignature(beatsPerMeasure, beatUnit int) (TimeSignature, error) {
	sig := TimeSignature{BeatsPerMeasure: beatsPerMeasure, BeatUnit: beatUnit}
	if err := sig.validate(); err != nil {
		return TimeSignature{}, err
	}
	return sig, nil
}

// validate rejects signatures a hand-built literal could smuggle past the
// constructor; the fields are exported, so every consumer re-checks.
func (ts TimeSignature) validate() error {
	if ts.BeatsPerMeasure < 1 {
		return fmt.Errorf("%w: beats per measure must be at least 1, got %d",
			ErrInvalidConfiguration, ts.BeatsPerMeasure)
	}
	switch ts.BeatUnit {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("%w: beat unit must be 1, 2, 4, 8 or 16, got %d",
			ErrInvalidConfiguration, ts.BeatUnit)
	}
	return nil
}

// ParseTimeSignature parses the textual "N/D" form, e.g. "4/4" or "6/8".
func ParseTimeSignature(s string) (TimeSignature, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return TimeSignature{}, fmt.Errorf("%w: time signature %q is not in N/D form",
			ErrInvalidConfiguration, s)
	}
	beats, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	unit, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return TimeSignature{}, fmt.Errorf("%w: time signature %q has a non-numeric part",
			ErrInvalidConfiguration, s)
	}
	return NewTimeSignature(beats, unit)
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.BeatsPerMeasure, ts.BeatUnit)
}

// isCompound reports whether the signature is a compound meter (6/8, 9/8,
// 12/8). Compound meters default to an accent on every third beat.
func (ts TimeSignature) isCompound() bool {
	return ts.BeatUnit == 8 && ts.BeatsPerMeasure%3 == 0 && ts.BeatsPerMeasure > 3
}

// BeatPattern describes the accent and subdivision layout of one measure.
// The zero value is not usable; construct with NewBeatPattern. A pattern is
// safe to share with the engine: the engine copies accents on Reconfigure and
// the mutators below are meant for configuration before starting playback.
type BeatPattern struct {
	sig          TimeSignature
	subdivisions int
	accents      []bool
}

// NewBeatPattern builds a pattern with the default accent layout for the
// signature: the downbeat is accented, and compound meters accent every
// third beat.
func NewBeatPattern(sig TimeSignature, subdivisions int) (*BeatPattern, error) {
	if err := sig.validate(); err != nil {
		return nil, err
	}
	if subdivisions < minSubdivisions || subdivisions > maxSubdivisions {
		return nil, fmt.Errorf("%w: subdivisions must be between %d and %d, got %d",
			ErrInvalidConfiguration, minSubdivisions, maxSubdivisions, subdivisions)
	}
	p := &BeatPattern{sig: sig, subdivisions: subdivisions}
	p.accents = defaultAccents(sig)
	return p, nil
}

// MustBeatPattern is a construction helper for static defaults and tests.
func MustBeatPattern(sig string, subdivisions int) *BeatPattern {
	ts, err := ParseTimeSignature(sig)
	if err != nil {
		panic(err)
	}
	p, err := NewBeatPattern(ts, subdivisions)
	if err != nil {
		panic(err)
	}
	return p
}

func defaultAccents(sig TimeSignature) []bool {
	accents := make([]bool, sig.BeatsPerMeasure)
	if sig.isCompound() {
		for i := range accents {
			accents[i] = i%3 == 0
		}
		return accents
	}
	accents[0] = true
	return accents
}

// TimeSignature returns the pattern's signature.
func (p *BeatPattern) TimeSignature() TimeSignature { return p.sig }

// Subdivisions returns the number of scheduler ticks per beat.
func (p *BeatPattern) Subdivisions() int { return p.subdivisions }

// SetSubdivisions changes the tick density per beat. Call only while the
// scheduler is not running; swap a running engine's pattern via Reconfigure.
func (p *BeatPattern) SetSubdivisions(n int) error {
	if n < minSubdivisions || n > maxSubdivisions {
		return fmt.Errorf("%w: subdivisions must be between %d and %d, got %d",
			ErrInvalidConfiguration, minSubdivisions, maxSubdivisions, n)
	}
	p.subdivisions = n
	return nil
}

// ClicksPerMeasure is the number of scheduler ticks spanning one measure.
func (p *BeatPattern) ClicksPerMeasure() int {
	return p.sig.BeatsPerMeasure * p.subdivisions
}

// Classify maps a tick index within the measure to its kind. Ticks that fall
// between main beats are subdivisions; main beats follow the accent mask.
// Pure function of (click, mask, subdivisions).
func (p *BeatPattern) Classify(click int) BeatKind {
	if click < 0 {
		return BeatNormal
	}
	click %= p.ClicksPerMeasure()
	if p.subdivisions > 1 && click%p.subdivisions != 0 {
		return BeatSubdivision
	}
	if p.accents[click/p.subdivisions] {
		return BeatAccent
	}
	return BeatNormal
}

// SetCustomAccents replaces the accent mask. The mask length must match the
// measure's beat count.
func (p *BeatPattern) SetCustomAccents(mask []bool) error {
	if len(mask) != p.sig.BeatsPerMeasure {
		return fmt.Errorf("%w: accent mask length %d does not match %d beats per measure",
			ErrInvalidConfiguration, len(mask), p.sig.BeatsPerMeasure)
	}
	p.accents = append([]bool(nil), mask...)
	return nil
}

// Accents returns a copy of the current accent mask.
func (p *BeatPattern) Accents() []bool {
	return append([]bool(nil), p.accents...)
}

// clone returns an independent copy; the engine stages clones so later
// mutation of the caller's pattern cannot race the beat loop.
func (p *BeatPattern) clone() *BeatPattern {
	return &BeatPattern{
		sig:          p.sig,
		subdivisions: p.subdivisions,
		accents:      append([]bool(nil), p.accents...),
	}
}

func (p *BeatPattern) String() string {
	return fmt.Sprintf("%s x%d", p.sig, p.subdivisions)
}
