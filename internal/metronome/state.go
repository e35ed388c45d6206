package metronome

import "time"

// Status is the engine's playback state. Transitions follow a fixed machine:
// Stopped -> Playing -> {Paused <-> Playing} -> Stopped. Stop is legal from
// any state; Paused is reachable only from Playing.
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// EngineState is a snapshot of the engine's run-time position and counters.
// The master copy is owned by the engine and mutated only under its lock;
// State() hands callers an independent copy.
type EngineState struct {
	Status           Status
	CurrentBeat      int // main beat within the measure, [0, beats per measure)
	CurrentClick     int // scheduler tick within the measure, [0, clicks per measure)
	CurrentMeasure   int
	TotalBeatsPlayed int
	SessionStart     time.Time // zero when no session is active
	LastBeat         time.Time // zero until the first beat of a session fires
}

// advance moves the state one scheduler tick forward, wrapping at the
// measure boundary. Subdivision ticks do not count as played beats.
func (st *EngineState) advance(pattern *BeatPattern, now time.Time) {
	if st.CurrentClick%pattern.Subdivisions() == 0 {
		st.TotalBeatsPlayed++
	}
	st.CurrentClick = (st.CurrentClick + 1) % pattern.ClicksPerMeasure()
	st.CurrentBeat = st.CurrentClick / pattern.Subdivisions()
	if st.CurrentClick == 0 {
		st.CurrentMeasure++
	}
	st.LastBeat = now
}

// resetPosition rewinds to the top of the first measure without touching
// session counters.
func (st *EngineState) resetPosition() {
	st.CurrentBeat = 0
	st.CurrentClick = 0
	st.CurrentMeasure = 0
}

// SessionDuration reports how long the current session has been running, or
// zero when none is active.
func (st EngineState) SessionDuration(now time.Time) time.Duration {
	if st.SessionStart.IsZero() {
		return 0
	}
	return now.Sub(st.SessionStart)
}

// IsPlaying reports whether the engine is actively producing beats.
func (st EngineState) IsPlaying() bool { return st.Status == StatusPlaying }

// IsPaused reports whether playback is parked mid-measure.
func (st EngineState) IsPaused() bool { return st.Status == StatusPaused }

// IsStopped reports whether the engine is fully stopped.
func (st EngineState) IsStopped() bool { return st.Status == StatusStopped }
