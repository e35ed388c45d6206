package metronome

// SoundTrigger is the audible-output capability the engine drives once per
// beat. Implementations are injected (strategy swap), must keep Play bounded
// in latency, and live outside this package; a Play failure is logged and
// counted but never stops the beat loop.
type SoundTrigger interface {
	Initialize() error
	Play(kind BeatKind) error
	SetVolume(volume float64) error
	Close() error
}

// nullTrigger is the default trigger: a silent metronome that still reports
// every beat through observers.
type nullTrigger struct{}

// NewNullTrigger returns a trigger that produces no sound.
func NewNullTrigger() SoundTrigger { return nullTrigger{} }

func (nullTrigger) Initialize() error       { return nil }
func (nullTrigger) Play(BeatKind) error     { return nil }
func (nullTrigger) SetVolume(float64) error { return nil }
func (nullTrigger) Close() error            { return nil }
