package metronome

import "errors"

// Errors returned by the engine control surface and by configuration
// constructors. Configuration errors are rejected synchronously and leave the
// prior configuration in force; runtime faults inside the beat loop never
// propagate as errors and are reported through observers instead.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrAlreadyRunning       = errors.New("metronome already running")
	ErrNotRunning           = errors.New("metronome not running")
	ErrEngineClosed         = errors.New("metronome engine closed")
)
