// Package audio holds the SoundTrigger implementations the engine drives.
// Backends are interchangeable strategies: the engine only sees the
// metronome.SoundTrigger capability set and never learns which one is wired.
package audio

import "github.com/GerzaFM/Metronomo-Basico/internal/metronome"

var (
	_ metronome.SoundTrigger = (*BeepTrigger)(nil)
	_ metronome.SoundTrigger = (*MIDITrigger)(nil)
)
