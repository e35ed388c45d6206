package audio

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/GerzaFM/Metronomo-Basico/internal/logging"
	"github.com/GerzaFM/Metronomo-Basico/internal/metronome"
)

// Channel 10 (zero-based 9) is the General MIDI percussion channel.
const midiPercussionChannel uint8 = 9

// midiClicks maps click kinds to GM percussion notes: high wood block for
// the accent, low wood block for everything else, quieter on subdivisions.
var midiClicks = map[metronome.BeatKind]struct {
	key      uint8
	velocity uint8
}{
	metronome.BeatAccent:      {key: 76, velocity: 120},
	metronome.BeatNormal:      {key: 77, velocity: 90},
	metronome.BeatSubdivision: {key: 77, velocity: 50},
}

// MIDITrigger clicks by sending note-on/note-off pairs to an external MIDI
// output, letting a synth or drum machine voice the metronome.
type MIDITrigger struct {
	out    drivers.Out
	logger zerolog.Logger

	mu       sync.Mutex
	send     func(midi.Message) error
	velScale float64
}

// NewMIDITrigger returns a trigger that clicks through the given output port.
func NewMIDITrigger(out drivers.Out) *MIDITrigger {
	return &MIDITrigger{
		out:      out,
		velScale: 1.0,
		logger:   logging.GetDefaultLogger().With().Str("component", "audio-midi").Logger(),
	}
}

// Initialize opens the output port.
func (t *MIDITrigger) Initialize() error {
	send, err := midi.SendTo(t.out)
	if err != nil {
		return fmt.Errorf("opening MIDI out %s: %w", t.out.String(), err)
	}

	t.mu.Lock()
	t.send = send
	t.mu.Unlock()

	t.logger.Info().Str("port", t.out.String()).Msg("MIDI output opened")
	return nil
}

func (t *MIDITrigger) Play(kind metronome.BeatKind) error {
	t.mu.Lock()
	send, scale := t.send, t.velScale
	t.mu.Unlock()

	if send == nil {
		return fmt.Errorf("midi trigger not initialized")
	}
	if scale <= 0 {
		return nil
	}

	click := midiClicks[kind]
	if err := send(midi.NoteOn(midiPercussionChannel, click.key, scaledVelocity(click.velocity, scale))); err != nil {
		return fmt.Errorf("sending note on: %w", err)
	}
	if err := send(midi.NoteOff(midiPercussionChannel, click.key)); err != nil {
		return fmt.Errorf("sending note off: %w", err)
	}
	return nil
}

// SetVolume scales click velocities, 0 mutes and 1 plays at full velocity.
func (t *MIDITrigger) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume %v out of range [0, 1]", volume)
	}
	t.mu.Lock()
	t.velScale = volume
	t.mu.Unlock()
	return nil
}

// Close releases the output port.
func (t *MIDITrigger) Close() error {
	t.mu.Lock()
	t.send = nil
	t.mu.Unlock()

	if t.out != nil {
		return t.out.Close()
	}
	return nil
}

func scaledVelocity(base uint8, scale float64) uint8 {
	v := float64(base) * scale
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
