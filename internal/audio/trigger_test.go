package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/GerzaFM/Metronomo-Basico/internal/metronome"
)

func TestMIDITriggerClickMapping(t *testing.T) {
	var sent []midi.Message
	trig := &MIDITrigger{velScale: 1.0}
	trig.send = func(msg midi.Message) error {
		sent = append(sent, msg)
		return nil
	}

	tests := []struct {
		kind     metronome.BeatKind
		key      uint8
		velocity uint8
	}{
		{metronome.BeatAccent, 76, 120},
		{metronome.BeatNormal, 77, 90},
		{metronome.BeatSubdivision, 77, 50},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			sent = sent[:0]
			require.NoError(t, trig.Play(tt.kind))
			require.Len(t, sent, 2, "a click is a note-on/note-off pair")
			assert.Equal(t, midi.NoteOn(midiPercussionChannel, tt.key, tt.velocity), sent[0])
			assert.Equal(t, midi.NoteOff(midiPercussionChannel, tt.key), sent[1])
		})
	}
}

func TestMIDITriggerVolumeScalesVelocity(t *testing.T) {
	var sent []midi.Message
	trig := &MIDITrigger{velScale: 1.0}
	trig.send = func(msg midi.Message) error {
		sent = append(sent, msg)
		return nil
	}

	require.NoError(t, trig.SetVolume(0.5))
	require.NoError(t, trig.Play(metronome.BeatAccent))
	require.Len(t, sent, 2)
	assert.Equal(t, midi.NoteOn(midiPercussionChannel, 76, 60), sent[0])

	// Muting suppresses the click entirely.
	sent = sent[:0]
	require.NoError(t, trig.SetVolume(0))
	require.NoError(t, trig.Play(metronome.BeatAccent))
	assert.Empty(t, sent)
}

func TestMIDITriggerVolumeValidation(t *testing.T) {
	trig := &MIDITrigger{velScale: 1.0}
	assert.Error(t, trig.SetVolume(-0.1))
	assert.Error(t, trig.SetVolume(1.5))
	assert.NoError(t, trig.SetVolume(1.0))
}

func TestMIDITriggerPlayBeforeInitialize(t *testing.T) {
	trig := &MIDITrigger{}
	assert.Error(t, trig.Play(metronome.BeatAccent))
}

func TestScaledVelocity(t *testing.T) {
	assert.Equal(t, uint8(120), scaledVelocity(120, 1.0))
	assert.Equal(t, uint8(60), scaledVelocity(120, 0.5))
	assert.Equal(t, uint8(0), scaledVelocity(120, 0))
	assert.Equal(t, uint8(127), scaledVelocity(127, 1.0))
}

func TestBeepTriggerPlayBeforeInitialize(t *testing.T) {
	trig := NewBeepTrigger(t.TempDir())
	assert.Error(t, trig.Play(metronome.BeatNormal))
}

func TestBeepTriggerVolumeValidation(t *testing.T) {
	trig := NewBeepTrigger(t.TempDir())
	assert.Error(t, trig.SetVolume(-1))
	assert.Error(t, trig.SetVolume(2))
	assert.NoError(t, trig.SetVolume(0.25))
}

func TestBeepTriggerInitializeMissingSamples(t *testing.T) {
	trig := NewBeepTrigger(t.TempDir())
	assert.Error(t, trig.Initialize(), "an empty sounds dir cannot provide the accent sample")
}

func TestBeepTriggerCloseBeforeInitialize(t *testing.T) {
	trig := NewBeepTrigger(t.TempDir())
	assert.NoError(t, trig.Close())
}

func TestDecodeWav(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "click.wav")
	require.NoError(t, os.WriteFile(path, tinyWav(), 0o644))

	buffer, format, err := decodeWav(path)
	require.NoError(t, err)
	assert.Equal(t, 4, buffer.Len())
	assert.EqualValues(t, 8000, format.SampleRate)

	_, _, err = decodeWav(filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)
}

// tinyWav builds a minimal valid 16-bit mono PCM file with four samples.
func tinyWav() []byte {
	samples := []int16{0, 8000, -8000, 0}
	dataLen := len(samples) * 2

	buf := make([]byte, 0, 44+dataLen)
	put32 := func(v uint32) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)} }
	put16 := func(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, put32(uint32(36+dataLen))...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, put32(16)...)          // fmt chunk size
	buf = append(buf, put16(1)...)           // PCM
	buf = append(buf, put16(1)...)           // mono
	buf = append(buf, put32(8000)...)        // sample rate
	buf = append(buf, put32(8000*2)...)      // byte rate
	buf = append(buf, put16(2)...)           // block align
	buf = append(buf, put16(16)...)          // bits per sample
	buf = append(buf, []byte("data")...)
	buf = append(buf, put32(uint32(dataLen))...)
	for _, s := range samples {
		buf = append(buf, put16(uint16(s))...)
	}
	return buf
}
