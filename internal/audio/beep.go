package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog"

	"github.com/GerzaFM/Metronomo-Basico/internal/logging"
	"github.com/GerzaFM/Metronomo-Basico/internal/metronome"
)

// sampleFiles maps each click kind to the wav file expected under the
// sounds directory. The subdivision sample is optional and falls back to
// the normal click.
var sampleFiles = map[metronome.BeatKind]string{
	metronome.BeatAccent:      "accent.wav",
	metronome.BeatNormal:      "normal.wav",
	metronome.BeatSubdivision: "subdivision.wav",
}

// The speaker owns the audio device for the whole process, so it is
// initialized at most once even if several triggers come and go.
var (
	speakerOnce sync.Once
	speakerErr  error
)

// BeepTrigger plays pre-buffered wav samples through the default audio
// device. Samples are decoded fully into memory during Initialize so that
// Play stays allocation-free and bounded.
type BeepTrigger struct {
	dir    string
	logger zerolog.Logger

	mu      sync.Mutex
	volume  float64
	ready   bool
	buffers map[metronome.BeatKind]*beep.Buffer
}

// NewBeepTrigger returns a trigger that loads its click samples from dir.
func NewBeepTrigger(dir string) *BeepTrigger {
	return &BeepTrigger{
		dir:    dir,
		volume: 1.0,
		logger: logging.GetDefaultLogger().With().Str("component", "audio-beep").Logger(),
	}
}

// Initialize decodes the click samples and opens the speaker. The accent
// and normal samples are required, the subdivision sample is optional.
func (t *BeepTrigger) Initialize() error {
	buffers := make(map[metronome.BeatKind]*beep.Buffer, len(sampleFiles))
	var format beep.Format

	for _, kind := range []metronome.BeatKind{metronome.BeatAccent, metronome.BeatNormal} {
		buffer, f, err := decodeWav(filepath.Join(t.dir, sampleFiles[kind]))
		if err != nil {
			return fmt.Errorf("loading %s sample: %w", kind, err)
		}
		buffers[kind] = buffer
		format = f
	}

	buffer, _, err := decodeWav(filepath.Join(t.dir, sampleFiles[metronome.BeatSubdivision]))
	if err != nil {
		t.logger.Debug().Err(err).Msg("no subdivision sample, reusing the normal click")
		buffer = buffers[metronome.BeatNormal]
	}
	buffers[metronome.BeatSubdivision] = buffer

	speakerOnce.Do(func() {
		speakerErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("opening speaker: %w", speakerErr)
	}

	t.mu.Lock()
	t.buffers = buffers
	t.ready = true
	t.mu.Unlock()

	t.logger.Info().Str("dir", t.dir).Msg("wav samples loaded")
	return nil
}

// Play fires the sample for the given click kind and returns without
// waiting for it to finish.
func (t *BeepTrigger) Play(kind metronome.BeatKind) error {
	t.mu.Lock()
	ready, volume := t.ready, t.volume
	buffer := t.buffers[kind]
	t.mu.Unlock()

	if !ready || buffer == nil {
		return fmt.Errorf("beep trigger not initialized")
	}
	if volume <= 0 {
		return nil
	}

	shot := buffer.Streamer(0, buffer.Len())
	speaker.Play(&effects.Volume{
		Streamer: shot,
		Base:     2,
		Volume:   math.Log2(volume),
	})
	return nil
}

// SetVolume accepts a linear volume between 0 (mute) and 1.
func (t *BeepTrigger) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume %v out of range [0, 1]", volume)
	}
	t.mu.Lock()
	t.volume = volume
	t.mu.Unlock()
	return nil
}

// Close silences any click still ringing. The speaker itself stays open
// for the life of the process.
func (t *BeepTrigger) Close() error {
	t.mu.Lock()
	ready := t.ready
	t.ready = false
	t.mu.Unlock()

	if ready {
		speaker.Clear()
	}
	return nil
}

func decodeWav(path string) (*beep.Buffer, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, format, nil
}
