package console

import (
	"time"

	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog"

	"github.com/GerzaFM/Metronomo-Basico/internal/logging"
	"github.com/GerzaFM/Metronomo-Basico/internal/metronome"
)

// KeyLoop drives the engine from the keyboard:
//
//	space        pause / resume
//	s            stop (position rewinds, beat total survives)
//	t            tap tempo
//	+ / -        nudge BPM by 5
//	1..4         set subdivisions
//	q, ctrl-c    quit
type KeyLoop struct {
	engine *metronome.Engine
	logger zerolog.Logger
	taps   TapBuffer
	now    func() time.Time
}

// NewKeyLoop builds the interactive control loop for the engine.
func NewKeyLoop(engine *metronome.Engine) *KeyLoop {
	return &KeyLoop{
		engine: engine,
		logger: logging.GetDefaultLogger().With().Str("component", "key-loop").Logger(),
		now:    time.Now,
	}
}

// Run blocks reading keys until the user quits or the keyboard fails.
func (k *KeyLoop) Run() error {
	if err := keyboard.Open(); err != nil {
		return err
	}
	defer keyboard.Close()

	for {
		char, key, err := keyboard.GetKey()
		if err != nil {
			return err
		}
		if key == keyboard.KeyCtrlC || char == 'q' {
			return nil
		}
		k.handle(char, key)
	}
}

func (k *KeyLoop) handle(char rune, key keyboard.Key) {
	switch {
	case key == keyboard.KeySpace:
		k.togglePause()
	case char == 's':
		if err := k.engine.Stop(); err != nil {
			k.logger.Warn().Err(err).Msg("stop failed")
		}
	case char == 't':
		k.tap()
	case char == '+' || char == '=':
		k.nudge(5)
	case char == '-':
		k.nudge(-5)
	case char >= '1' && char <= '4':
		k.setSubdivisions(int(char - '0'))
	}
}

func (k *KeyLoop) togglePause() {
	if k.engine.State().IsPlaying() {
		if err := k.engine.Pause(); err != nil {
			k.logger.Warn().Err(err).Msg("pause failed")
		}
		return
	}
	if err := k.engine.Start(); err != nil {
		k.logger.Warn().Err(err).Msg("start failed")
	}
}

func (k *KeyLoop) tap() {
	k.taps.Add(k.now())
	if tc, ok := k.engine.TapTempo(k.taps.Samples()); ok {
		k.logger.Info().Int("bpm", tc.BPM).Msg("tap tempo applied")
	}
}

func (k *KeyLoop) nudge(delta int) {
	tc := k.engine.Tempo().AdjustBPM(delta)
	if err := k.engine.Reconfigure(&tc, nil); err != nil {
		k.logger.Warn().Err(err).Msg("tempo change rejected")
	}
}

func (k *KeyLoop) setSubdivisions(n int) {
	pattern := k.engine.Pattern()
	if err := pattern.SetSubdivisions(n); err != nil {
		k.logger.Warn().Err(err).Msg("subdivision change rejected")
		return
	}
	if err := k.engine.Reconfigure(nil, pattern); err != nil {
		k.logger.Warn().Err(err).Msg("pattern change rejected")
	}
}
