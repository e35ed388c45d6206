package console

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gosuri/uilive"
	"github.com/rs/zerolog"

	"github.com/GerzaFM/Metronomo-Basico/internal/logging"
	"github.com/GerzaFM/Metronomo-Basico/internal/metronome"
)

// Display renders a single live-updating status line for the metronome.
// Observer callbacks only enqueue onto a buffered channel; the actual
// terminal writes happen on the display's own goroutine so the beat loop is
// never blocked on terminal I/O.
type Display struct {
	engine *metronome.Engine
	writer *uilive.Writer
	logger zerolog.Logger

	updates chan struct{}
	done    chan struct{}
	once    sync.Once

	beatHandle  metronome.ObserverHandle
	stateHandle metronome.ObserverHandle
}

// NewDisplay attaches a live status line to the engine.
func NewDisplay(engine *metronome.Engine) *Display {
	return &Display{
		engine:  engine,
		writer:  uilive.New(),
		logger:  logging.GetDefaultLogger().With().Str("component", "display").Logger(),
		updates: make(chan struct{}, 16),
		done:    make(chan struct{}),
	}
}

// Start registers the display's observers and begins rendering.
func (d *Display) Start() {
	d.beatHandle = d.engine.RegisterBeatObserver(func(int, metronome.BeatKind) {
		d.enqueue()
	})
	d.stateHandle = d.engine.RegisterStateObserver(func(metronome.EngineState) {
		d.enqueue()
	})
	d.writer.Start()
	go d.loop()
	d.enqueue()
}

func (d *Display) enqueue() {
	select {
	case d.updates <- struct{}{}:
	default:
		// A stale frame is fine; the next one carries the current state.
	}
}

func (d *Display) loop() {
	for {
		select {
		case <-d.updates:
			d.render()
		case <-d.done:
			return
		}
	}
}

func (d *Display) render() {
	state := d.engine.State()
	tempo := d.engine.Tempo()
	pattern := d.engine.Pattern()
	fmt.Fprintln(d.writer, RenderLine(state, tempo, pattern))
	if err := d.writer.Flush(); err != nil {
		d.logger.Debug().Err(err).Msg("display flush failed")
	}
}

// Stop detaches the display and stops its goroutine.
func (d *Display) Stop() {
	d.once.Do(func() {
		d.engine.UnregisterObserver(d.beatHandle)
		d.engine.UnregisterObserver(d.stateHandle)
		close(d.done)
		d.writer.Stop()
	})
}

// RenderLine formats one status line, e.g.
//
//	▶ 4/4 x2  measure 12  ● ○ ○ ○  120 BPM (Allegro)  [beats: 186]
//
// The filled dot marks the current beat; an accented current beat renders
// double-width.
func RenderLine(state metronome.EngineState, tempo metronome.TempoConfig, pattern *metronome.BeatPattern) string {
	var b strings.Builder

	switch state.Status {
	case metronome.StatusPlaying:
		b.WriteString("▶ ")
	case metronome.StatusPaused:
		b.WriteString("⏸ ")
	default:
		b.WriteString("■ ")
	}

	fmt.Fprintf(&b, "%s  measure %d  ", pattern, state.CurrentMeasure+1)

	accents := pattern.Accents()
	for beat := 0; beat < pattern.TimeSignature().BeatsPerMeasure; beat++ {
		marker := "○"
		if beat == state.CurrentBeat && !state.IsStopped() {
			marker = "●"
			if accents[beat] {
				marker = "◉"
			}
		}
		b.WriteString(marker)
		b.WriteString(" ")
	}

	fmt.Fprintf(&b, " %s  [beats: %d]", tempo, state.TotalBeatsPlayed)
	return b.String()
}
