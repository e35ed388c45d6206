package metronome

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/GerzaFM/Metronomo-Basico/internal/logging"
)

// Engine produces a steady, drift-corrected sequence of beat events at the
// configured tempo, classifies each tick against the beat pattern, drives the
// sound trigger and notifies observers. Exactly one background goroutine runs
// the beat loop at a time; all control calls may come from any goroutine.
//
// The mutex guards the engine's state and configuration references. It is
// held only for the short critical sections that read or mutate them, never
// across the trigger, observer delivery or the timed sleep, so a pending
// Stop or Pause is observed within a bounded delay rather than after a full
// beat interval.
type Engine struct {
	mu      sync.Mutex
	tempo   TempoConfig
	pattern *BeatPattern
	// pendingPattern is staged by Reconfigure while playing and swapped in
	// at the next measure boundary, never mid-measure.
	pendingPattern *BeatPattern
	state          EngineState

	trigger   SoundTrigger
	observers *ObserverRegistry
	clock     Clock
	logger    zerolog.Logger

	running  int32 // atomic; 1 while the beat loop goroutine is alive
	closed   int32 // atomic; 1 after Close
	stopCh   chan struct{}
	loopDone chan struct{}

	counters engineCounters
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithTempo sets the initial tempo.
func WithTempo(tc TempoConfig) Option {
	return func(e *Engine) { e.tempo = tc }
}

// WithPattern sets the initial beat pattern.
func WithPattern(p *BeatPattern) Option {
	return func(e *Engine) { e.pattern = p.clone() }
}

// WithSoundTrigger injects the audible-output backend.
func WithSoundTrigger(t SoundTrigger) Option {
	return func(e *Engine) { e.trigger = t }
}

// WithClock injects an alternative time source, used by tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger overrides the default component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New constructs a stopped engine at the default tempo (120 BPM, 4/4, no
// subdivisions) with a silent trigger.
func New(opts ...Option) *Engine {
	e := &Engine{
		tempo:   TempoConfig{BPM: DefaultBPM},
		pattern: MustBeatPattern("4/4", 1),
		trigger: NewNullTrigger(),
		clock:   NewRealClock(),
		logger:  logging.GetDefaultLogger().With().Str("component", "beat-engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.observers = NewObserverRegistry(e.logger)
	return e
}

// IsRunning reports whether the beat loop goroutine is alive.
func (e *Engine) IsRunning() bool {
	return atomic.LoadInt32(&e.running) == 1
}

// State returns a consistent snapshot of the engine's run-time state.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Tempo returns the current tempo configuration.
func (e *Engine) Tempo() TempoConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempo
}

// Pattern returns a copy of the current beat pattern.
func (e *Engine) Pattern() *BeatPattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pattern.clone()
}

// Metrics returns a snapshot of the engine's internal counters.
func (e *Engine) Metrics() EngineMetrics {
	return e.counters.snapshot()
}

// Overruns reports how many scheduling overruns the loop has absorbed.
func (e *Engine) Overruns() int64 {
	return e.counters.snapshot().Overruns
}

// RegisterBeatObserver subscribes to fired beats.
func (e *Engine) RegisterBeatObserver(fn BeatObserver) ObserverHandle {
	return e.observers.RegisterBeat(fn)
}

// RegisterStateObserver subscribes to status and configuration changes.
func (e *Engine) RegisterStateObserver(fn StateObserver) ObserverHandle {
	return e.observers.RegisterState(fn)
}

// UnregisterObserver removes a previously registered observer. Idempotent.
func (e *Engine) UnregisterObserver(h ObserverHandle) {
	e.observers.Unregister(h)
}

// Start begins playback from Stopped or resumes from Paused. Resuming keeps
// the current beat and measure; a fresh start resets them to zero and opens
// a new session.
func (e *Engine) Start() error {
	e.mu.Lock()
	// Checked under the mutex so a Close racing this call cannot slip in
	// between the check and the loop spawn.
	if atomic.LoadInt32(&e.closed) == 1 {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	switch e.state.Status {
	case StatusPlaying:
		e.mu.Unlock()
		return ErrAlreadyRunning
	case StatusPaused:
		e.state.Status = StatusPlaying
		e.logger.Info().
			Int("beat", e.state.CurrentBeat).
			Int("measure", e.state.CurrentMeasure).
			Msg("resumed")
	default:
		e.state.resetPosition()
		e.state.Status = StatusPlaying
		e.state.SessionStart = e.clock.Now()
		e.state.LastBeat = time.Time{}
		e.logger.Info().Str("tempo", e.tempo.String()).Str("pattern", e.pattern.String()).Msg("started")
	}
	stopCh := make(chan struct{})
	done := make(chan struct{})
	e.stopCh = stopCh
	e.loopDone = done
	snapshot := e.state
	e.mu.Unlock()

	atomic.StoreInt32(&e.running, 1)
	engineRunning.Set(1)
	go e.run(stopCh, done)

	e.observers.NotifyState(snapshot)
	return nil
}

// Pause parks the loop without resetting counters; only legal while playing.
// By the time Pause returns the loop goroutine has exited and no further
// beat will fire until Start resumes.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if e.state.Status != StatusPlaying {
		e.mu.Unlock()
		return ErrNotRunning
	}
	e.state.Status = StatusPaused
	stopCh := e.stopCh
	done := e.loopDone
	e.mu.Unlock()

	e.haltLoop(stopCh, done)

	e.mu.Lock()
	snapshot := e.state
	e.mu.Unlock()
	e.logger.Info().Int("beat", snapshot.CurrentBeat).Msg("paused")
	e.observers.NotifyState(snapshot)
	return nil
}

// Stop halts playback and rewinds to the top of the first measure. Legal
// from any state and idempotent; the cumulative beat total survives so a
// practice session's statistics outlive individual runs (ResetStats clears
// them). No beat fires after Stop returns.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state.Status == StatusStopped {
		e.mu.Unlock()
		return nil
	}
	wasPlaying := e.state.Status == StatusPlaying
	e.state.Status = StatusStopped
	stopCh := e.stopCh
	done := e.loopDone
	e.mu.Unlock()

	if wasPlaying {
		e.haltLoop(stopCh, done)
	}

	e.mu.Lock()
	e.state.resetPosition()
	e.state.SessionStart = time.Time{}
	e.state.LastBeat = time.Time{}
	if e.pendingPattern != nil {
		e.pattern = e.pendingPattern
		e.pendingPattern = nil
	}
	snapshot := e.state
	e.mu.Unlock()

	e.logger.Info().Msg("stopped")
	e.observers.NotifyState(snapshot)
	return nil
}

// ResetStats zeroes the cumulative beat counter. Kept separate from Stop on
// purpose: stopping a run and wiping session statistics are different acts.
func (e *Engine) ResetStats() {
	e.mu.Lock()
	e.state.TotalBeatsPlayed = 0
	snapshot := e.state
	e.mu.Unlock()
	e.observers.NotifyState(snapshot)
}

// Close stops the engine and releases the sound trigger. The engine cannot
// be restarted afterwards.
func (e *Engine) Close() error {
	if !atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		return nil
	}
	err := e.Stop()
	if cerr := e.trigger.Close(); cerr != nil && err == nil {
		err = cerr
	}
	e.logger.Debug().Msg("engine closed")
	return err
}

// Reconfigure swaps tempo and/or pattern, atomically at the next tick
// boundary. A nil argument leaves that half of the configuration untouched.
// Valid while playing: the tempo applies to the next scheduled beat (never
// retroactively to the beat in flight) and the pattern applies at the next
// measure boundary so accents stay consistent within a measure. On any
// validation failure the prior configuration remains in force.
func (e *Engine) Reconfigure(tempo *TempoConfig, pattern *BeatPattern) error {
	if tempo != nil {
		if tempo.BPM < MinBPM || tempo.BPM > MaxBPM {
			return ErrInvalidConfiguration
		}
	}
	if pattern != nil {
		if pattern.sig.validate() != nil ||
			pattern.subdivisions < minSubdivisions || pattern.subdivisions > maxSubdivisions ||
			len(pattern.accents) != pattern.sig.BeatsPerMeasure {
			return ErrInvalidConfiguration
		}
	}

	e.mu.Lock()
	if tempo != nil {
		e.tempo = *tempo
		e.logger.Info().Str("tempo", tempo.String()).Msg("tempo changed")
	}
	if pattern != nil {
		staged := pattern.clone()
		if e.state.Status == StatusPlaying {
			// The loop owns the swap: it lands at the next measure boundary
			// inside the loop's critical section, so a tick in flight always
			// fires and advances against a single pattern.
			e.pendingPattern = staged
			e.logger.Info().Str("pattern", staged.String()).Msg("pattern staged for next measure")
		} else {
			e.pattern = staged
			e.pendingPattern = nil
			e.state.resetPosition()
			e.logger.Info().Str("pattern", staged.String()).Msg("pattern changed")
		}
	}
	snapshot := e.state
	e.mu.Unlock()

	e.observers.NotifyState(snapshot)
	return nil
}

// TapTempo feeds tap timestamps through the tap-tempo calculation and, when
// at least two taps define a gap, applies the result as the new tempo. The
// derived BPM is returned for display.
func (e *Engine) TapTempo(samples []time.Time) (TempoConfig, bool) {
	tc, ok := TapTempo(samples)
	if !ok {
		return TempoConfig{}, false
	}
	if err := e.Reconfigure(&tc, nil); err != nil {
		return TempoConfig{}, false
	}
	return tc, true
}

// haltLoop signals the loop goroutine and waits for it to exit.
func (e *Engine) haltLoop(stopCh chan struct{}, done chan struct{}) {
	if stopCh == nil {
		return
	}
	close(stopCh)
	if done != nil {
		<-done
	}
}

// run is the drift-compensated beat loop. Scheduling is absolute: the next
// due time advances by the configured interval on a monotonic clock, so the
// per-iteration overhead of sleeping and waking never accumulates into
// tempo drift. When the loop falls behind by more than overrunThreshold it
// resynchronizes to now+interval instead of firing a burst of catch-up
// beats; one audible hiccup beats a machine-gun measure.
func (e *Engine) run(stopCh chan struct{}, done chan struct{}) {
	defer close(done)
	defer func() {
		atomic.StoreInt32(&e.running, 0)
		engineRunning.Set(0)
	}()
	defer func() {
		if rec := recover(); rec != nil {
			e.fault(rec)
		}
	}()

	next := e.clock.Now()
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		e.mu.Lock()
		// Pattern swaps land exactly on the measure boundary.
		if e.pendingPattern != nil && e.state.CurrentClick == 0 {
			e.pattern = e.pendingPattern
			e.pendingPattern = nil
			e.state.CurrentBeat = 0
		}
		pattern := e.pattern
		// The tick interval is the beat interval split across subdivisions.
		interval := e.tempo.Interval() / time.Duration(pattern.Subdivisions())
		next = next.Add(interval)
		now := e.clock.Now()
		if lag := now.Sub(next); lag > 0 {
			if lag > overrunThreshold {
				e.counters.recordOverrun(lag)
				e.logger.Warn().
					Dur("lag", lag).
					Int64("overruns", e.counters.snapshot().Overruns).
					Msg("scheduling overrun, resyncing")
			}
			next = now.Add(interval)
		}
		click := e.state.CurrentClick
		kind := pattern.Classify(click)
		e.mu.Unlock()

		// Trigger first, then observers; neither runs under the lock so a
		// slow callback cannot block control calls.
		if err := e.trigger.Play(kind); err != nil {
			e.counters.recordTriggerFailure()
			e.logger.Error().Err(err).Str("kind", kind.String()).Msg("sound trigger failed, beat stays silent")
		}
		e.counters.recordBeat(kind)

		e.mu.Lock()
		e.state.advance(pattern, now)
		e.mu.Unlock()

		e.observers.NotifyBeat(click, kind)

		sleep := next.Sub(e.clock.Now())
		if sleep <= 0 {
			continue
		}
		timer := e.clock.NewTimer(sleep)
		select {
		case <-timer.C():
		case <-stopCh:
			timer.Stop()
			return
		}
	}
}

// fault handles a panic escaping the loop body: the engine transitions to
// Stopped, the fault is counted and observers are told, and the caller may
// simply Start again.
func (e *Engine) fault(rec interface{}) {
	e.counters.recordFault()
	e.logger.Error().Interface("panic", rec).Msg("engine fault, stopping")

	e.mu.Lock()
	e.state.Status = StatusStopped
	e.state.resetPosition()
	e.state.SessionStart = time.Time{}
	snapshot := e.state
	e.mu.Unlock()

	e.observers.NotifyState(snapshot)
}
