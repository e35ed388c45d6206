package metronome

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BeatObserver receives every fired beat: the tick index within the measure
// and its classification. Observers run synchronously on the beat loop's
// goroutine in registration order; a host UI must marshal onto its own
// thread itself. A panicking observer is logged and skipped, never allowed
// to kill the loop. Observers must not call Stop or Pause directly: both
// wait for the loop goroutine the observer is running on.
type BeatObserver func(click int, kind BeatKind)

// StateObserver receives a state snapshot whenever the engine's status or
// configuration changes.
type StateObserver func(state EngineState)

// ObserverHandle identifies a registration for later removal.
type ObserverHandle uuid.UUID

type beatEntry struct {
	id uuid.UUID
	fn BeatObserver
}

type stateEntry struct {
	id uuid.UUID
	fn StateObserver
}

// ObserverRegistry is a thread-safe, insertion-ordered collection of beat and
// state observers. Registration and removal are safe while the beat loop is
// running; notification iterates over a copied slice so a concurrent
// unregister never perturbs an in-flight delivery.
type ObserverRegistry struct {
	mu     sync.RWMutex
	beats  []beatEntry
	states []stateEntry
	logger zerolog.Logger
}

func NewObserverRegistry(logger zerolog.Logger) *ObserverRegistry {
	return &ObserverRegistry{
		logger: logger.With().Str("component", "observer-registry").Logger(),
	}
}

// RegisterBeat adds a beat observer and returns its removal handle.
func (r *ObserverRegistry) RegisterBeat(fn BeatObserver) ObserverHandle {
	id := uuid.New()
	r.mu.Lock()
	r.beats = append(r.beats, beatEntry{id: id, fn: fn})
	r.mu.Unlock()
	return ObserverHandle(id)
}

// RegisterState adds a state observer and returns its removal handle.
func (r *ObserverRegistry) RegisterState(fn StateObserver) ObserverHandle {
	id := uuid.New()
	r.mu.Lock()
	r.states = append(r.states, stateEntry{id: id, fn: fn})
	r.mu.Unlock()
	return ObserverHandle(id)
}

// Unregister removes the observer registered under the handle. Removing an
// unknown or already-removed handle is a no-op.
func (r *ObserverRegistry) Unregister(h ObserverHandle) {
	id := uuid.UUID(h)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.beats {
		if e.id == id {
			r.beats = append(r.beats[:i], r.beats[i+1:]...)
			return
		}
	}
	for i, e := range r.states {
		if e.id == id {
			r.states = append(r.states[:i], r.states[i+1:]...)
			return
		}
	}
}

// Len reports the number of registered observers of both kinds.
func (r *ObserverRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.beats) + len(r.states)
}

// NotifyBeat delivers a beat to every registered beat observer in
// registration order.
func (r *ObserverRegistry) NotifyBeat(click int, kind BeatKind) {
	r.mu.RLock()
	entries := append([]beatEntry(nil), r.beats...)
	r.mu.RUnlock()

	for _, e := range entries {
		r.invokeBeat(e, click, kind)
	}
}

func (r *ObserverRegistry) invokeBeat(e beatEntry, click int, kind BeatKind) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Interface("panic", rec).
				Int("click", click).
				Str("kind", kind.String()).
				Msg("beat observer panicked")
		}
	}()
	e.fn(click, kind)
}

// NotifyState delivers a state snapshot to every registered state observer
// in registration order.
func (r *ObserverRegistry) NotifyState(state EngineState) {
	r.mu.RLock()
	entries := append([]stateEntry(nil), r.states...)
	r.mu.RUnlock()

	for _, e := range entries {
		r.invokeState(e, state)
	}
}

func (r *ObserverRegistry) invokeState(e stateEntry, state EngineState) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Interface("panic", rec).
				Str("status", state.Status.String()).
				Msg("state observer panicked")
		}
	}()
	e.fn(state)
}
