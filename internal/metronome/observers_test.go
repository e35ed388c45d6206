package metronome

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *ObserverRegistry {
	return NewObserverRegistry(zerolog.Nop())
}

func TestObserverRegistrationOrder(t *testing.T) {
	r := newTestRegistry()
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		r.RegisterBeat(func(int, BeatKind) {
			order = append(order, i)
		})
	}
	r.NotifyBeat(0, BeatAccent)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestObserverUnregister(t *testing.T) {
	r := newTestRegistry()
	var aCalls, bCalls int

	ha := r.RegisterBeat(func(int, BeatKind) { aCalls++ })
	r.RegisterBeat(func(int, BeatKind) { bCalls++ })
	require.Equal(t, 2, r.Len())

	r.NotifyBeat(0, BeatNormal)
	r.Unregister(ha)
	r.NotifyBeat(1, BeatNormal)

	assert.Equal(t, 1, aCalls)
	assert.Equal(t, 2, bCalls)
	assert.Equal(t, 1, r.Len())

	// Removing the same handle again is a harmless no-op.
	r.Unregister(ha)
	assert.Equal(t, 1, r.Len())
}

func TestObserverUnregisterState(t *testing.T) {
	r := newTestRegistry()
	var calls int

	h := r.RegisterState(func(EngineState) { calls++ })
	r.NotifyState(EngineState{Status: StatusPlaying})
	r.Unregister(h)
	r.NotifyState(EngineState{Status: StatusStopped})

	assert.Equal(t, 1, calls)
	assert.Zero(t, r.Len())
}

func TestObserverPanicDoesNotStopDelivery(t *testing.T) {
	r := newTestRegistry()
	var delivered []int

	r.RegisterBeat(func(click int, _ BeatKind) {
		panic("observer bug")
	})
	r.RegisterBeat(func(click int, _ BeatKind) {
		delivered = append(delivered, click)
	})

	assert.NotPanics(t, func() {
		r.NotifyBeat(7, BeatAccent)
	})
	assert.Equal(t, []int{7}, delivered)

	r.RegisterState(func(EngineState) { panic("state observer bug") })
	assert.NotPanics(t, func() {
		r.NotifyState(EngineState{})
	})
}

func TestObserverConcurrentRegistration(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup

	// Registrations, removals and notifications race freely; the registry
	// must stay consistent throughout.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h := r.RegisterBeat(func(int, BeatKind) {})
				r.NotifyBeat(j, BeatNormal)
				r.Unregister(h)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, r.Len())
}

func TestObserverNotifyWithNoObservers(t *testing.T) {
	r := newTestRegistry()
	assert.NotPanics(t, func() {
		r.NotifyBeat(0, BeatAccent)
		r.NotifyState(EngineState{})
	})
}
