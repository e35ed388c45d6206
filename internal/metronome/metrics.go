package metronome

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	beatsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metronome_beats_fired_total",
			Help: "Total number of beats fired, by classification",
		},
		[]string{"kind"},
	)

	schedulingOverrunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metronome_scheduling_overruns_total",
			Help: "Total number of scheduling overruns that forced a resync",
		},
	)

	lastOverrunSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "metronome_last_overrun_seconds",
			Help: "Lag behind schedule observed on the most recent overrun",
		},
	)

	triggerFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metronome_trigger_failures_total",
			Help: "Total number of sound trigger failures (beats still fire silently)",
		},
	)

	engineRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "metronome_engine_running",
			Help: "Whether the beat loop is currently running (1) or not (0)",
		},
	)

	engineFaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metronome_engine_faults_total",
			Help: "Total number of internal faults that forced the engine to stop",
		},
	)
)

// EngineMetrics is a point-in-time copy of the engine's internal counters.
// Atomic int64 fields first for 8-byte alignment on 32-bit platforms.
type EngineMetrics struct {
	BeatsFired      int64
	Overruns        int64
	TriggerFailures int64
	Faults          int64

	LastOverrun time.Duration
}

type engineCounters struct {
	beatsFired      int64
	overruns        int64
	triggerFailures int64
	faults          int64
	lastOverrunNs   int64
}

func (c *engineCounters) recordBeat(kind BeatKind) {
	atomic.AddInt64(&c.beatsFired, 1)
	beatsFiredTotal.WithLabelValues(kind.String()).Inc()
}

func (c *engineCounters) recordOverrun(lag time.Duration) {
	atomic.AddInt64(&c.overruns, 1)
	atomic.StoreInt64(&c.lastOverrunNs, int64(lag))
	schedulingOverrunsTotal.Inc()
	lastOverrunSeconds.Set(lag.Seconds())
}

func (c *engineCounters) recordTriggerFailure() {
	atomic.AddInt64(&c.triggerFailures, 1)
	triggerFailuresTotal.Inc()
}

func (c *engineCounters) recordFault() {
	atomic.AddInt64(&c.faults, 1)
	engineFaultsTotal.Inc()
}

func (c *engineCounters) snapshot() EngineMetrics {
	return EngineMetrics{
		BeatsFired:      atomic.LoadInt64(&c.beatsFired),
		Overruns:        atomic.LoadInt64(&c.overruns),
		TriggerFailures: atomic.LoadInt64(&c.triggerFailures),
		Faults:          atomic.LoadInt64(&c.faults),
		LastOverrun:     time.Duration(atomic.LoadInt64(&c.lastOverrunNs)),
	}
}
