// Package metrics defines the Prometheus instrumentation for the hotload
// engine. All Set methods are safe on a nil receiver so instrumentation
// stays optional.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hotwatch"

type Set struct {
	watchesActive   prometheus.Gauge
	reloadsTotal    *prometheus.CounterVec
	rawEventsTotal  prometheus.Counter
	wakeupsTotal    prometheus.Counter
	recoveriesTotal prometheus.Counter
	loopFailures    prometheus.Counter
}

// New registers the engine collectors with registerer and returns the set.
func New(registerer prometheus.Registerer) *Set {
	factory := promauto.With(registerer)
	return &Set{
		watchesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watches_active",
			Help:      "Number of live low-level watches.",
		}),
		reloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Reload callbacks fired, by reason.",
		}, []string{"reason"}),
		rawEventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_events_total",
			Help:      "Raw notification events drained from the source.",
		}),
		wakeupsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wakeups_total",
			Help:      "Event loop wake-ups that carried at least one event.",
		}),
		recoveriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recoveries_total",
			Help:      "Watches re-established after the file reappeared.",
		}),
		loopFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_failures_total",
			Help:      "Unrecoverable notification source failures.",
		}),
	}
}

func (set *Set) SetWatchesActive(count int) {
	if set == nil {
		return
	}
	set.watchesActive.Set(float64(count))
}

func (set *Set) IncReloads(reason string, count int) {
	if set == nil || count <= 0 {
		return
	}
	set.reloadsTotal.WithLabelValues(reason).Add(float64(count))
}

func (set *Set) AddRawEvents(count int) {
	if set == nil || count <= 0 {
		return
	}
	set.rawEventsTotal.Add(float64(count))
}

func (set *Set) IncWakeups() {
	if set == nil {
		return
	}
	set.wakeupsTotal.Inc()
}

func (set *Set) IncRecoveries() {
	if set == nil {
		return
	}
	set.recoveriesTotal.Inc()
}

func (set *Set) IncLoopFailures() {
	if set == nil {
		return
	}
	set.loopFailures.Inc()
}
