package ebd

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes runtime counters over a caller-supplied prometheus
// registerer. Event and lifecycle counts are collected by subscribing
// to the bus; the transform pipeline reports dirty-set size and
// recalculation latency through the two setters.
type Metrics struct {
	eventsTotal    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	activeEntities prometheus.Gauge
	dirtyEntities  prometheus.Gauge
	recalcSeconds  prometheus.Histogram
}

// NewMetrics registers the collectors and wires the event-driven ones
// into the bus.
func NewMetrics(reg prometheus.Registerer, bus *Bus) *Metrics {
	m := &Metrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atomic",
			Name:      "events_total",
			Help:      "Behavior add/update/remove, entity deactivation and error events pushed through the bus, by event type.",
		}, []string{"type"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atomic",
			Name:      "errors_total",
			Help:      "Error events, by error code.",
		}, []string{"code"}),
		activeEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "atomic",
			Name:      "active_entities",
			Help:      "Currently active entity slots across all partitions.",
		}),
		dirtyEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "atomic",
			Name:      "dirty_entities",
			Help:      "Entities pending transform recalculation.",
		}),
		recalcSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "atomic",
			Name:      "recalculate_seconds",
			Help:      "Wall time of one Recalculate call.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	reg.MustRegister(m.eventsTotal, m.errorsTotal, m.activeEntities, m.dirtyEntities, m.recalcSeconds)

	for _, t := range []EventType{
		EventBehaviorAdded, EventPostBehaviorUpdated, EventPreBehaviorRemoved,
		EventPreEntityDeactivated, EventPostEntityDeactivated,
	} {
		m.countEvents(bus, t)
	}
	bus.Subscribe(EventError, func(e Event) {
		m.eventsTotal.WithLabelValues(string(EventError)).Inc()
		if e.Err != nil {
			m.errorsTotal.WithLabelValues(e.Err.Code).Inc()
		}
	})
	return m
}

func (m *Metrics) countEvents(bus *Bus, t EventType) {
	counter := m.eventsTotal.WithLabelValues(string(t))
	bus.Subscribe(t, func(Event) { counter.Inc() })
}

// SetActiveEntities updates the live entity gauge.
func (m *Metrics) SetActiveEntities(n int) {
	if m != nil {
		m.activeEntities.Set(float64(n))
	}
}

// SetDirtyEntities updates the dirty-set gauge.
func (m *Metrics) SetDirtyEntities(n int) {
	if m != nil {
		m.dirtyEntities.Set(float64(n))
	}
}

// ObserveRecalculate records one Recalculate duration.
func (m *Metrics) ObserveRecalculate(d time.Duration) {
	if m != nil {
		m.recalcSeconds.Observe(d.Seconds())
	}
}
