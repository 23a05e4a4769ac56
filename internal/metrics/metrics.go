// Package metrics exposes the simulation's Prometheus instrumentation,
// adapted from the teacher's pkg/server/metrics.go struct-of-vectors-plus-
// registry pattern and repointed at simulation concerns (tick duration,
// commands/effects/signals throughput, cascade depth) instead of HTTP/
// WebSocket traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the runtime records against.
type Metrics struct {
	tickDuration      prometheus.Histogram
	subsystemDuration *prometheus.HistogramVec
	commandsApplied   *prometheus.CounterVec
	effectsRecorded   prometheus.Counter
	signalsDelivered  *prometheus.CounterVec
	cascadeIterations prometheus.Histogram
	entitiesAlive     *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates and registers every collector.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronicle_tick_duration_seconds",
			Help:    "Wall-clock duration of one full scheduler tick.",
			Buckets: prometheus.DefBuckets,
		}),
		subsystemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chronicle_subsystem_duration_seconds",
			Help:    "Duration of one subsystem's Update call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"subsystem"}),
		commandsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chronicle_commands_applied_total",
			Help: "Commands drained and applied by kind.",
		}, []string{"kind"}),
		effectsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronicle_effects_recorded_total",
			Help: "Audit-trail EventEffect records written.",
		}),
		signalsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chronicle_signals_delivered_total",
			Help: "Signals delivered to HandleSignals by kind.",
		}, []string{"kind"}),
		cascadeIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronicle_reaction_cascade_iterations",
			Help:    "Number of Reactions-loop iterations run per tick.",
			Buckets: prometheus.LinearBuckets(0, 1, 9),
		}),
		entitiesAlive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chronicle_entities_alive",
			Help: "Living entity count by kind, sampled at tick boundaries.",
		}, []string{"kind"}),
		registry: registry,
	}

	registry.MustRegister(
		m.tickDuration,
		m.subsystemDuration,
		m.commandsApplied,
		m.effectsRecorded,
		m.signalsDelivered,
		m.cascadeIterations,
		m.entitiesAlive,
	)

	return m
}

// Handler returns an HTTP handler for exposing metrics, for runs wired to
// an optional debug/metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTick records one tick's wall-clock duration.
func (m *Metrics) ObserveTick(seconds float64) {
	m.tickDuration.Observe(seconds)
}

// ObserveSubsystem records one subsystem Update call's duration.
func (m *Metrics) ObserveSubsystem(name string, seconds float64) {
	m.subsystemDuration.WithLabelValues(name).Observe(seconds)
}

// RecordCommandApplied increments the applied-command counter for kind.
func (m *Metrics) RecordCommandApplied(kind string) {
	m.commandsApplied.WithLabelValues(kind).Inc()
}

// RecordEffects increments the effects-recorded counter by n.
func (m *Metrics) RecordEffects(n int) {
	m.effectsRecorded.Add(float64(n))
}

// RecordSignalDelivered increments the delivered-signal counter for kind.
func (m *Metrics) RecordSignalDelivered(kind string) {
	m.signalsDelivered.WithLabelValues(kind).Inc()
}

// ObserveCascadeIterations records how many Reactions-loop passes one tick
// took before the signal buffer drained (or the cap was hit).
func (m *Metrics) ObserveCascadeIterations(n int) {
	m.cascadeIterations.Observe(float64(n))
}

// SetEntitiesAlive sets the living-entity gauge for kind.
func (m *Metrics) SetEntitiesAlive(kind string, count int) {
	m.entitiesAlive.WithLabelValues(kind).Set(float64(count))
}
