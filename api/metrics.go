package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/bentobox/interaction"
)

// =============================================================================
// METRICS - Prometheus collectors on a private registry
// =============================================================================

// Metrics implements interaction.Observer and the board persist hook.
type Metrics struct {
	registry *prometheus.Registry

	drops           *prometheus.CounterVec
	resizeMoves     *prometheus.CounterVec
	merges          *prometheus.CounterVec
	persistFailures prometheus.Counter
	encounters      *prometheus.GaugeVec
	lastTick        prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry, so tests can
// build as many as they like.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bentobox",
			Name:      "drops_total",
			Help:      "Drops handled, by payload kind and outcome.",
		}, []string{"kind", "outcome"}),
		resizeMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bentobox",
			Name:      "resize_moves_total",
			Help:      "Resize pointer moves, by whether they wrote the store.",
		}, []string{"wrote"}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bentobox",
			Name:      "merge_choices_total",
			Help:      "Client-group merge decisions, by choice.",
		}, []string{"choice"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bentobox",
			Name:      "persist_failures_total",
			Help:      "Board snapshot writes that failed.",
		}),
		encounters: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bentobox",
			Name:      "encounters",
			Help:      "Scheduled encounters by derived status at the last tick.",
		}, []string{"status"}),
		lastTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bentobox",
			Name:      "status_tick_timestamp_seconds",
			Help:      "Unix time of the last status recomputation.",
		}),
	}
	m.registry.MustRegister(
		m.drops, m.resizeMoves, m.merges, m.persistFailures, m.encounters, m.lastTick,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) DropHandled(kind interaction.PayloadKind, outcome interaction.Outcome) {
	m.drops.WithLabelValues(string(kind), string(outcome)).Inc()
}

func (m *Metrics) ResizeApplied(wrote bool) {
	m.resizeMoves.WithLabelValues(strconv.FormatBool(wrote)).Inc()
}

func (m *Metrics) MergeResolved(choice interaction.MergeChoice) {
	m.merges.WithLabelValues(string(choice)).Inc()
}

// PersistFailed matches bento.WithPersistHook.
func (m *Metrics) PersistFailed(error) {
	m.persistFailures.Inc()
}

// observeStatus publishes a tick's summary.
func (m *Metrics) observeStatus(r TickReport) {
	for s, n := range r.Summary {
		m.encounters.WithLabelValues(string(s)).Set(float64(n))
	}
	m.lastTick.Set(float64(r.At.Unix()))
}

var _ interaction.Observer = (*Metrics)(nil)
