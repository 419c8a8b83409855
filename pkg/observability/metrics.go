package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors of the dashboard core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Fetches          *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	Rebuilds         *prometheus.CounterVec
	SuppressedTicks  prometheus.Counter
	Collisions       prometheus.Counter
	RenderErrors     *prometheus.CounterVec
	SnapshotSegments prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipenet_topology_fetches_total",
				Help: "Topology fetches by outcome (ok, error, discarded).",
			},
			[]string{"outcome"},
		),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipenet_topology_fetch_duration_seconds",
			Help:    "Duration of topology fetches.",
			Buckets: prometheus.DefBuckets,
		}),
		Rebuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipenet_diagram_rebuilds_total",
				Help: "Diagram rebuilds per view.",
			},
			[]string{"view"},
		),
		SuppressedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipenet_refresh_suppressed_total",
			Help: "Timer ticks skipped while the operator inspected a diagram.",
		}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipenet_identifier_collisions_total",
			Help: "Node identifiers shared by distinct point names.",
		}),
		RenderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipenet_render_errors_total",
				Help: "Diagram descriptions rejected by the renderer.",
			},
			[]string{"view"},
		),
		SnapshotSegments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipenet_snapshot_segments",
			Help: "Segments in the current topology snapshot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Fetches,
			m.FetchDuration,
			m.Rebuilds,
			m.SuppressedTicks,
			m.Collisions,
			m.RenderErrors,
			m.SnapshotSegments,
		)
	}
	return m
}

// ObserveFetch records a fetch outcome and its duration in seconds.
func (m *Metrics) ObserveFetch(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(outcome).Inc()
	if outcome != "discarded" {
		m.FetchDuration.Observe(seconds)
	}
}

// ObserveSnapshot records the size of a newly applied snapshot.
func (m *Metrics) ObserveSnapshot(segments int) {
	if m == nil {
		return
	}
	m.SnapshotSegments.Set(float64(segments))
}

// ObserveRebuild records a rebuild of the given view.
func (m *Metrics) ObserveRebuild(view string, renderErr error) {
	if m == nil {
		return
	}
	m.Rebuilds.WithLabelValues(view).Inc()
	if renderErr != nil {
		m.RenderErrors.WithLabelValues(view).Inc()
	}
}

// ObserveCollisions records identifier collisions found in a newly drawn snapshot.
func (m *Metrics) ObserveCollisions(n int) {
	if m == nil {
		return
	}
	m.Collisions.Add(float64(n))
}

// ObserveSuppressed records a tick skipped while the pointer was over a diagram.
func (m *Metrics) ObserveSuppressed() {
	if m == nil {
		return
	}
	m.SuppressedTicks.Inc()
}
