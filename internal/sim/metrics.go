package sim

import "github.com/prometheus/client_golang/prometheus"

// Metrics records remeshing cost.
type Metrics struct {
	buildSeconds *prometheus.HistogramVec
	quads        *prometheus.CounterVec
	failures     prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg unless reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		buildSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chunkstream",
			Name:      "mesh_build_seconds",
			Help:      "Time spent building one chunk mesh.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"mesher"}),
		quads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunkstream",
			Name:      "mesh_quads_total",
			Help:      "Quads emitted by chunk mesh builds.",
		}, []string{"mesher"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chunkstream",
			Name:      "mesh_failures_total",
			Help:      "Mesh builds or attaches that failed and left the chunk dirty.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.buildSeconds, m.quads, m.failures)
	}
	return m
}

func (m *Metrics) observeBuild(mesher string, seconds float64, quads int) {
	if m == nil {
		return
	}
	m.buildSeconds.WithLabelValues(mesher).Observe(seconds)
	m.quads.WithLabelValues(mesher).Add(float64(quads))
}

func (m *Metrics) observeFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}
