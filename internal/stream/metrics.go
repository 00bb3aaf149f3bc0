package stream

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "chunkstream"

// Load sources reported on the chunks_loaded_total counter.
const (
	SourceGenerator = "generator"
	SourceSaveCache = "save_cache"
)

// Metrics exposes streaming counters and gauges.
type Metrics struct {
	loaded       *prometheus.CounterVec
	evicted      prometheus.Counter
	saved        prometheus.Counter
	requests     prometheus.Counter
	queueDepth   prometheus.Gauge
	loadedChunks prometheus.Gauge
	dirtyChunks  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chunks_loaded_total",
			Help:      "Chunks inserted into the world store, by grid source.",
		}, []string{"source"}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chunks_evicted_total",
			Help:      "Chunks removed from the world store for leaving the unload radius.",
		}),
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chunks_saved_total",
			Help:      "Modified chunks written to the save cache on eviction.",
		}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "load_requests_total",
			Help:      "Load requests emitted after draining the load queue.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "load_queue_depth",
			Help:      "Coordinates waiting in the load queue.",
		}),
		loadedChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "loaded_chunks",
			Help:      "Chunks currently held in the world store.",
		}),
		dirtyChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dirty_chunks",
			Help:      "Loaded chunks waiting for a remesh.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.loaded, m.evicted, m.saved, m.requests, m.queueDepth, m.loadedChunks, m.dirtyChunks)
	}
	return m
}

func (m *Metrics) observeLoad(source string) {
	if m == nil {
		return
	}
	m.loaded.WithLabelValues(source).Inc()
}

func (m *Metrics) observeEvict(saved bool) {
	if m == nil {
		return
	}
	m.evicted.Inc()
	if saved {
		m.saved.Inc()
	}
}

func (m *Metrics) observeRequests(n int) {
	if m == nil {
		return
	}
	m.requests.Add(float64(n))
}

// ObserveState records the current store, queue and dirty sizes.
func (m *Metrics) ObserveState(loaded, queued, dirty int) {
	if m == nil {
		return
	}
	m.loadedChunks.Set(float64(loaded))
	m.queueDepth.Set(float64(queued))
	m.dirtyChunks.Set(float64(dirty))
}
