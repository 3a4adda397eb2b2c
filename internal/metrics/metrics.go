/*
Package metrics exposes Prometheus instrumentation for recommendations.

Metrics live in their own registry so tests and multiple services in one
process do not collide on the global default registry.
*/
package metrics

import (
	"net/http"

	"github.com/khanglvm/gift-hub/internal/recommend"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements recommend.Observer.
type Recorder struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     prometheus.Histogram
	bundleSize   prometheus.Histogram
	catalogItems prometheus.Gauge
}

// NewRecorder registers the recommendation metrics plus Go runtime collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gifthub",
			Name:      "recommendations_total",
			Help:      "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gifthub",
			Name:      "recommendation_duration_seconds",
			Help:      "End-to-end recommendation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		bundleSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gifthub",
			Name:      "bundle_items",
			Help:      "Number of items in successful bundles.",
			Buckets:   []float64{1, 2, 3},
		}),
		catalogItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gifthub",
			Name:      "catalog_items",
			Help:      "Items in the loaded catalog.",
		}),
	}

	reg.MustRegister(r.requests, r.duration, r.bundleSize, r.catalogItems,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// Observe records one request outcome.
func (r *Recorder) Observe(o recommend.Outcome) {
	r.requests.WithLabelValues(o.Kind).Inc()
	r.duration.Observe(o.Duration.Seconds())
	if o.Kind == recommend.OutcomeSuccess {
		r.bundleSize.Observe(float64(o.BundleSize))
	}
}

// SetCatalogSize records the catalog size.
func (r *Recorder) SetCatalogSize(n int) {
	r.catalogItems.Set(float64(n))
}

// HistoryStats reports the state of the asynchronous history writer.
type HistoryStats interface {
	Dropped() int64
	QueueLen() int
}

// WatchHistory exports the history queue depth and drop count.
func (r *Recorder) WatchHistory(h HistoryStats) {
	r.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "gifthub",
			Name:      "history_dropped_total",
			Help:      "History events dropped because the queue was full.",
		}, func() float64 { return float64(h.Dropped()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "gifthub",
			Name:      "history_queue_length",
			Help:      "History events waiting to be written.",
		}, func() float64 { return float64(h.QueueLen()) }),
	)
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
