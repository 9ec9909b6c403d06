// Package metrics records build counters and durations.
//
// Components receive a Recorder by injection; the default NoopRecorder keeps
// one-shot builds free of any metrics overhead, and watch mode swaps in the
// Prometheus recorder when a listen address is configured.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives build lifecycle events.
type Recorder interface {
	// BuildCompleted records one finished build with its outcome status.
	BuildCompleted(status string, duration time.Duration)
}

// NoopRecorder is the default Recorder; every method is a no-op.
type NoopRecorder struct{}

func (NoopRecorder) BuildCompleted(string, time.Duration) {}

// PrometheusRecorder exposes build metrics on a dedicated registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	builds   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewPrometheusRecorder creates a recorder with its own registry so tests
// and repeated watch sessions never fight over default-registry collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	r := &PrometheusRecorder{
		registry: registry,
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursebuilder_builds_total",
			Help: "Completed builds by outcome status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coursebuilder_build_duration_seconds",
			Help:    "Wall-clock duration of completed builds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	registry.MustRegister(r.builds, r.duration)
	return r
}

func (r *PrometheusRecorder) BuildCompleted(status string, duration time.Duration) {
	r.builds.WithLabelValues(status).Inc()
	r.duration.Observe(duration.Seconds())
}

// Handler returns the /metrics HTTP handler for this recorder's registry.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
