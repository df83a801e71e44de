// Package metrics records Prometheus metrics for document generation and
// mind-map expansion.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives measurements from the pipeline and the expander.
type Recorder interface {
	// ObserveArtifact records one generated artifact. kind is rules, protocol
	// or component.
	ObserveArtifact(kind string, success bool, duration time.Duration)
	// ObserveCompletion records one model completion call.
	ObserveCompletion(provider string, success bool, duration time.Duration)
	// ObserveCache records a completion cache lookup.
	ObserveCache(hit bool)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveArtifact(string, bool, time.Duration)   {}
func (Nop) ObserveCompletion(string, bool, time.Duration) {}
func (Nop) ObserveCache(bool)                             {}

// PrometheusRecorder implements Recorder on its own registry so several
// instances can coexist in one process.
type PrometheusRecorder struct {
	registry           *prometheus.Registry
	artifactsTotal     *prometheus.CounterVec
	artifactDuration   *prometheus.HistogramVec
	completionsTotal   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	cacheLookups       *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder with Go runtime and process
// collectors already registered.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		artifactsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_artifacts_total",
				Help: "Total number of generated artifacts by kind and status",
			},
			[]string{"kind", "status"},
		),
		artifactDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blueprint_artifact_duration_seconds",
				Help:    "Time spent generating one artifact",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"kind"},
		),
		completionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_completions_total",
				Help: "Total number of model completion calls by provider and status",
			},
			[]string{"provider", "status"},
		),
		completionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blueprint_completion_duration_seconds",
				Help:    "Duration of model completion calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_completion_cache_lookups_total",
				Help: "Completion cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

func (p *PrometheusRecorder) ObserveArtifact(kind string, success bool, duration time.Duration) {
	p.artifactsTotal.WithLabelValues(kind, status(success)).Inc()
	p.artifactDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveCompletion(provider string, success bool, duration time.Duration) {
	p.completionsTotal.WithLabelValues(provider, status(success)).Inc()
	p.completionDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

// Gatherer exposes the underlying registry.
func (p *PrometheusRecorder) Gatherer() prometheus.Gatherer {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
