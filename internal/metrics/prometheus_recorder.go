package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	pagesRendered *prom.CounterVec
	pageFailures  *prom.CounterVec
	buildDuration *prom.HistogramVec
	buildResults  *prom.CounterVec
}

// NewPrometheusRecorder creates a recorder registered on its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prom.NewRegistry()

	r := &PrometheusRecorder{
		registry: registry,
		pagesRendered: prom.NewCounterVec(prom.CounterOpts{
			Name: "typdocs_pages_rendered_total",
			Help: "Pages successfully rendered and written, by docs version.",
		}, []string{"version"}),
		pageFailures: prom.NewCounterVec(prom.CounterOpts{
			Name: "typdocs_page_failures_total",
			Help: "Pages that failed to render or write, by docs version.",
		}, []string{"version"}),
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "typdocs_build_duration_seconds",
			Help:    "Duration of a full version conversion.",
			Buckets: prom.DefBuckets,
		}, []string{"version", "success"}),
		buildResults: prom.NewCounterVec(prom.CounterOpts{
			Name: "typdocs_builds_total",
			Help: "Completed version conversions by outcome.",
		}, []string{"success"}),
	}

	registry.MustRegister(r.pagesRendered, r.pageFailures, r.buildDuration, r.buildResults)
	return r
}

func (r *PrometheusRecorder) IncPagesRendered(version string) {
	r.pagesRendered.WithLabelValues(version).Inc()
}

func (r *PrometheusRecorder) IncPageFailures(version string) {
	r.pageFailures.WithLabelValues(version).Inc()
}

func (r *PrometheusRecorder) ObserveBuildDuration(version string, d time.Duration, success bool) {
	r.buildDuration.WithLabelValues(version, boolLabel(success)).Observe(d.Seconds())
}

func (r *PrometheusRecorder) IncBuildResult(success bool) {
	r.buildResults.WithLabelValues(boolLabel(success)).Inc()
}

// HTTPHandler returns an http.Handler serving this recorder's registry.
func (r *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
