package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/popular/internal/github"
)

// Loader outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics holds the server's Prometheus collectors on a private registry.
//
// Metrics collected (with the default namespace):
//   - popular_http_requests_total: requests by route and status
//   - popular_http_request_duration_seconds: request duration by route
//   - popular_loader_calls_total: loader invocations by loader and outcome
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loaderCalls     *prometheus.CounterVec
}

// NewMetrics creates the collectors under namespace, plus the Go runtime
// and process collectors.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		loaderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_calls_total",
			Help:      "Total number of route loader calls by outcome",
		}, []string{"loader", "outcome"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordLoader counts one loader call. A nil result is a failure; an
// empty, non-nil result is a successful fetch with no entries.
func (m *Metrics) RecordLoader(loader string, repos []github.Repo) {
	if m == nil {
		return
	}
	m.loaderCalls.WithLabelValues(loader, LoaderOutcome(repos)).Inc()
}

// LoaderOutcome classifies a loader result.
func LoaderOutcome(repos []github.Repo) string {
	switch {
	case repos == nil:
		return OutcomeError
	case len(repos) == 0:
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}
