package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch result labels.
const (
	ResultDone   = "done"
	ResultCached = "cached"
	ResultError  = "error"
)

// Metrics collects counters for fetch, download and hook activity. A nil
// *Metrics is a valid no-op collector, so components never need to guard
// their instrumentation.
type Metrics struct {
	fetches   *prometheus.CounterVec
	downloads *prometheus.CounterVec
	hooks     *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "depsync",
				Name:      "fetches_total",
				Help:      "Total number of dependency fetch operations",
			},
			[]string{"kind", "result"},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "depsync",
				Name:      "downloads_total",
				Help:      "Total number of package downloads",
			},
			[]string{"result"},
		),
		hooks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "depsync",
				Name:      "hooks_total",
				Help:      "Total number of executed hooks",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(m.fetches, m.downloads, m.hooks)
	return m
}

// RecordFetch counts one fetch operation of the given kind
// (source/package) and result.
func (m *Metrics) RecordFetch(kind, result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(kind, result).Inc()
}

// RecordDownload counts one package download attempt.
func (m *Metrics) RecordDownload(result string) {
	if m == nil {
		return
	}
	m.downloads.WithLabelValues(result).Inc()
}

// RecordHook counts one executed hook.
func (m *Metrics) RecordHook(result string) {
	if m == nil {
		return
	}
	m.hooks.WithLabelValues(result).Inc()
}

// Handler returns an HTTP handler exposing the registry, for the
// optional --metrics-addr debug endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
