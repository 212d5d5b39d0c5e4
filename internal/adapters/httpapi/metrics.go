package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the request counters exposed on /metrics. Each router owns
// its registry so tests never collide on registration.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ancientdna_http_requests_total",
			Help: "HTTP requests processed, partitioned by route, method, and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ancientdna_http_request_duration_seconds",
			Help:    "HTTP request latency, partitioned by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// knownRoutes bounds label cardinality; anything else is reported as "other".
var knownRoutes = map[string]struct{}{
	"/":                  {},
	"/upload-csv":        {},
	"/upload-json":       {},
	"/add-sample":        {},
	"/generate-sequence": {},
	"/compare-sequences": {},
	"/list-samples":      {},
	"/ask-me-anything":   {},
	"/healthz":           {},
	"/metrics":           {},
}

func routeLabel(path string) string {
	if path != "/" {
		path = trimTrailingSlash(path)
	}
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return "other"
}

func trimTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
