package httpapi

import (
	"net/http"

	"ancientdna/internal/core"
)

// New assembles the full HTTP surface: the sample API plus /metrics, wrapped
// in CORS, request logging, and metrics collection.
func New(service *core.Service, opts ...Option) http.Handler {
	handler := NewHandler(service, opts...)
	m := newMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.handler())
	mux.Handle("/", handler)

	return withCORS(instrument(handler.logger, m, mux))
}
