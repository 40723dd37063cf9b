package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/skillswap/internal/metrics"
)

// Metrics returns an HTTP middleware that records request counts and
// durations in Prometheus.
//
// ROUTE PATTERN, NOT PATH:
// Labelling by r.URL.Path would create one time series per swap id
// (/api/swaps/abc/accept, /api/swaps/def/accept, ...). chi knows which
// pattern matched (/api/swaps/{id}/accept), but only after routing, so we
// read it once the handler has returned.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		metrics.ObserveRequest(r.Method, route, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}
