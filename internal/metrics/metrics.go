// Package metrics holds the Prometheus collectors for the API server.
//
// Collectors are registered once, on the default registry, when the
// package is loaded. /metrics serves them through Handler.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_requests_total",
		Help: "Total HTTP requests by method, route, and response status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillswap_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	swapTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_swap_transitions_total",
		Help: "Committed swap request status changes. An empty from is a new request.",
	}, []string{"from", "to"})

	ratingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_ratings_total",
		Help: "Ratings recorded on completed swaps, by star value.",
	}, []string{"stars"})
)

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route, status string, seconds float64) {
	requestsTotal.WithLabelValues(method, route, status).Inc()
	requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// SwapTransitions counts ledger status changes. It satisfies
// service.TransitionObserver.
type SwapTransitions struct{}

// ObserveTransition increments the from→to counter.
func (SwapTransitions) ObserveTransition(from, to string) {
	swapTransitionsTotal.WithLabelValues(from, to).Inc()
}

// Ratings counts ratings by star value. It satisfies
// service.RatingObserver.
type Ratings struct{}

// ObserveRating increments the counter for stars.
func (Ratings) ObserveRating(stars int) {
	ratingsTotal.WithLabelValues(strconv.Itoa(stars)).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
