// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query results recorded on ProximityQueries.
const (
	ResultOK                  = "ok"
	ResultLocationUnavailable = "location_unavailable"
	ResultPoolError           = "pool_error"
	ResultInvalid             = "invalid"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ProximityQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proximity_queries_total",
		Help: "Nearby queries by outcome.",
	}, []string{"result"})

	ProximityCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proximity_candidates_returned",
		Help:    "Candidates returned per nearby query.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
	})

	ProximityPoolSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proximity_pool_size",
		Help:    "Raw candidate pool size fetched per query.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	RadarSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "radar_sessions_active",
		Help: "Open radar WebSocket sessions.",
	})
)
