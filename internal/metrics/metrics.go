// Package metrics holds the Prometheus collectors exported by bjf serve.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by method, route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bjf_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures API response time.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bjf_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// FetchesTotal counts outbound video provider lookups.
	// kind is "title" or "transcript"; outcome is "ok" or "error".
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bjf_video_fetches_total",
			Help: "Total number of title and transcript lookups against video providers",
		},
		[]string{"kind", "outcome"},
	)

	// Nodes tracks the node count of every chart in the served workspace.
	Nodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bjf_chart_nodes",
			Help: "Number of nodes per chart",
		},
		[]string{"chart"},
	)
)

// Outcome maps an error to the outcome label used by FetchesTotal.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
