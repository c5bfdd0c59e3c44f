package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cdgcview_requests_total",
		Help: "Requests sent to the catalog service, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cdgcview_request_duration_seconds",
		Help:    "Round-trip time of catalog service requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Responses that arrived after a newer request from the same view and
	// were dropped.
	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cdgcview_stale_responses_total",
		Help: "Responses discarded because a newer request superseded them",
	}, []string{"view"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
