package internal

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reddRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redd_client_requests_total",
		Help: "Total outgoing HTTP requests by method and response status.",
	}, []string{"code", "method"})

	reddRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redd_client_request_duration_seconds",
		Help:    "Outgoing request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Instrument records request counts and latencies for every round trip.
func Instrument(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(reddRequestsTotal,
		promhttp.InstrumentRoundTripperDuration(reddRequestDuration, next))
}
