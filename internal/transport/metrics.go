// SPDX-License-Identifier: MIT

package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xordon_api_requests_total",
		Help: "Outcome of API transport calls",
	}, []string{
		"method",
		"outcome", // ok|timeout|auth|api_error|bad_response|unavailable
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xordon_api_request_duration_seconds",
		Help:    "Latency of API transport calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	requestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "xordon_api_requests_in_flight",
		Help: "API transport calls currently awaiting a response",
	})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xordon_api_cache_hits_total",
		Help: "GET responses served from the response cache",
	})
)

func observeOutcome(method string, err error) {
	outcome := "ok"
	if err != nil {
		switch {
		case isSentinel(err, ErrTimeout):
			outcome = "timeout"
		case isSentinel(err, ErrAuthRequired):
			outcome = "auth"
		case isSentinel(err, ErrAPI):
			outcome = "api_error"
		case isSentinel(err, ErrBadResponse):
			outcome = "bad_response"
		default:
			outcome = "unavailable"
		}
	}
	requestsTotal.WithLabelValues(method, outcome).Inc()
}
