package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tarifa_api_requests_total",
		Help: "Requests sent to the tarifa API by endpoint and status code.",
	}, []string{"endpoint", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tarifa_api_request_duration_seconds",
		Help:    "Latency of tarifa API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
