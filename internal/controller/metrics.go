package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	staleResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tarifa_stale_responses_total",
		Help: "Page responses dropped because a newer fetch was issued.",
	})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tarifa_fetch_failures_total",
		Help: "Failed fetches by kind (page, filters, stats).",
	}, []string{"kind"})
)
