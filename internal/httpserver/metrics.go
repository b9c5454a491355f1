package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roundsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mathduel_rounds_resolved_total",
		Help: "Resolved rounds by human outcome",
	}, []string{"outcome"})

	dailyResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mathduel_daily_results_total",
		Help: "Daily challenge results recorded",
	})
)
