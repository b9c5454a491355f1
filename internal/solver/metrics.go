package solver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultFound      = "found"
	resultNone       = "none"
	resultInfeasible = "infeasible"
	resultDeadline   = "deadline"
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mathduel_solver_searches_total",
		Help: "Solver searches by result",
	}, []string{"result"})

	leavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mathduel_solver_leaves_total",
		Help: "Complete candidate expressions examined by the solver",
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mathduel_solver_duration_seconds",
		Help:    "Wall time of a solver search",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	})
)

func observe(result string, leaves int, elapsed time.Duration) {
	searchesTotal.WithLabelValues(result).Inc()
	leavesTotal.Add(float64(leaves))
	searchDuration.Observe(elapsed.Seconds())
}
