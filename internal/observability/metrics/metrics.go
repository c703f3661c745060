// Package metrics registers the service's prometheus instruments on the
// default registry; the server exposes them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chargesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donare_charges_total",
		Help: "Processed charge requests by outcome.",
	}, []string{"status"})

	explanationCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donare_explanation_cache_total",
		Help: "Explanation cache lookups by result.",
	}, []string{"cache", "result"})

	schedulerRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "donare_scheduler_runs_total",
		Help: "Completed billing scheduler due-checks.",
	})

	billingOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donare_billing_outcomes_total",
		Help: "Recurring billing attempts by outcome.",
	}, []string{"status"})
)

func IncCharge(status string) {
	chargesTotal.WithLabelValues(status).Inc()
}

func IncCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	explanationCacheTotal.WithLabelValues(cache, result).Inc()
}

func IncSchedulerRun() {
	schedulerRunsTotal.Inc()
}

func IncBillingOutcome(status string) {
	billingOutcomesTotal.WithLabelValues(status).Inc()
}
