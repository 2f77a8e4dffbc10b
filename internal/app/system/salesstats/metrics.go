package salesstats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratashop_salesstats_refresh_total",
		Help: "Dashboard snapshot refreshes by outcome",
	}, []string{"outcome"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stratashop_salesstats_refresh_duration_seconds",
		Help:    "Time to read inputs and compute a dashboard snapshot",
		Buckets: prometheus.DefBuckets,
	})

	categoryLookups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stratashop_salesstats_category_lookups_total",
		Help: "Category lookups issued while computing snapshots",
	})

	categoryMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stratashop_salesstats_category_misses_total",
		Help: "Category lookups that found no category",
	})
)
