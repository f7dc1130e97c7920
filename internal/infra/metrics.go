package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide collectors, registered on the default registry and served by
// promhttp at /metrics.
var (
	SalesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jewelshop",
		Name:      "sales_total",
		Help:      "Sale mutations by operation and outcome.",
	}, []string{"op", "outcome"})

	ItemsSold = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jewelshop",
		Name:      "items_sold_total",
		Help:      "Units taken from stock by sales, per material.",
	}, []string{"material"})

	ItemsRestored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jewelshop",
		Name:      "items_restored_total",
		Help:      "Units given back to stock by edited or deleted sales, per material.",
	}, []string{"material"})

	InsufficientStock = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jewelshop",
		Name:      "insufficient_stock_total",
		Help:      "Sale attempts rejected for lack of stock, per material.",
	}, []string{"material"})

	StatsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jewelshop",
		Name:      "stats_cache_lookups_total",
		Help:      "Stats cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jewelshop",
		Name:      "jobs_processed_total",
		Help:      "Background jobs by type and outcome.",
	}, []string{"type", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jewelshop",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
