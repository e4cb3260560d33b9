// Package metrics exposes Prometheus collectors for a route search run:
// expansion duration, routes processed, and routecache hit/miss.
// Collectors are promauto-registered at package level; no per-call setup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpandDuration tracks how long one Calc.Expand call takes.
	ExpandDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wayfarer_expand_duration_seconds",
		Help:    "Duration of one hop-expansion call.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
	})

	// RoutesExpanded counts input routes processed across all expansions.
	RoutesExpanded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_routes_expanded_total",
		Help: "Total frontier routes processed by the hop expander.",
	})

	// RoutesRetained tracks the size of the best-per-destination frontier
	// an expansion returns.
	RoutesRetained = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wayfarer_routes_retained",
		Help: "Number of routes kept in the most recent expansion's frontier.",
	})

	// RouteCacheHitsTotal / RouteCacheMissesTotal track internal/routecache
	// effectiveness.
	RouteCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_routecache_hits_total",
		Help: "Total routecache hits.",
	})
	RouteCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_routecache_misses_total",
		Help: "Total routecache misses.",
	})

	// HopsErrorsTotal counts NoHops failures surfaced to callers.
	HopsErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_no_hops_errors_total",
		Help: "Total NoHops errors returned by Calc.Expand.",
	})
)
