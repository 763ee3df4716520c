// Package services – cache metrics
//
// Prometheus counters for the catalog's cache-aside read path. Hit/miss split
// makes the cache's effectiveness visible on dashboards; the error counter
// tracks how often the service had to degrade (treat the cache as absent)
// because Redis could not be reached.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// cacheHits counts list reads served entirely from the cache.
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of list requests served from the cache.",
	})

	// cacheMisses counts list reads that fell through to the store.
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of list requests that fell through to the store.",
	})

	// cacheErrors counts degraded cache operations by kind (get/set/invalidate).
	cacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_errors_total",
			Help: "Total number of cache operations that failed and were degraded.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, cacheErrors)
}
