package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by key namespace
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breeds_cache_hits_total",
			Help: "Total number of breed cache hits",
		},
		[]string{"namespace"}, // "breeds", "breed"
	)

	// CacheMisses tracks cache misses by key namespace
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breeds_cache_misses_total",
			Help: "Total number of breed cache misses",
		},
		[]string{"namespace"},
	)

	// CacheEntries tracks the number of live entries held by stores
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "breeds_cache_entries",
			Help: "Current number of entries held in the breed cache",
		},
	)

	// CacheEvictions tracks entries removed from the cache
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breeds_cache_evictions_total",
			Help: "Total number of breed cache evictions",
		},
		[]string{"reason"}, // "expired", "sweep", "delete"
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breeds_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "encode", "decode"
	)
)
