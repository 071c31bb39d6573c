// Package cache provides the process-local TTL cache that shields the
// upstream breed catalog from repeated calls.
//
// The store implements read-through caching semantics for the service layer:
//
// - Per-entry absolute expiry, reset on every Set (reads never extend it)
// - Lazy eviction on access, plus an optional background sweep
// - Values stored as JSON snapshots, so callers cannot mutate cached results
// - Deterministic, namespaced cache keys
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create store
//	store := cache.NewStore(cache.DefaultConfig())
//	defer store.Close()
//
//	// Create cache key
//	key := cache.BreedsKey(1, 12, "beagle")
//
//	// Get from cache
//	page, err := cache.GetJSON[pagination.Page[breed.Breed]](ctx, store, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from upstream
//	}
//
//	// Store in cache with the default TTL
//	if err := cache.SetJSON(ctx, store, key, page, 0); err != nil {
//		return err
//	}
//
// # Keys
//
//	breeds:<page>:<limit>:<search>   one page of the listing
//	breed:<id>                       one breed
//
// # Metrics
//
// The store exports Prometheus metrics:
//
//   - breeds_cache_hits_total{namespace} - Cache hits
//   - breeds_cache_misses_total{namespace} - Cache misses (absent or expired)
//   - breeds_cache_entries - Entries currently held
//   - breeds_cache_evictions_total{reason} - Entries removed
//   - breeds_cache_errors_total{operation} - Encode/decode errors
//
// The store is never shared across processes; each instance owns its cache.
package cache
