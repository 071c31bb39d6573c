// Package service implements the read-through breed catalog: it answers
// listing and lookup requests from the cache when it can, and otherwise
// fetches the upstream catalog, computes the result and caches it.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/breeds-proxy/internal/observability"
	"github.com/Sternrassler/breeds-proxy/pkg/breed"
	"github.com/Sternrassler/breeds-proxy/pkg/cache"
	"github.com/Sternrassler/breeds-proxy/pkg/logging"
	"github.com/Sternrassler/breeds-proxy/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for service operations.
var (
	serviceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breeds_service_requests_total",
		Help: "Total service operations by operation and result",
	}, []string{"operation", "result"}) // result: "hit", "miss", "not_found", "invalid", "error"

	serviceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "breeds_service_duration_seconds",
		Help:    "Service operation duration in seconds",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
	}, []string{"operation"})
)

const (
	opGetBreeds    = "get_breeds"
	opGetBreedByID = "get_breed_by_id"
)

// ErrBreedsFetchFailed is returned when the upstream catalog could not be
// fetched. It wraps the underlying fetch error.
var ErrBreedsFetchFailed = errors.New("breeds fetch failed")

// Fetcher returns the full upstream catalog. *client.Client implements it.
type Fetcher interface {
	FetchAllBreeds(ctx context.Context) ([]breed.Raw, error)
}

// Config holds the service dependencies.
type Config struct {
	// Fetcher supplies the upstream catalog on cache misses (required)
	Fetcher Fetcher

	// Cache holds computed results (required)
	Cache cache.Cache

	// TTL of cached results; zero uses the cache default
	TTL time.Duration
}

// Service answers breed listing and lookup requests.
type Service struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration
	logger  zerolog.Logger
}

// New creates a new service.
func New(cfg Config) (*Service, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("ttl must be >= 0 (got %v)", cfg.TTL)
	}

	return &Service{
		fetcher: cfg.Fetcher,
		cache:   cfg.Cache,
		ttl:     cfg.TTL,
		logger:  logging.NewLogger(logging.ComponentService),
	}, nil
}

// GetBreeds returns one page of the normalized catalog, filtered by search
// when non-empty. Results are cached per (page, limit, search).
func (s *Service) GetBreeds(ctx context.Context, page, limit int, search string) (pagination.Page[breed.Breed], error) {
	start := time.Now()
	defer func() {
		serviceDuration.WithLabelValues(opGetBreeds).Observe(time.Since(start).Seconds())
	}()

	params := pagination.Params{Page: page, Limit: limit, Search: search}
	key := cache.BreedsKey(page, limit, search)

	ctx, span := observability.StartSpan(ctx, "service.GetBreeds",
		observability.AttrPage.Int(page),
		observability.AttrLimit.Int(limit),
		observability.AttrSearch.String(search),
		observability.AttrCacheKey.String(key.String()),
	)
	defer span.End()

	logger := s.logger.With().
		Int("page", page).
		Int("limit", limit).
		Str("search", search).
		Logger()

	if err := params.Validate(); err != nil {
		serviceRequestsTotal.WithLabelValues(opGetBreeds, "invalid").Inc()
		observability.SetSpanError(span, err)
		return pagination.Page[breed.Breed]{}, err
	}

	// Step 1: Check cache
	if cached, ok := lookupCached[pagination.Page[breed.Breed]](ctx, s.cache, key, logger); ok {
		serviceRequestsTotal.WithLabelValues(opGetBreeds, "hit").Inc()
		span.SetAttributes(observability.AttrCacheHit.Bool(true))
		observability.SetSpanOK(span)
		return cached, nil
	}
	span.SetAttributes(observability.AttrCacheHit.Bool(false))

	// Step 2: Fetch the catalog
	records, err := s.fetch(ctx, logger)
	if err != nil {
		serviceRequestsTotal.WithLabelValues(opGetBreeds, "error").Inc()
		observability.SetSpanError(span, err)
		return pagination.Page[breed.Breed]{}, err
	}

	// Step 3: Filter, paginate and normalize the page
	result := pagination.Paginate(records, params, breed.Raw.SearchName, breed.Normalize)

	// Step 4: Store in cache
	s.store(ctx, key, result, logger)

	serviceRequestsTotal.WithLabelValues(opGetBreeds, "miss").Inc()
	span.SetAttributes(observability.AttrRecordCount.Int(result.Total))
	observability.SetSpanOK(span)

	logger.Debug().
		Int("total", result.Total).
		Int("items", len(result.Items)).
		Msg("Computed breeds page")

	return result, nil
}

// GetBreedByID returns the normalized breed whose id equals id.
// Returns an error wrapping breed.ErrNotFound when the catalog has no such
// breed; not-found results are not cached.
func (s *Service) GetBreedByID(ctx context.Context, id string) (breed.Breed, error) {
	start := time.Now()
	defer func() {
		serviceDuration.WithLabelValues(opGetBreedByID).Observe(time.Since(start).Seconds())
	}()

	key := cache.BreedKey(id)

	ctx, span := observability.StartSpan(ctx, "service.GetBreedByID",
		observability.AttrBreedID.String(id),
		observability.AttrCacheKey.String(key.String()),
	)
	defer span.End()

	logger := s.logger.With().Str("breed_id", id).Logger()

	// Step 1: Check cache
	if cached, ok := lookupCached[breed.Breed](ctx, s.cache, key, logger); ok {
		serviceRequestsTotal.WithLabelValues(opGetBreedByID, "hit").Inc()
		span.SetAttributes(observability.AttrCacheHit.Bool(true))
		observability.SetSpanOK(span)
		return cached, nil
	}
	span.SetAttributes(observability.AttrCacheHit.Bool(false))

	// Step 2: Fetch the catalog
	records, err := s.fetch(ctx, logger)
	if err != nil {
		serviceRequestsTotal.WithLabelValues(opGetBreedByID, "error").Inc()
		observability.SetSpanError(span, err)
		return breed.Breed{}, err
	}

	// Step 3: Look up the record
	raw, err := breed.FindByID(records, id)
	if err != nil {
		serviceRequestsTotal.WithLabelValues(opGetBreedByID, "not_found").Inc()
		observability.SetSpanError(span, err)
		logger.Debug().Msg("Breed not found")
		return breed.Breed{}, fmt.Errorf("breed %q: %w", id, err)
	}

	// Step 4: Normalize and store in cache
	result := breed.Normalize(raw)
	s.store(ctx, key, result, logger)

	serviceRequestsTotal.WithLabelValues(opGetBreedByID, "miss").Inc()
	observability.SetSpanOK(span)
	return result, nil
}

// fetch loads the upstream catalog, wrapping failures in ErrBreedsFetchFailed.
func (s *Service) fetch(ctx context.Context, logger zerolog.Logger) ([]breed.Raw, error) {
	records, err := s.fetcher.FetchAllBreeds(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch breeds")
		return nil, fmt.Errorf("%w: %w", ErrBreedsFetchFailed, err)
	}
	return records, nil
}

// store writes value to the cache. Write failures are logged only.
func (s *Service) store(ctx context.Context, key cache.CacheKey, value any, logger zerolog.Logger) {
	if err := cache.SetJSON(ctx, s.cache, key, value, s.ttl); err != nil {
		logger.Warn().Err(err).Str("cache_key", key.String()).Msg("Failed to cache result")
	}
}

// lookupCached reads key from c. Misses and undecodable entries both report
// ok=false; the latter is logged since the entry will be overwritten.
func lookupCached[T any](ctx context.Context, c cache.Cache, key cache.CacheKey, logger zerolog.Logger) (T, bool) {
	value, err := cache.GetJSON[T](ctx, c, key)
	if err == nil {
		logger.Debug().Str("cache_key", key.String()).Msg("Served from cache")
		return value, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn().Err(err).Str("cache_key", key.String()).Msg("Ignoring unreadable cache entry")
	}
	var zero T
	return zero, false
}
