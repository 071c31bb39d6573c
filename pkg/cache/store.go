package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/breeds-proxy/pkg/logging"
	"github.com/rs/zerolog"
)

const (
	// DefaultTTL applies when Set is called without an explicit TTL
	DefaultTTL = 5 * time.Minute

	// DefaultSweepInterval is how often the janitor removes expired entries
	DefaultSweepInterval = time.Minute
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Config holds the store configuration.
type Config struct {
	// DefaultTTL is used for entries stored with a zero TTL
	DefaultTTL time.Duration

	// SweepInterval enables a background janitor when > 0.
	// Expired entries are never served either way; the janitor only
	// bounds memory held by keys that are not read again.
	SweepInterval time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:    DefaultTTL,
		SweepInterval: DefaultSweepInterval,
	}
}

// Cache is the read/write surface the service layer needs.
// Implementations must make Get and Set individually atomic.
type Cache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key CacheKey) (*Entry, error)

	// Set stores data under key for ttl; ttl <= 0 uses the default TTL.
	Set(ctx context.Context, key CacheKey, data []byte, ttl time.Duration) error
}

var _ Cache = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is a process-local key/value cache with per-entry TTL.
// Get and Set are each atomic; there is no cross-operation transaction.
// Capacity is unbounded: entries only leave the store by expiring.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewStore creates a new in-memory store and starts the janitor when
// cfg.SweepInterval is positive.
func NewStore(cfg Config, opts ...Option) *Store {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}

	s := &Store{
		entries: make(map[string]*Entry),
		ttl:     cfg.DefaultTTL,
		now:     time.Now,
		logger:  logging.NewLogger(logging.ComponentCache),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.SweepInterval > 0 {
		go s.sweepLoop(cfg.SweepInterval)
	} else {
		close(s.done)
	}

	return s
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
// Expired entries are evicted on access.
func (s *Store) Get(_ context.Context, key CacheKey) (*Entry, error) {
	cacheKey := key.String()
	now := s.now()

	s.mu.RLock()
	entry, ok := s.entries[cacheKey]
	s.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues(key.Namespace).Inc()
		s.logger.Debug().Str("cache_key", cacheKey).Msg("Cache miss")
		return nil, ErrCacheMiss
	}

	if entry.IsExpired(now) {
		s.evictIfExpired(cacheKey, entry, now)
		CacheMisses.WithLabelValues(key.Namespace).Inc()
		s.logger.Debug().Str("cache_key", cacheKey).Msg("Cache entry expired")
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(key.Namespace).Inc()
	s.logger.Debug().
		Str("cache_key", cacheKey).
		Dur("ttl", entry.TTL(now)).
		Msg("Cache hit")

	// Entries are never modified in place; hand out a private copy of the data.
	data := make([]byte, len(entry.Data))
	copy(data, entry.Data)
	return &Entry{Data: data, Expires: entry.Expires, CachedAt: entry.CachedAt}, nil
}

// Set stores data under key for ttl, replacing any previous entry and
// resetting its expiry. A ttl <= 0 uses the store's default TTL.
func (s *Store) Set(_ context.Context, key CacheKey, data []byte, ttl time.Duration) error {
	if data == nil {
		return fmt.Errorf("cache value cannot be nil")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	cp := make([]byte, len(data))
	copy(cp, data)
	entry := &Entry{
		Data:     cp,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}

	cacheKey := key.String()

	s.mu.Lock()
	_, existed := s.entries[cacheKey]
	s.entries[cacheKey] = entry
	s.mu.Unlock()

	if !existed {
		CacheEntries.Inc()
	}

	s.logger.Debug().
		Str("cache_key", cacheKey).
		Dur("ttl", ttl).
		Msg("Cached value")

	return nil
}

// Delete removes a cache entry. Deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key CacheKey) error {
	s.mu.Lock()
	_, ok := s.entries[key.String()]
	delete(s.entries, key.String())
	s.mu.Unlock()

	if ok {
		CacheEntries.Dec()
		CacheEvictions.WithLabelValues("delete").Inc()
	}
	return nil
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Flush removes every entry.
func (s *Store) Flush() {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]*Entry)
	s.mu.Unlock()

	CacheEntries.Sub(float64(n))
}

// Sweep removes all expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for k, e := range s.entries {
		if e.IsExpired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		CacheEntries.Sub(float64(removed))
		CacheEvictions.WithLabelValues("sweep").Add(float64(removed))
		s.logger.Debug().Int("removed", removed).Msg("Swept expired cache entries")
	}
	return removed
}

// Close stops the janitor. The store stays usable afterwards.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	return nil
}

// evictIfExpired deletes key only if it still maps to the expired entry the
// caller saw; a concurrent Set may already have replaced it.
func (s *Store) evictIfExpired(key string, seen *Entry, now time.Time) {
	s.mu.Lock()
	current, ok := s.entries[key]
	if ok && current == seen && current.IsExpired(now) {
		delete(s.entries, key)
	} else {
		ok = false
	}
	s.mu.Unlock()

	if ok {
		CacheEntries.Dec()
		CacheEvictions.WithLabelValues("expired").Inc()
	}
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
