package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetJSON reads key from s and decodes it into a fresh T.
// Returns ErrCacheMiss on a miss and ErrInvalidEntry when the stored data
// cannot be decoded.
func GetJSON[T any](ctx context.Context, s Cache, key CacheKey) (T, error) {
	var value T

	entry, err := s.Get(ctx, key)
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal(entry.Data, &value); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		return value, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return value, nil
}

// SetJSON encodes value and stores it under key for ttl.
// Storing the encoding makes every cached value an immutable snapshot.
func SetJSON(ctx context.Context, s Cache, key CacheKey, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return s.Set(ctx, key, data, ttl)
}
