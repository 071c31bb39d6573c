package cache

import (
	"time"
)

// Entry is one cached value with its absolute expiry.
type Entry struct {
	// Data is the JSON encoding of the cached value
	Data []byte `json:"data"`

	// Expires is when the entry becomes stale and must no longer be served
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was written
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired reports whether the entry is stale at now.
func (e *Entry) IsExpired(now time.Time) bool {
	return !now.Before(e.Expires)
}

// TTL returns the time left until expiration at now.
// Returns 0 if already expired.
func (e *Entry) TTL(now time.Time) time.Duration {
	ttl := e.Expires.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
