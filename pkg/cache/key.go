package cache

import (
	"strconv"
	"strings"
)

// Key namespaces. Paged listings and single-breed lookups never share keys.
const (
	NamespaceBreeds = "breeds"
	NamespaceBreed  = "breed"
)

// CacheKey identifies a cached value.
type CacheKey struct {
	// Namespace separates unrelated key spaces (e.g., "breeds" vs "breed")
	Namespace string

	// Parts are the request dimensions, in a fixed order
	Parts []string
}

// String generates a deterministic cache key string.
// Format: namespace:part1:part2:...
//
// Example:
//
//	breeds:1:12:beagle
//	breed:42
func (k CacheKey) String() string {
	parts := make([]string, 0, len(k.Parts)+1)
	parts = append(parts, k.Namespace)
	parts = append(parts, k.Parts...)
	return strings.Join(parts, ":")
}

// BreedsKey is the key of one page of the breed listing. An absent search
// is the empty string, so every (page, limit, search) triple is cached
// independently.
func BreedsKey(page, limit int, search string) CacheKey {
	return CacheKey{
		Namespace: NamespaceBreeds,
		Parts:     []string{strconv.Itoa(page), strconv.Itoa(limit), search},
	}
}

// BreedKey is the key of a single breed looked up by id.
func BreedKey(id string) CacheKey {
	return CacheKey{
		Namespace: NamespaceBreed,
		Parts:     []string{id},
	}
}
