package pagination

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Defaults applied by the routing layer when a parameter is omitted.
const (
	DefaultPage  = 1
	DefaultLimit = 12
)

// ErrInvalidParams is returned for a page or limit below 1.
var ErrInvalidParams = errors.New("invalid pagination parameters")

// Params selects one page of a (possibly filtered) collection.
type Params struct {
	// Page is 1-indexed.
	Page int

	// Limit is the maximum number of items on the page.
	Limit int

	// Search keeps only items whose name contains it, case-insensitively.
	// An empty Search disables filtering.
	Search string
}

// Validate rejects non-positive page or limit values.
func (p Params) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1 (got %d)", ErrInvalidParams, p.Page)
	}
	if p.Limit < 1 {
		return fmt.Errorf("%w: limit must be >= 1 (got %d)", ErrInvalidParams, p.Limit)
	}
	return nil
}

// Offset returns the zero-based index of the first item on the page.
// It saturates at math.MaxInt instead of overflowing for huge pages.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// pastEnd reports whether page p starts beyond a collection of n items,
// without computing the offset.
func (p Params) pastEnd(n int) bool {
	pages := n / p.Limit
	if n%p.Limit != 0 {
		pages++
	}
	return p.Page-1 >= pages
}

// Page is one page of results.
// Total counts the filtered collection before slicing.
type Page[T any] struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Items []T `json:"items"`
}

// Paginate filters items by p.Search, slices out page p.Page, and maps only
// the sliced items through transform. Params are assumed valid.
//
// name extracts the searchable name of an item; ok is false when the item
// has none, and such items never match a non-empty search.
func Paginate[S, T any](items []S, p Params, name func(S) (string, bool), transform func(S) T) Page[T] {
	filtered := Filter(items, p.Search, name)

	var window []S
	if !p.pastEnd(len(filtered)) {
		window = Slice(filtered, p.Offset(), p.Limit)
	}
	out := make([]T, 0, len(window))
	for _, item := range window {
		out = append(out, transform(item))
	}

	return Page[T]{
		Page:  p.Page,
		Limit: p.Limit,
		Total: len(filtered),
		Items: out,
	}
}

// Filter keeps the items whose name contains search as a case-insensitive
// substring. The input is returned as is when search is empty.
func Filter[S any](items []S, search string, name func(S) (string, bool)) []S {
	if search == "" {
		return items
	}

	needle := strings.ToLower(search)
	filtered := make([]S, 0, len(items))
	for _, item := range items {
		n, ok := name(item)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(n), needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Slice returns items[start:start+limit] clamped to the slice bounds.
// A negative start yields nothing.
func Slice[S any](items []S, start, limit int) []S {
	if start < 0 || start >= len(items) || limit <= 0 {
		return nil
	}
	end := start + limit
	if end > len(items) || end < start {
		end = len(items)
	}
	return items[start:end]
}
