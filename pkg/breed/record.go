// Package breed defines the upstream breed record, the normalized breed shape
// served to clients, and the pure helpers that map and look up records.
package breed

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a breed identifier that keeps the JSON type it was received with.
// Upstream catalogs use numeric ids, but string ids round-trip unchanged.
type ID struct {
	value   string
	numeric bool
}

// NumericID returns an ID that marshals as a JSON number.
func NumericID(n int64) ID {
	return ID{value: fmt.Sprintf("%d", n), numeric: true}
}

// StringID returns an ID that marshals as a JSON string.
func StringID(s string) ID {
	return ID{value: s}
}

// String returns the identifier coerced to a string ("1" for the number 1).
func (id ID) String() string {
	return id.value
}

// IsZero reports whether the identifier was absent or null.
func (id ID) IsZero() bool {
	return id.value == "" && !id.numeric
}

// MarshalJSON writes the identifier back with its original JSON type.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode breed id: %w", err)
		}
		*id = ID{value: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode breed id: %w", err)
	}
	*id = ID{value: n.String(), numeric: true}
	return nil
}

// Measure holds the imperial/metric pair the upstream uses for height and weight.
type Measure struct {
	Imperial *string `json:"imperial,omitempty"`
	Metric   *string `json:"metric,omitempty"`
}

// Image is the embedded image object of an upstream record.
type Image struct {
	ID  *string `json:"id,omitempty"`
	URL *string `json:"url,omitempty"`
}

// Raw is one breed object as returned by the upstream catalog.
// Every field except ID may be missing; nil means absent.
type Raw struct {
	ID               ID       `json:"id"`
	Name             *string  `json:"name,omitempty"`
	Origin           *string  `json:"origin,omitempty"`
	CountryCode      *string  `json:"country_code,omitempty"`
	Height           *Measure `json:"height,omitempty"`
	LifeSpan         *string  `json:"life_span,omitempty"`
	Temperament      *string  `json:"temperament,omitempty"`
	Image            *Image   `json:"image,omitempty"`
	ReferenceImageID *string  `json:"reference_image_id,omitempty"`
}

// Breed is the normalized breed shape. Every field is always populated;
// Image is the only field that may be null.
type Breed struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Origin      string  `json:"origin"`
	Height      string  `json:"height"`
	LifeSpan    string  `json:"life_span"`
	Temperament string  `json:"temperament"`
	Image       *string `json:"image"`
}

// Str returns a pointer to s. It keeps literal Raw records short in tests
// and fixtures.
func Str(s string) *string {
	return &s
}

// SearchName returns the record's name for search filtering; ok is false
// when the upstream omitted it.
func (r Raw) SearchName() (name string, ok bool) {
	if r.Name == nil {
		return "", false
	}
	return *r.Name, true
}
