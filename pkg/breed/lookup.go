package breed

import "errors"

// ErrNotFound is returned when no record matches the requested identifier.
var ErrNotFound = errors.New("breed not found")

// FindByID returns the first record whose identifier, coerced to a string,
// equals id. Numeric upstream ids therefore match their decimal form.
func FindByID(records []Raw, id string) (Raw, error) {
	for _, r := range records {
		if !r.ID.IsZero() && r.ID.String() == id {
			return r, nil
		}
	}
	return Raw{}, ErrNotFound
}
