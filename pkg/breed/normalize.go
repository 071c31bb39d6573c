package breed

import "fmt"

// Fallback literals used when the upstream omits a field.
const (
	UnknownOrigin = "Inconnu"
	NotAvailable  = "N/A"
)

// ImageCDNFormat builds an image URL from a reference_image_id.
const ImageCDNFormat = "https://cdn2.thedogapi.com/images/%s.jpg"

// Normalize maps a raw upstream record to the normalized Breed shape.
// It never fails and never modifies raw: missing or empty fields fall back to
// UnknownOrigin / NotAvailable, and Image is nil when no image can be derived.
func Normalize(raw Raw) Breed {
	var height *string
	if raw.Height != nil {
		height = raw.Height.Metric
	}

	return Breed{
		ID:          raw.ID,
		Name:        valueOr("", raw.Name),
		Origin:      valueOr(UnknownOrigin, raw.Origin, raw.CountryCode),
		Height:      valueOr(NotAvailable, height),
		LifeSpan:    valueOr(NotAvailable, raw.LifeSpan),
		Temperament: valueOr(NotAvailable, raw.Temperament),
		Image:       imageURL(raw),
	}
}

// imageURL prefers the embedded image, then the CDN location of the
// reference image.
func imageURL(raw Raw) *string {
	if raw.Image != nil && present(raw.Image.URL) {
		url := *raw.Image.URL
		return &url
	}
	if present(raw.ReferenceImageID) {
		url := fmt.Sprintf(ImageCDNFormat, *raw.ReferenceImageID)
		return &url
	}
	return nil
}

// valueOr returns the first present candidate, or def.
func valueOr(def string, candidates ...*string) string {
	for _, c := range candidates {
		if present(c) {
			return *c
		}
	}
	return def
}

// present treats nil and empty strings alike.
func present(s *string) bool {
	return s != nil && *s != ""
}
