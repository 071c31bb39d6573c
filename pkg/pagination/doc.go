// Package pagination filters and pages through a full in-memory collection.
//
// The upstream breed catalog is returned in one response, so paging happens
// locally: filter by name, count, slice, and only then transform the items
// that land on the requested page. Transformation work therefore scales with
// the page size, not with the size of the catalog.
//
// Example usage:
//
//	params := pagination.Params{Page: 2, Limit: 12, Search: "terrier"}
//	if err := params.Validate(); err != nil {
//		return err
//	}
//	page := pagination.Paginate(records, params, nameOf, breed.Normalize)
//
// Filtering is a plain substring match on lowercased strings: no trimming
// and no tokenization. Items without a name are skipped while searching.
package pagination
