package provision

import (
	"context"
	"fmt"
)

// DefaultPageLimit is the window size used for all vendor listing walks.
const DefaultPageLimit = 10

// maxPages caps the walk so a backend reporting an inconsistent total can
// never keep the loop alive indefinitely.
const maxPages = 100

// Page is one window of a vendor listing response. Total is the vendor's
// count of all items at the time of this fetch.
type Page[T any] struct {
	Items []T
	Total int
}

// FetchFunc retrieves one page of a listing endpoint.
type FetchFunc[T any] func(ctx context.Context, offset, limit int) (Page[T], error)

// Finder walks a paged listing endpoint looking for the first item that
// satisfies a predicate. When Fallback is set and no item ever matches the
// primary predicate, the first item seen that satisfies Fallback is returned
// instead.
type Finder[T any] struct {
	Fetch    FetchFunc[T]
	Limit    int
	Fallback func(T) bool
}

// First returns the first match, short-circuiting without fetching further
// pages. Termination relies solely on the current page's total: the walk
// ends once total <= offset+limit, so a total that shrinks mid-walk still
// terminates. key names the search target in the NotFound failure.
func (f Finder[T]) First(ctx context.Context, match func(T) bool, key string) (T, error) {
	var zero, fallback T
	haveFallback := false

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	offset := 0
	for page := 0; page < maxPages; page++ {
		p, err := f.Fetch(ctx, offset, limit)
		if err != nil {
			return zero, err
		}

		for _, item := range p.Items {
			if match(item) {
				return item, nil
			}
			if !haveFallback && f.Fallback != nil && f.Fallback(item) {
				fallback = item
				haveFallback = true
			}
		}

		if p.Total <= offset+limit {
			break
		}
		offset += limit
	}

	if haveFallback {
		return fallback, nil
	}
	return zero, NotFound(fmt.Sprintf("%s not found", key)).WithData("search_key", key)
}
