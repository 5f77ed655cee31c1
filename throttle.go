package ragdoc

import "context"

// Throttle paces crawl requests.
// Before is called ahead of each fetch; After is called once the page has
// been fetched and extracted, on success or failure.
type Throttle interface {
	Before(ctx context.Context, url string) error
	After(ctx context.Context) error
}
