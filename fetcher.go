package ragdoc

import "context"

// Fetcher retrieves the HTML of a page.
type Fetcher interface {
	// Fetch returns the HTML served at url. A non-success response is an
	// error. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}
