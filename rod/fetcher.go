// Package rod fetches JavaScript-rendered documentation pages with a
// headless Chrome browser.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/ragdoc"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds navigation and rendering of one page.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements ragdoc.Fetcher at compile time.
var _ ragdoc.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	pool      *browserPool
	timeout   time.Duration
	userAgent string
	maxPages  int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-page timeout. Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxPages sets the number of pages served before the browser is
// recycled. Defaults to DefaultMaxPages.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	pool, err := newBrowserPool(f.maxPages)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.ECONFIG, "%v", err)
	}
	f.pool = pool
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := f.pool.acquire()
	if err != nil {
		return "", ragdoc.Errorf(ragdoc.EFETCH, "%s: %v", url, err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", ragdoc.Errorf(ragdoc.EFETCH, "opening page for %s: %v", url, err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.timeout)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return "", ragdoc.Errorf(ragdoc.EFETCH, "setting user agent: %v", err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", ragdoc.Errorf(ragdoc.EFETCH, "navigating to %s: %v", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", ragdoc.Errorf(ragdoc.EFETCH, "loading %s: %v", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", ragdoc.Errorf(ragdoc.EFETCH, "reading %s: %v", url, err)
	}
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.pool.close()
}
