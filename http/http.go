// Package http fetches sitemaps and pages over plain HTTP.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/ragdoc"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the crawler to documentation servers.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ragdoc/1.0)"

// get issues a GET request and returns the response when the status is
// 2xx. Transport failures and other statuses are EFETCH errors.
func get(ctx context.Context, client *http.Client, targetURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "invalid URL %q: %v", targetURL, err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ragdoc.Errorf(ragdoc.EFETCH, "GET %s: %v", targetURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, ragdoc.Errorf(ragdoc.EFETCH, "HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp, nil
}
