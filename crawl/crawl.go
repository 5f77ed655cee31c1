// Package crawl fetches the pages listed in a sitemap with a bounded pool
// of workers and turns each one into a page result.
package crawl

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/ragdoc"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the default size of the worker pool.
const DefaultWorkers = 10

// Crawler fetches and extracts documentation pages.
type Crawler struct {
	Sitemaps ragdoc.SitemapService
	Fetcher  ragdoc.Fetcher
	Content  *ContentExtractor
	Throttle ragdoc.Throttle
	Workers  int

	// Checkpoint, if set, receives every result as soon as it completes.
	Checkpoint ragdoc.CorpusWriter
}

// SitemapOptions narrows the URLs crawled from a sitemap.
type SitemapOptions struct {
	Filter *ragdoc.URLFilter

	// Skip holds URLs that already have a result, e.g. from a checkpoint.
	Skip map[string]bool
}

// CrawlSitemap resolves sitemapURL and crawls every listed URL not in
// opts.Skip. A sitemap that cannot be fetched or parsed fails the crawl.
// A sitemap listing no URLs returns ENOTFOUND without fetching any page.
func (c *Crawler) CrawlSitemap(ctx context.Context, sitemapURL string, opts SitemapOptions, progress ragdoc.CrawlProgressFunc) ([]ragdoc.PageResult, error) {
	urls, err := c.Sitemaps.DiscoverURLs(ctx, sitemapURL, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("sitemap discovery: %w", err)
	}
	if len(urls) == 0 {
		return nil, ragdoc.Errorf(ragdoc.ENOTFOUND, "no URLs found in %s", sitemapURL)
	}

	if len(opts.Skip) > 0 {
		pending := urls[:0:0]
		for _, u := range urls {
			if !opts.Skip[u] {
				pending = append(pending, u)
			}
		}
		urls = pending
	}

	return c.Crawl(ctx, urls, progress)
}

// Crawl processes urls with at most Workers concurrent fetches and returns
// exactly one result per URL, in completion order. A page that fails is
// recorded as a PageFailure and never stops the crawl. The only error
// returned is a failure to write the checkpoint.
//
// Once ctx is done, pages not yet fetched fail with the context error
// without being attempted. Those results are neither checkpointed nor
// reported, so a resumed crawl fetches them again.
func (c *Crawler) Crawl(ctx context.Context, urls []string, progress ragdoc.CrawlProgressFunc) ([]ragdoc.PageResult, error) {
	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	throttle := c.Throttle
	if throttle == nil {
		throttle = NoThrottle{}
	}

	total := len(urls)
	if progress != nil {
		progress(ragdoc.CrawlProgress{Type: ragdoc.CrawlStarted, Total: total})
	}

	resultCh := make(chan pageOutcome, workers)

	var g errgroup.Group
	g.SetLimit(workers)
	go func() {
		for _, u := range urls {
			g.Go(func() error {
				resultCh <- c.processURL(ctx, throttle, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]ragdoc.PageResult, 0, total)
	completed := 0
	var saveErr error
	for outcome := range resultCh {
		result := outcome.result
		results = append(results, result)
		if outcome.interrupted {
			continue
		}
		completed++

		if c.Checkpoint != nil && saveErr == nil {
			if err := c.Checkpoint.Save(ctx, result); err != nil {
				saveErr = fmt.Errorf("checkpoint: %w", err)
			}
		}

		if progress == nil {
			continue
		}
		event := ragdoc.CrawlProgress{
			Type:      ragdoc.CrawlCompleted,
			URL:       result.URL,
			Completed: completed,
			Total:     total,
		}
		if f, ok := result.Outcome.(ragdoc.PageFailure); ok {
			event.Type = ragdoc.CrawlFailed
			event.Err = errors.New(f.Error)
		}
		progress(event)
	}

	if progress != nil {
		progress(ragdoc.CrawlProgress{Type: ragdoc.CrawlFinished, Completed: completed, Total: total})
	}

	return results, saveErr
}

// pageOutcome is a page result plus whether cancellation cut it short.
type pageOutcome struct {
	result      ragdoc.PageResult
	interrupted bool
}

// processURL fetches and extracts a single URL. The throttle's After hook
// runs in the worker, so a completion delay holds the worker's slot.
func (c *Crawler) processURL(ctx context.Context, throttle ragdoc.Throttle, url string) pageOutcome {
	if err := ctx.Err(); err != nil {
		return pageOutcome{result: ragdoc.NewPageFailure(url, err), interrupted: true}
	}
	result := c.fetchAndExtract(ctx, throttle, url)
	if result.Failed() && ctx.Err() != nil {
		return pageOutcome{result: result, interrupted: true}
	}
	_ = throttle.After(ctx)
	return pageOutcome{result: result}
}

func (c *Crawler) fetchAndExtract(ctx context.Context, throttle ragdoc.Throttle, url string) ragdoc.PageResult {
	if err := throttle.Before(ctx, url); err != nil {
		return ragdoc.NewPageFailure(url, err)
	}

	html, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		return ragdoc.NewPageFailure(url, err)
	}

	text, err := c.Content.Extract(html)
	if err != nil {
		return ragdoc.NewPageFailure(url, err)
	}

	return ragdoc.NewPageSuccess(url, text)
}
