package main

import (
	"fmt"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/crawl"
	"github.com/fwojciec/ragdoc/fs"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	_, err := runCrawl(deps, &c.CrawlFlags)
	return err
}

// runCrawl crawls the configured sitemap and commits the corpus file. It
// returns every result in the corpus, including those resumed from a
// checkpoint.
func runCrawl(deps *Dependencies, flags *CrawlFlags) ([]ragdoc.PageResult, error) {
	cfg := deps.Config

	filter, err := ragdoc.NewURLFilter(flags.Include, flags.Exclude)
	if err != nil {
		return nil, report(deps.Stderr, err)
	}

	corpus := fs.NewCorpusFile(cfg.CorpusPath)
	opts := crawl.SitemapOptions{Filter: filter}

	var resumed []ragdoc.PageResult
	if flags.Resume {
		resumed, err = corpus.Resume()
		if err != nil {
			return nil, report(deps.Stderr, fmt.Errorf("reading checkpoint: %w", err))
		}
		opts.Skip = make(map[string]bool, len(resumed))
		for _, r := range resumed {
			opts.Skip[r.URL] = true
		}
		if len(resumed) > 0 {
			fmt.Fprintf(deps.Stdout, "Resuming: %d pages already saved\n", len(resumed))
		}
	} else if err := corpus.Abort(); err != nil {
		return nil, report(deps.Stderr, fmt.Errorf("clearing checkpoint: %w", err))
	}

	deps.Crawler.Checkpoint = corpus

	progress := func(event ragdoc.CrawlProgress) {
		switch event.Type {
		case ragdoc.CrawlStarted:
			fmt.Fprintf(deps.Stdout, "Found %d URLs\n", event.Total)
		case ragdoc.CrawlFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.ShortURL(event.URL, 80), event.Err)
		}
	}

	results, err := deps.Crawler.CrawlSitemap(deps.Ctx, cfg.SitemapURL, opts, progress)
	if ragdoc.ErrorCode(err) == ragdoc.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "warning: no URLs found in %s\n", cfg.SitemapURL)
		return nil, &reportedError{err}
	} else if err != nil {
		return nil, report(deps.Stderr, err)
	}
	if err := deps.Ctx.Err(); err != nil {
		fmt.Fprintf(deps.Stderr, "Interrupted. Checkpoint kept at %s, rerun with --resume to continue\n", corpus.CheckpointPath())
		return nil, &reportedError{err}
	}

	if err := corpus.Commit(); err != nil {
		return nil, report(deps.Stderr, fmt.Errorf("writing %s: %w", cfg.CorpusPath, err))
	}

	all := append(resumed, results...)
	fmt.Fprintf(deps.Stdout, "Saved %s to %s\n", crawl.Summarize(all), cfg.CorpusPath)
	return all, nil
}
