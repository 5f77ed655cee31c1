package main

import (
	"fmt"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/fs"
	"github.com/fwojciec/ragdoc/index"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	pages, err := fs.ReadCorpus(deps.Config.CorpusPath)
	if err != nil {
		return report(deps.Stderr, err)
	}
	return runIndex(deps, pages)
}

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	pages, err := runCrawl(deps, &c.CrawlFlags)
	if err != nil {
		return err
	}
	return runIndex(deps, pages)
}

// runIndex provisions the index and upserts the chunks of pages.
func runIndex(deps *Dependencies, pages []ragdoc.PageResult) error {
	p := deps.Pipeline

	if err := p.EnsureIndex(deps.Ctx); err != nil {
		return report(deps.Stderr, err)
	}

	progress := func(pr index.Progress) {
		fmt.Fprintf(deps.Stdout, "  batch %d/%d (%d/%d chunks)\n", pr.Batch+1, pr.Batches, pr.Chunks, pr.Total)
	}

	result, err := p.Run(deps.Ctx, pages, progress)
	if err != nil {
		rerr := report(deps.Stderr, err)
		if result != nil && result.Batches > 0 {
			fmt.Fprintf(deps.Stderr, "%d chunks in %d batches were indexed before the failure\n", result.Chunks, result.Batches)
		}
		return rerr
	}

	fmt.Fprintf(deps.Stdout, "Indexed %s\n", result)
	return nil
}
