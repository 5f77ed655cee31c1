package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/crawl"
	"github.com/fwojciec/ragdoc/index"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config ragdoc.Config

	Crawler  *crawl.Crawler
	Pipeline *index.Pipeline
	Asker    ragdoc.Asker

	// Interactive selects the full-screen chat over the line loop.
	Interactive bool
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config      string `short:"c" env:"RAGDOC_CONFIG" help:"Path to a TOML configuration file"`
	Verbose     bool   `short:"v" help:"Log debug output to stderr"`
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9090"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl the pages listed in a sitemap into a corpus file"`
	Index  IndexCmd  `cmd:"" help:"Chunk, embed and upsert a corpus file into the vector index"`
	Ingest IngestCmd `cmd:"" help:"Crawl a sitemap and index the result"`
	Ask    AskCmd    `cmd:"" help:"Answer one question from the indexed documentation"`
	Chat   ChatCmd   `cmd:"" help:"Start an interactive question session"`
}

// CrawlFlags are the options shared by crawl and ingest. Zero values keep
// the configured setting.
type CrawlFlags struct {
	Out      string   `short:"o" help:"Corpus file to write (default output.json)"`
	Resume   bool     `help:"Skip URLs already saved in the checkpoint of an interrupted crawl"`
	Include  []string `short:"i" help:"Only crawl URLs matching this regex (repeatable)"`
	Exclude  []string `short:"x" help:"Skip URLs matching this regex (repeatable)"`
	Browser  bool     `short:"b" help:"Render pages in a headless browser"`
	Retries  int      `help:"Retries per failed page fetch"`
	Workers  int      `short:"w" help:"Concurrent page fetches"`
	Selector string   `help:"CSS selector of the content region, or 'auto'"`
	Format   string   `help:"Page text format: text or markdown"`
}

func (f *CrawlFlags) apply(cfg *ragdoc.Config, sitemap string) {
	if sitemap != "" {
		cfg.SitemapURL = sitemap
	}
	if f.Out != "" {
		cfg.CorpusPath = f.Out
	}
	if f.Browser {
		cfg.Browser = true
	}
	if f.Retries > 0 {
		cfg.Retries = f.Retries
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
	if f.Selector != "" {
		cfg.Selector = f.Selector
	}
	if f.Format != "" {
		cfg.Format = f.Format
	}
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Sitemap    string `arg:"" optional:"" help:"Sitemap URL (default from configuration)"`
	CrawlFlags `embed:""`
}

func (c *CrawlCmd) apply(cfg *ragdoc.Config) {
	c.CrawlFlags.apply(cfg, c.Sitemap)
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	Corpus string `help:"Corpus file to index (default output.json)"`
}

func (c *IndexCmd) apply(cfg *ragdoc.Config) {
	if c.Corpus != "" {
		cfg.CorpusPath = c.Corpus
	}
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Sitemap    string `arg:"" optional:"" help:"Sitemap URL (default from configuration)"`
	CrawlFlags `embed:""`
}

func (c *IngestCmd) apply(cfg *ragdoc.Config) {
	c.CrawlFlags.apply(cfg, c.Sitemap)
}

// QueryFlags are the options shared by ask and chat.
type QueryFlags struct {
	Sources bool `short:"s" help:"List the source URLs of each answer"`
	TopK    int  `name:"top-k" short:"k" help:"Number of chunks retrieved per question"`
}

func (f *QueryFlags) apply(cfg *ragdoc.Config) {
	if f.TopK > 0 {
		cfg.TopK = f.TopK
	}
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question   string `arg:"" help:"Question to ask about the documentation"`
	QueryFlags `embed:""`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	QueryFlags `embed:""`
}
