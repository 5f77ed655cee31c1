package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/ragdoc"
	main "github.com/fwojciec/ragdoc/cmd/ragdoc"
	"github.com/fwojciec/ragdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	t.Run("help shows all commands", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		helpOutput := stdout.String()
		for _, cmd := range []string{"crawl", "index", "ingest", "ask", "chat"} {
			assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
		}
		assert.Contains(t, helpOutput, "Usage:")
		assert.Contains(t, helpOutput, "--metrics-addr")
	})

	t.Run("no arguments prints help and fails", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := main.NewMain().Run(context.Background(), nil, stdout, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
	})

	t.Run("unknown command fails", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(), []string{"serve"}, &bytes.Buffer{}, &bytes.Buffer{})
		require.Error(t, err)
		assert.False(t, main.Reported(err), "parse errors are left for main to print")
	})
}

func TestMain_Run_Config(t *testing.T) {
	t.Parallel()

	// newCrawlMain records the sitemap URL and worker count a crawl runs with.
	newCrawlMain := func(env map[string]string, gotURL *string) *main.Main {
		m := main.NewMain()
		m.Getenv = envMap(env)
		m.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, sitemapURL string, _ *ragdoc.URLFilter) ([]string, error) {
				*gotURL = sitemapURL
				return nil, nil
			},
		}
		m.Fetcher = &mock.Fetcher{CloseFn: func() error { return nil }}
		return m
	}

	t.Run("missing sitemap is a configuration error", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.Getenv = envMap(nil)
		stderr := &bytes.Buffer{}
		err := m.Run(context.Background(), []string{"crawl"}, &bytes.Buffer{}, stderr)

		assert.Equal(t, ragdoc.ECONFIG, ragdoc.ErrorCode(err))
		assert.Contains(t, stderr.String(), "sitemap URL is not set")
		assert.True(t, main.Reported(err))
		assert.Equal(t, 1, strings.Count(stderr.String(), "error:"))
	})

	t.Run("missing secrets are reported before any client is built", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.Getenv = envMap(nil)
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"ask", "what?"}, &bytes.Buffer{}, stderr)

		assert.Equal(t, ragdoc.ECONFIG, ragdoc.ErrorCode(err))
		assert.Contains(t, stderr.String(), "OPENAI_API_KEY is not set")
		assert.Contains(t, stderr.String(), "PINECONE_API_KEY is not set")
		assert.Contains(t, stderr.String(), "PINECONE_INDEX is not set")
	})

	t.Run("environment overrides the config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "ragdoc.toml")
		require.NoError(t, os.WriteFile(path, []byte("[crawl]\nsitemap = \"https://file.example.com/sitemap.xml\"\n"), 0644))

		var got string
		m := newCrawlMain(map[string]string{"RAGDOC_SITEMAP_URL": "https://env.example.com/sitemap.xml"}, &got)
		_ = m.Run(context.Background(), []string{"--config", path, "crawl", "--out", filepath.Join(dir, "out.json")}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, "https://env.example.com/sitemap.xml", got)
	})

	t.Run("argument overrides the environment", func(t *testing.T) {
		t.Parallel()

		var got string
		m := newCrawlMain(map[string]string{"RAGDOC_SITEMAP_URL": "https://env.example.com/sitemap.xml"}, &got)
		_ = m.Run(context.Background(), []string{"crawl", "https://arg.example.com/sitemap.xml", "--out", filepath.Join(t.TempDir(), "out.json")}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, "https://arg.example.com/sitemap.xml", got)
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "nope.toml"), "crawl"}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, ragdoc.ENOTFOUND, ragdoc.ErrorCode(err))
	})
}
