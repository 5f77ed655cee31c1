package toml_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ragdoc.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("overlays file values on defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
provider = "gemini"
dimension = 768
temperature = 0.0
subject = "Docusaurus"

[chunking]
size = 500
overlap = 50

[crawl]
workers = 4
throttle = "rate"
throttle_delay = "250ms"
timeout = "30s"
selector = "auto"
format = "markdown"
browser = true
sitemap = "https://docs.example.com/sitemap.xml"

[index]
backend = "sqlite"
name = "docs"
sqlite_path = "/tmp/docs.db"
metric = "dotproduct"
top_k = 6
`)

		cfg, err := toml.LoadConfig(path, ragdoc.DefaultConfig())

		require.NoError(t, err)
		assert.Equal(t, ragdoc.ProviderGemini, cfg.Provider)
		assert.Equal(t, 768, cfg.Dimension)
		assert.Equal(t, 0.0, cfg.Temperature)
		assert.Equal(t, "Docusaurus", cfg.Subject)
		assert.Equal(t, 500, cfg.ChunkSize)
		assert.Equal(t, 50, cfg.ChunkOverlap)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, ragdoc.ThrottleRate, cfg.Throttle)
		assert.Equal(t, 250*time.Millisecond, cfg.ThrottleDelay)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, ragdoc.SelectorAuto, cfg.Selector)
		assert.Equal(t, ragdoc.FormatMarkdown, cfg.Format)
		assert.Equal(t, "https://docs.example.com/sitemap.xml", cfg.SitemapURL)
		assert.True(t, cfg.Browser)
		assert.Equal(t, ragdoc.BackendSQLite, cfg.IndexBackend)
		assert.Equal(t, "docs", cfg.IndexName)
		assert.Equal(t, "/tmp/docs.db", cfg.SQLitePath)
		assert.Equal(t, ragdoc.MetricDotProduct, cfg.Metric)
		assert.Equal(t, 6, cfg.TopK)
	})

	t.Run("missing keys keep base values", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `[chunking]
batch_size = 50
`)
		base := ragdoc.DefaultConfig()

		cfg, err := toml.LoadConfig(path, base)

		require.NoError(t, err)
		assert.Equal(t, 50, cfg.BatchSize)
		base.BatchSize = 50
		assert.Equal(t, base, cfg)
	})

	t.Run("empty path returns base", func(t *testing.T) {
		t.Parallel()

		cfg, err := toml.LoadConfig("", ragdoc.DefaultConfig())

		require.NoError(t, err)
		assert.Equal(t, ragdoc.DefaultConfig(), cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := toml.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"), ragdoc.DefaultConfig())

		assert.Equal(t, ragdoc.ENOTFOUND, ragdoc.ErrorCode(err))
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `openai_api_key = "sk-secret"`)

		_, err := toml.LoadConfig(path, ragdoc.DefaultConfig())

		assert.Equal(t, ragdoc.ECONFIG, ragdoc.ErrorCode(err))
	})

	t.Run("malformed toml", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `provider = `)

		_, err := toml.LoadConfig(path, ragdoc.DefaultConfig())

		assert.Equal(t, ragdoc.ECONFIG, ragdoc.ErrorCode(err))
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "[crawl]\ntimeout = \"soon\"\n")

		_, err := toml.LoadConfig(path, ragdoc.DefaultConfig())

		assert.Equal(t, ragdoc.ECONFIG, ragdoc.ErrorCode(err))
		assert.Contains(t, ragdoc.ErrorMessage(err), "crawl.timeout")
	})
}
