// Package toml reads ragdoc configuration files.
package toml

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/fwojciec/ragdoc"
	gotoml "github.com/pelletier/go-toml/v2"
)

// file mirrors ragdoc.Config. Pointer fields distinguish unset keys from
// zero values; durations are strings such as "100ms".
type file struct {
	Provider       *string  `toml:"provider"`
	EmbeddingModel *string  `toml:"embedding_model"`
	Dimension      *int     `toml:"dimension"`
	ChatModel      *string  `toml:"chat_model"`
	Temperature    *float64 `toml:"temperature"`
	Subject        *string  `toml:"subject"`

	Chunking struct {
		Size      *int `toml:"size"`
		Overlap   *int `toml:"overlap"`
		BatchSize *int `toml:"batch_size"`
	} `toml:"chunking"`

	Crawl struct {
		Workers       *int    `toml:"workers"`
		Throttle      *string `toml:"throttle"`
		ThrottleDelay *string `toml:"throttle_delay"`
		Timeout       *string `toml:"timeout"`
		Retries       *int    `toml:"retries"`
		UserAgent     *string `toml:"user_agent"`
		Selector      *string `toml:"selector"`
		Format        *string `toml:"format"`
		MaxTextLength *int    `toml:"max_text_length"`
		Browser       *bool   `toml:"browser"`
		Corpus        *string `toml:"corpus"`
		Sitemap       *string `toml:"sitemap"`
	} `toml:"crawl"`

	Index struct {
		Backend    *string `toml:"backend"`
		Name       *string `toml:"name"`
		Namespace  *string `toml:"namespace"`
		Metric     *string `toml:"metric"`
		Cloud      *string `toml:"cloud"`
		Region     *string `toml:"region"`
		SQLitePath *string `toml:"sqlite_path"`
		TopK       *int    `toml:"top_k"`
	} `toml:"index"`
}

// LoadConfig overlays the TOML file at path on base. Keys missing from the
// file keep their base value. Secrets are never read from the file; they
// come from the environment.
//
// An empty path returns base unchanged. A missing file returns ENOTFOUND.
// Unknown keys and malformed values return ECONFIG.
func LoadConfig(path string, base ragdoc.Config) (ragdoc.Config, error) {
	if path == "" {
		return base, nil
	}

	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return base, ragdoc.Errorf(ragdoc.ENOTFOUND, "config file %s not found", path)
	} else if err != nil {
		return base, err
	}
	defer fh.Close()

	var f file
	dec := gotoml.NewDecoder(fh).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return base, decodeError(path, err)
	}

	return f.apply(base)
}

func decodeError(path string, err error) error {
	var strict *gotoml.StrictMissingError
	if errors.As(err, &strict) {
		return ragdoc.Errorf(ragdoc.ECONFIG, "config file %s: %s", path, strict.String())
	}
	var derr *gotoml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return ragdoc.Errorf(ragdoc.ECONFIG, "config file %s:%d:%d: %s", path, row, col, derr.Error())
	}
	return ragdoc.Errorf(ragdoc.ECONFIG, "config file %s: %v", path, err)
}

func (f *file) apply(c ragdoc.Config) (ragdoc.Config, error) {
	setString(&c.Provider, f.Provider)
	setString(&c.EmbeddingModel, f.EmbeddingModel)
	setInt(&c.Dimension, f.Dimension)
	setString(&c.ChatModel, f.ChatModel)
	if f.Temperature != nil {
		c.Temperature = *f.Temperature
	}
	setString(&c.Subject, f.Subject)

	setInt(&c.ChunkSize, f.Chunking.Size)
	setInt(&c.ChunkOverlap, f.Chunking.Overlap)
	setInt(&c.BatchSize, f.Chunking.BatchSize)

	setInt(&c.Workers, f.Crawl.Workers)
	setString(&c.Throttle, f.Crawl.Throttle)
	if err := setDuration(&c.ThrottleDelay, "crawl.throttle_delay", f.Crawl.ThrottleDelay); err != nil {
		return c, err
	}
	if err := setDuration(&c.Timeout, "crawl.timeout", f.Crawl.Timeout); err != nil {
		return c, err
	}
	setInt(&c.Retries, f.Crawl.Retries)
	setString(&c.UserAgent, f.Crawl.UserAgent)
	setString(&c.Selector, f.Crawl.Selector)
	setString(&c.Format, f.Crawl.Format)
	setInt(&c.MaxTextLength, f.Crawl.MaxTextLength)
	if f.Crawl.Browser != nil {
		c.Browser = *f.Crawl.Browser
	}
	setString(&c.CorpusPath, f.Crawl.Corpus)
	setString(&c.SitemapURL, f.Crawl.Sitemap)

	setString(&c.IndexBackend, f.Index.Backend)
	setString(&c.IndexName, f.Index.Name)
	setString(&c.Namespace, f.Index.Namespace)
	if f.Index.Metric != nil {
		c.Metric = ragdoc.Metric(*f.Index.Metric)
	}
	setString(&c.Cloud, f.Index.Cloud)
	setString(&c.Region, f.Index.Region)
	setString(&c.SQLitePath, f.Index.SQLitePath)
	setInt(&c.TopK, f.Index.TopK)

	return c, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, key string, v *string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return ragdoc.Errorf(ragdoc.ECONFIG, "%s must be a duration, got %q", key, *v)
	}
	*dst = d
	return nil
}
