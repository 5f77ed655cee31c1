// Package index embeds crawled pages and writes them to a vector index.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/ragdoc"
	"github.com/google/uuid"
)

// DefaultBatchSize is the number of chunks embedded and upserted together.
const DefaultBatchSize = 200

// ChunkID returns the stable identifier of the seq-th chunk of sourceURL.
// Re-indexing the same page yields the same IDs, so upserts replace
// earlier entries instead of duplicating them.
func ChunkID(sourceURL string, seq int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL+"#"+strconv.Itoa(seq))).String()
}

// ContentHash returns the hex xxhash of text.
func ContentHash(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// Progress reports a completed batch.
type Progress struct {
	Batch   int // zero-based index of the completed batch
	Batches int // total number of batches
	Chunks  int // chunks upserted so far
	Total   int // total number of chunks
}

// ProgressFunc is called after each batch is upserted.
type ProgressFunc func(Progress)

// Result summarizes a pipeline run.
type Result struct {
	Pages   int // pages with text
	Skipped int // failed or empty pages
	Chunks  int // chunks upserted
	Batches int // batches upserted
	Tokens  int // tokens counted, if a TokenCounter is set
}

// String reports the result as "N chunks in M batches from P pages (S
// skipped)", followed by an approximate token count when one was taken.
func (r Result) String() string {
	s := fmt.Sprintf("%d chunks in %d batches from %d pages (%d skipped)", r.Chunks, r.Batches, r.Pages, r.Skipped)
	switch {
	case r.Tokens >= 1000:
		s += fmt.Sprintf(", ~%dk tokens", (r.Tokens+500)/1000)
	case r.Tokens > 0:
		s += fmt.Sprintf(", ~%d tokens", r.Tokens)
	}
	return s
}

// Pipeline chunks page text, embeds it, and upserts it into an index.
type Pipeline struct {
	Index     ragdoc.IndexService
	Embedder  ragdoc.Embedder
	Spec      ragdoc.IndexSpec
	Namespace string
	Chunking  ragdoc.ChunkOptions
	BatchSize int

	// TokenCounter, if set, counts tokens per chunk for Result.Tokens.
	TokenCounter ragdoc.TokenCounter

	Logger *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// EnsureIndex creates the index if it does not exist. An existing index
// must have the configured dimension or EDIMENSION is returned.
//
// The existence check and creation are not atomic. Two processes
// provisioning the same index concurrently may both attempt creation; the
// loser sees ECONFLICT.
func (p *Pipeline) EnsureIndex(ctx context.Context) error {
	if err := p.Spec.Validate(); err != nil {
		return err
	}

	exists, err := p.Index.IndexExists(ctx, p.Spec.Name)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}

	if exists {
		existing, err := p.Index.DescribeIndex(ctx, p.Spec.Name)
		if err != nil {
			return fmt.Errorf("describe index: %w", err)
		}
		if existing.Dimension != p.Spec.Dimension {
			return ragdoc.Errorf(ragdoc.EDIMENSION, "index %s has dimension %d, configured dimension is %d",
				p.Spec.Name, existing.Dimension, p.Spec.Dimension)
		}
		p.logger().Debug("index exists", "index", p.Spec.Name, "dimension", existing.Dimension)
		return nil
	}

	if err := p.Index.CreateIndex(ctx, p.Spec); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	p.logger().Info("index created", "index", p.Spec.Name, "dimension", p.Spec.Dimension, "metric", p.Spec.Metric)
	return nil
}

// Chunks splits every successful page into chunks, in page order. Failed
// pages and pages with only whitespace are skipped.
func (p *Pipeline) Chunks(pages []ragdoc.PageResult) ([]ragdoc.Chunk, int, error) {
	var chunks []ragdoc.Chunk
	skipped := 0
	for _, page := range pages {
		text, ok := page.Text()
		if !ok || strings.TrimSpace(text) == "" {
			skipped++
			continue
		}
		pageChunks, err := ragdoc.ChunkText(page.URL, text, p.Chunking)
		if err != nil {
			return nil, 0, err
		}
		chunks = append(chunks, pageChunks...)
	}
	return chunks, skipped, nil
}

// Run indexes pages. Batches are processed sequentially; the first batch
// that fails to embed or upsert stops the run with a *ragdoc.BatchError.
// Batches before it remain in the index and are counted in the returned
// Result. A vector of the wrong length fails the run with EDIMENSION.
func (p *Pipeline) Run(ctx context.Context, pages []ragdoc.PageResult, progress ProgressFunc) (*Result, error) {
	if err := p.Chunking.Validate(); err != nil {
		return nil, err
	}
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	chunks, skipped, err := p.Chunks(pages)
	if err != nil {
		return nil, err
	}
	result := &Result{Pages: len(pages) - skipped, Skipped: skipped}

	batches := (len(chunks) + batchSize - 1) / batchSize
	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		lo := b * batchSize
		hi := min(lo+batchSize, len(chunks))
		batch := chunks[lo:hi]

		begin := time.Now()
		if err := p.upsertBatch(ctx, batch); err != nil {
			p.logger().Error("batch failed", "batch", b, "chunks", len(batch), "error", err)
			return result, &ragdoc.BatchError{Batch: b, Err: err}
		}
		p.logger().Debug("batch upserted", "batch", b, "chunks", len(batch), "duration", time.Since(begin))

		result.Batches++
		result.Chunks += len(batch)
		result.Tokens += p.countTokens(ctx, batch)

		if progress != nil {
			progress(Progress{Batch: b, Batches: batches, Chunks: result.Chunks, Total: len(chunks)})
		}
	}

	return result, nil
}

func (p *Pipeline) upsertBatch(ctx context.Context, batch []ragdoc.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := p.Embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(batch) {
		return ragdoc.Errorf(ragdoc.EINTERNAL, "embedder returned %d vectors for %d chunks", len(vectors), len(batch))
	}

	entries := make([]ragdoc.IndexEntry, len(batch))
	for i, c := range batch {
		if len(vectors[i]) != p.Spec.Dimension {
			return ragdoc.Errorf(ragdoc.EDIMENSION, "embedding has dimension %d, index %s expects %d",
				len(vectors[i]), p.Spec.Name, p.Spec.Dimension)
		}
		entries[i] = ragdoc.IndexEntry{
			ID:     ChunkID(c.SourceURL, c.Index),
			Values: vectors[i],
			Metadata: ragdoc.ChunkMetadata{
				Source:      c.SourceURL,
				ChunkIndex:  c.Index,
				Text:        c.Text,
				ContentHash: ContentHash(c.Text),
			},
		}
	}

	if err := p.Index.Upsert(ctx, p.Spec.Name, p.Namespace, entries); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// countTokens is best effort; counting errors are logged and ignored.
func (p *Pipeline) countTokens(ctx context.Context, batch []ragdoc.Chunk) int {
	if p.TokenCounter == nil {
		return 0
	}
	total := 0
	for _, c := range batch {
		n, err := p.TokenCounter.CountTokens(ctx, c.Text)
		if err != nil {
			p.logger().Debug("count tokens", "source", c.SourceURL, "error", err)
			continue
		}
		total += n
	}
	return total
}
