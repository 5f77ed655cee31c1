package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/ragdoc"
)

var (
	_ ragdoc.Fetcher      = (*Fetcher)(nil)
	_ ragdoc.Embedder     = (*Embedder)(nil)
	_ ragdoc.IndexService = (*IndexService)(nil)
	_ ragdoc.Generator    = (*Generator)(nil)
)

// Fetcher records fetch counts, latency and size.
type Fetcher struct {
	next    ragdoc.Fetcher
	metrics *Metrics
}

// NewFetcher wraps next.
func NewFetcher(next ragdoc.Fetcher, m *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: m}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.metrics.FetchDuration.Observe(since(begin))
		f.metrics.Fetches.WithLabelValues(outcome(err)).Inc()
		f.metrics.FetchBytes.Add(float64(len(html)))
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.next.Close()
}

// Embedder records embedding requests and the number of texts embedded.
type Embedder struct {
	next    ragdoc.Embedder
	metrics *Metrics
}

// NewEmbedder wraps next.
func NewEmbedder(next ragdoc.Embedder, m *Metrics) *Embedder {
	return &Embedder{next: next, metrics: m}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		e.metrics.EmbedDuration.Observe(since(begin))
		e.metrics.EmbedRequests.WithLabelValues(outcome(err)).Inc()
		if err == nil {
			e.metrics.EmbedTexts.Add(float64(len(texts)))
		}
	}(time.Now())
	return e.next.Embed(ctx, texts)
}

// IndexService records every vector index call by operation.
type IndexService struct {
	next    ragdoc.IndexService
	metrics *Metrics
}

// NewIndexService wraps next.
func NewIndexService(next ragdoc.IndexService, m *Metrics) *IndexService {
	return &IndexService{next: next, metrics: m}
}

func (s *IndexService) observe(op string, begin time.Time, err error) {
	s.metrics.IndexDuration.WithLabelValues(op).Observe(since(begin))
	s.metrics.IndexOps.WithLabelValues(op, outcome(err)).Inc()
}

func (s *IndexService) IndexExists(ctx context.Context, name string) (_ bool, err error) {
	defer func(begin time.Time) { s.observe("exists", begin, err) }(time.Now())
	return s.next.IndexExists(ctx, name)
}

func (s *IndexService) DescribeIndex(ctx context.Context, name string) (_ *ragdoc.IndexSpec, err error) {
	defer func(begin time.Time) { s.observe("describe", begin, err) }(time.Now())
	return s.next.DescribeIndex(ctx, name)
}

func (s *IndexService) CreateIndex(ctx context.Context, spec ragdoc.IndexSpec) (err error) {
	defer func(begin time.Time) { s.observe("create", begin, err) }(time.Now())
	return s.next.CreateIndex(ctx, spec)
}

func (s *IndexService) Upsert(ctx context.Context, index, namespace string, entries []ragdoc.IndexEntry) (err error) {
	defer func(begin time.Time) { s.observe("upsert", begin, err) }(time.Now())
	return s.next.Upsert(ctx, index, namespace, entries)
}

func (s *IndexService) Query(ctx context.Context, index, namespace string, vector []float32, topK int) (_ []ragdoc.Match, err error) {
	defer func(begin time.Time) { s.observe("query", begin, err) }(time.Now())
	return s.next.Query(ctx, index, namespace, vector, topK)
}

// Generator records completion counts and latency.
type Generator struct {
	next    ragdoc.Generator
	metrics *Metrics
}

// NewGenerator wraps next.
func NewGenerator(next ragdoc.Generator, m *Metrics) *Generator {
	return &Generator{next: next, metrics: m}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (_ string, err error) {
	defer func(begin time.Time) {
		g.metrics.GenerationTime.Observe(since(begin))
		g.metrics.Generations.WithLabelValues(outcome(err)).Inc()
	}(time.Now())
	return g.next.Generate(ctx, prompt)
}
