package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/crawl"
	"github.com/fwojciec/ragdoc/gemini"
	"github.com/fwojciec/ragdoc/goquery"
	"github.com/fwojciec/ragdoc/htmltomarkdown"
	raghttp "github.com/fwojciec/ragdoc/http"
	"github.com/fwojciec/ragdoc/index"
	"github.com/fwojciec/ragdoc/openai"
	"github.com/fwojciec/ragdoc/pinecone"
	ragprom "github.com/fwojciec/ragdoc/prometheus"
	"github.com/fwojciec/ragdoc/rag"
	"github.com/fwojciec/ragdoc/rod"
	ragslog "github.com/fwojciec/ragdoc/slog"
	"github.com/fwojciec/ragdoc/sqlite"
	"github.com/fwojciec/ragdoc/trafilatura"
)

// newCrawler builds the crawler. The fetcher is closed by Main.Close.
func (m *Main) newCrawler(cfg ragdoc.Config, logger *slog.Logger, metrics *ragprom.Metrics) (*crawl.Crawler, error) {
	throttle, err := crawl.NewThrottle(cfg.Throttle, cfg.ThrottleDelay)
	if err != nil {
		return nil, err
	}

	httpFetcher := raghttp.NewFetcher(
		raghttp.WithTimeout(cfg.Timeout),
		raghttp.WithUserAgent(cfg.UserAgent),
	)

	sitemaps := m.Sitemaps
	if sitemaps == nil {
		sitemaps = raghttp.NewSitemapService(httpFetcher.Client(), cfg.UserAgent)
	}

	fetcher := m.Fetcher
	if fetcher == nil && cfg.Browser {
		rodFetcher, err := rod.NewFetcher(
			rod.WithTimeout(cfg.Timeout),
			rod.WithUserAgent(cfg.UserAgent),
			rod.WithMaxPages(cfg.Workers),
		)
		if err != nil {
			return nil, ragdoc.Errorf(ragdoc.ECONFIG, "failed to start browser (Chrome or Chromium must be installed): %v", err)
		}
		fetcher = rodFetcher
	} else if fetcher == nil {
		fetcher = httpFetcher
	}

	fetcher = ragslog.NewLoggingFetcher(fetcher, logger)
	if metrics != nil {
		fetcher = ragprom.NewFetcher(fetcher, metrics)
	}
	if cfg.Retries > 0 {
		fetcher = crawl.NewRetryFetcher(fetcher, crawl.RetryDelays(cfg.Retries), logger)
	}
	m.closers = append(m.closers, fetcher)

	return &crawl.Crawler{
		Sitemaps: ragslog.NewLoggingSitemapService(sitemaps, logger),
		Fetcher:  fetcher,
		Content:  newContentExtractor(cfg, logger),
		Throttle: throttle,
		Workers:  cfg.Workers,
	}, nil
}

// newContentExtractor picks the extractor from the selector and the
// converter from the format. An empty selector uses boilerplate removal.
func newContentExtractor(cfg ragdoc.Config, logger *slog.Logger) *crawl.ContentExtractor {
	var extractor ragdoc.Extractor
	if cfg.Selector == "" {
		extractor = trafilatura.NewExtractor()
	} else {
		extractor = goquery.NewExtractor(cfg.Selector)
	}

	var detector ragdoc.FrameworkDetector
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		detector = goquery.NewDetector()
	}

	var converter ragdoc.Converter = goquery.NewTextConverter()
	if cfg.Format == ragdoc.FormatMarkdown {
		converter = htmltomarkdown.NewConverter()
	}

	return &crawl.ContentExtractor{
		Extractor: ragslog.NewLoggingExtractor(extractor, detector, logger),
		Converter: converter,
		MaxLength: cfg.MaxTextLength,
	}
}

// newModels returns the embedder and generator of the configured provider.
func (m *Main) newModels(ctx context.Context, cfg ragdoc.Config, logger *slog.Logger, metrics *ragprom.Metrics) (ragdoc.Embedder, ragdoc.Generator, error) {
	embedder, generator := m.Embedder, m.Generator
	if embedder == nil || generator == nil {
		switch cfg.Provider {
		case ragdoc.ProviderOpenAI:
			client, err := openai.NewClient(cfg.OpenAIAPIKey)
			if err != nil {
				return nil, nil, err
			}
			if embedder == nil {
				embedder = openai.NewEmbedder(client, cfg.EmbeddingModel, cfg.Dimension)
			}
			if generator == nil {
				generator = openai.NewGenerator(client, cfg.ChatModel, cfg.Temperature)
			}
		case ragdoc.ProviderGemini:
			client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
			if err != nil {
				return nil, nil, err
			}
			if embedder == nil {
				embedder = gemini.NewEmbedder(client, cfg.EmbeddingModel, cfg.Dimension)
			}
			if generator == nil {
				generator = gemini.NewGenerator(client, cfg.ChatModel, float32(cfg.Temperature))
			}
		default:
			return nil, nil, ragdoc.Errorf(ragdoc.ECONFIG, "unknown provider %q", cfg.Provider)
		}
	}

	embedder = ragslog.NewLoggingEmbedder(embedder, logger)
	generator = ragslog.NewLoggingGenerator(generator, logger)
	if metrics != nil {
		embedder = ragprom.NewEmbedder(embedder, metrics)
		generator = ragprom.NewGenerator(generator, metrics)
	}
	return embedder, generator, nil
}

// newIndexService opens the configured vector index backend.
func (m *Main) newIndexService(cfg ragdoc.Config, logger *slog.Logger, metrics *ragprom.Metrics) (ragdoc.IndexService, error) {
	svc := m.Index
	if svc == nil {
		switch cfg.IndexBackend {
		case ragdoc.BackendPinecone:
			pc, err := pinecone.NewIndexService(cfg.PineconeAPIKey, &http.Client{Timeout: cfg.Timeout})
			if err != nil {
				return nil, err
			}
			m.closers = append(m.closers, pc)
			svc = pc
		case ragdoc.BackendSQLite:
			db := sqlite.NewDB(cfg.SQLitePath)
			if err := db.Open(); err != nil {
				return nil, fmt.Errorf("failed to open index database at %q: %w", cfg.SQLitePath, err)
			}
			m.closers = append(m.closers, db)
			svc = sqlite.NewIndexService(db)
		default:
			return nil, ragdoc.Errorf(ragdoc.ECONFIG, "unknown index backend %q", cfg.IndexBackend)
		}
	}

	svc = ragslog.NewLoggingIndexService(svc, logger)
	if metrics != nil {
		svc = ragprom.NewIndexService(svc, metrics)
	}
	return svc, nil
}

// tokenCounter returns the counter for indexing statistics. The local
// tokenizer only covers Gemini models; other providers report no tokens.
func (m *Main) tokenCounter(cfg ragdoc.Config, logger *slog.Logger) ragdoc.TokenCounter {
	if m.TokenCounter != nil {
		return m.TokenCounter
	}
	if cfg.Provider != ragdoc.ProviderGemini {
		return nil
	}
	tc, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
	if err != nil {
		logger.Debug("token counting disabled", "err", err)
		return nil
	}
	return tc
}

func (m *Main) newPipeline(ctx context.Context, cfg ragdoc.Config, logger *slog.Logger, metrics *ragprom.Metrics) (*index.Pipeline, error) {
	embedder, _, err := m.newModels(ctx, cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	svc, err := m.newIndexService(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	return &index.Pipeline{
		Index:        svc,
		Embedder:     embedder,
		Spec:         cfg.IndexSpec(),
		Namespace:    cfg.Namespace,
		Chunking:     cfg.ChunkOptions(),
		BatchSize:    cfg.BatchSize,
		TokenCounter: m.tokenCounter(cfg, logger),
		Logger:       logger,
	}, nil
}

func (m *Main) newEngine(ctx context.Context, cfg ragdoc.Config, logger *slog.Logger, metrics *ragprom.Metrics) (*rag.Engine, error) {
	embedder, generator, err := m.newModels(ctx, cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	svc, err := m.newIndexService(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	return &rag.Engine{
		Embedder:  embedder,
		Index:     svc,
		Generator: generator,
		IndexName: cfg.IndexName,
		Namespace: cfg.Namespace,
		TopK:      cfg.TopK,
		Subject:   cfg.Subject,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	}, nil
}
