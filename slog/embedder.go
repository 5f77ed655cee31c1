package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/ragdoc"
)

var _ ragdoc.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder logs every embedding request.
type LoggingEmbedder struct {
	next   ragdoc.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next ragdoc.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		dimension := 0
		if len(vectors) > 0 {
			dimension = len(vectors[0])
		}
		e.logger.Debug("embed",
			"texts", len(texts),
			"vectors", len(vectors),
			"dimension", dimension,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts)
}
