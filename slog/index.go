package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/ragdoc"
)

var _ ragdoc.IndexService = (*LoggingIndexService)(nil)

// LoggingIndexService logs calls to a vector index. Provisioning and
// writes are logged at info level, queries at debug.
type LoggingIndexService struct {
	next   ragdoc.IndexService
	logger *slog.Logger
}

// NewLoggingIndexService creates a new LoggingIndexService.
func NewLoggingIndexService(next ragdoc.IndexService, logger *slog.Logger) *LoggingIndexService {
	return &LoggingIndexService{next: next, logger: logger}
}

func (s *LoggingIndexService) IndexExists(ctx context.Context, name string) (exists bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("index exists",
			"index", name,
			"exists", exists,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.IndexExists(ctx, name)
}

func (s *LoggingIndexService) DescribeIndex(ctx context.Context, name string) (spec *ragdoc.IndexSpec, err error) {
	defer func(begin time.Time) {
		dimension := 0
		if spec != nil {
			dimension = spec.Dimension
		}
		s.logger.Debug("describe index",
			"index", name,
			"dimension", dimension,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DescribeIndex(ctx, name)
}

func (s *LoggingIndexService) CreateIndex(ctx context.Context, spec ragdoc.IndexSpec) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create index",
			"index", spec.Name,
			"dimension", spec.Dimension,
			"metric", spec.Metric,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateIndex(ctx, spec)
}

func (s *LoggingIndexService) Upsert(ctx context.Context, index, namespace string, entries []ragdoc.IndexEntry) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("upsert",
			"index", index,
			"namespace", namespace,
			"entries", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Upsert(ctx, index, namespace, entries)
}

func (s *LoggingIndexService) Query(ctx context.Context, index, namespace string, vector []float32, topK int) (matches []ragdoc.Match, err error) {
	defer func(begin time.Time) {
		var best float32
		if len(matches) > 0 {
			best = matches[0].Score
		}
		s.logger.Debug("query",
			"index", index,
			"namespace", namespace,
			"topK", topK,
			"matches", len(matches),
			"best", best,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Query(ctx, index, namespace, vector, topK)
}
