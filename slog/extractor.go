package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/ragdoc"
)

var _ ragdoc.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor logs content extraction. When a detector is set the
// detected documentation framework is logged too, which helps when tuning
// the auto selector.
type LoggingExtractor struct {
	next     ragdoc.Extractor
	detector ragdoc.FrameworkDetector
	logger   *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor. detector may be nil.
func NewLoggingExtractor(next ragdoc.Extractor, detector ragdoc.FrameworkDetector, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, detector: detector, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the result.
func (e *LoggingExtractor) Extract(html string) (result *ragdoc.ExtractResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"title", titleOf(result),
			"bytes", contentLen(result),
			"duration", time.Since(begin),
			"err", err,
		}
		if e.detector != nil {
			framework := string(e.detector.Detect(html))
			if framework == "" {
				framework = "(unknown)"
			}
			attrs = append(attrs, "framework", framework)
		}
		e.logger.Debug("content extraction", attrs...)
	}(time.Now())
	return e.next.Extract(html)
}

func titleOf(r *ragdoc.ExtractResult) string {
	if r == nil {
		return ""
	}
	return r.Title
}

func contentLen(r *ragdoc.ExtractResult) int {
	if r == nil {
		return 0
	}
	return len(r.ContentHTML)
}
