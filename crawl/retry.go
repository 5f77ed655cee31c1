package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/ragdoc"
)

var _ ragdoc.Fetcher = (*RetryFetcher)(nil)

// RetryDelays returns n backoff delays doubling from one second: 1s, 2s, 4s...
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = time.Second << i
	}
	return delays
}

// RetryFetcher retries a failed fetch once per delay, waiting the delay
// before each new attempt. Context errors are never retried.
type RetryFetcher struct {
	next   ragdoc.Fetcher
	delays []time.Duration
	logger *slog.Logger
}

// NewRetryFetcher wraps next. A nil logger disables retry logging.
func NewRetryFetcher(next ragdoc.Fetcher, delays []time.Duration, logger *slog.Logger) *RetryFetcher {
	return &RetryFetcher{next: next, delays: delays, logger: logger}
}

// Fetch returns the first successful fetch, or the last error.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		html, err := f.next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= len(f.delays) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", lastErr
		}

		if f.logger != nil {
			f.logger.Debug("retry fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		t := time.NewTimer(f.delays[attempt])
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
}

// Close delegates to the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}
