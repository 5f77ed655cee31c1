package crawl

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/ragdoc"
	"golang.org/x/time/rate"
)

var (
	_ ragdoc.Throttle = NoThrottle{}
	_ ragdoc.Throttle = (*CompletionDelay)(nil)
	_ ragdoc.Throttle = (*RateThrottle)(nil)
)

// NewThrottle returns the throttle for a policy name (see ragdoc.Throttle*
// constants).
func NewThrottle(policy string, delay time.Duration) (ragdoc.Throttle, error) {
	switch policy {
	case ragdoc.ThrottleCompletion:
		return &CompletionDelay{Delay: delay}, nil
	case ragdoc.ThrottleRate:
		return NewRateThrottle(delay), nil
	case ragdoc.ThrottleNone:
		return NoThrottle{}, nil
	}
	return nil, ragdoc.Errorf(ragdoc.ECONFIG, "unknown throttle policy %q", policy)
}

// NoThrottle does not pace requests.
type NoThrottle struct{}

func (NoThrottle) Before(context.Context, string) error { return nil }
func (NoThrottle) After(context.Context) error          { return nil }

// CompletionDelay makes each worker pause for Delay after finishing a page.
// With N workers the request rate is bounded only loosely, by roughly
// N per (Delay + page time).
type CompletionDelay struct {
	Delay time.Duration
}

func (d *CompletionDelay) Before(context.Context, string) error { return nil }

// After sleeps for Delay or until ctx is done.
func (d *CompletionDelay) After(ctx context.Context) error {
	if d.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(d.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RateThrottle enforces a minimum interval between requests to the same
// host using token buckets, independent of the number of workers.
type RateThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewRateThrottle creates a RateThrottle allowing one request per interval
// per host, with no bursting.
func NewRateThrottle(interval time.Duration) *RateThrottle {
	return &RateThrottle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(interval),
	}
}

// Before blocks until the host of rawURL may be requested.
// Returns an error if the context is canceled before the wait completes.
func (r *RateThrottle) Before(ctx context.Context, rawURL string) error {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	r.mu.Lock()
	limiter, ok := r.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(r.limit, 1)
		r.limiters[host] = limiter
	}
	r.mu.Unlock()

	return limiter.Wait(ctx)
}

func (r *RateThrottle) After(context.Context) error { return nil }
