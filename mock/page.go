package mock

import (
	"context"

	"github.com/fwojciec/ragdoc"
)

var (
	_ ragdoc.CorpusWriter = (*CorpusWriter)(nil)
	_ ragdoc.Throttle     = (*Throttle)(nil)
	_ ragdoc.TokenCounter = (*TokenCounter)(nil)
)

// CorpusWriter is a mock implementation of ragdoc.CorpusWriter.
type CorpusWriter struct {
	SaveFn   func(ctx context.Context, result ragdoc.PageResult) error
	CommitFn func() error
	AbortFn  func() error
}

func (w *CorpusWriter) Save(ctx context.Context, result ragdoc.PageResult) error {
	return w.SaveFn(ctx, result)
}

func (w *CorpusWriter) Commit() error {
	return w.CommitFn()
}

func (w *CorpusWriter) Abort() error {
	return w.AbortFn()
}

// Throttle is a mock implementation of ragdoc.Throttle.
type Throttle struct {
	BeforeFn func(ctx context.Context, url string) error
	AfterFn  func(ctx context.Context) error
}

func (t *Throttle) Before(ctx context.Context, url string) error {
	return t.BeforeFn(ctx, url)
}

func (t *Throttle) After(ctx context.Context) error {
	return t.AfterFn(ctx)
}

// TokenCounter is a mock implementation of ragdoc.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
