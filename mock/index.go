package mock

import (
	"context"

	"github.com/fwojciec/ragdoc"
)

var _ ragdoc.IndexService = (*IndexService)(nil)

// IndexService is a mock implementation of ragdoc.IndexService.
type IndexService struct {
	IndexExistsFn   func(ctx context.Context, name string) (bool, error)
	DescribeIndexFn func(ctx context.Context, name string) (*ragdoc.IndexSpec, error)
	CreateIndexFn   func(ctx context.Context, spec ragdoc.IndexSpec) error
	UpsertFn        func(ctx context.Context, index, namespace string, entries []ragdoc.IndexEntry) error
	QueryFn         func(ctx context.Context, index, namespace string, vector []float32, topK int) ([]ragdoc.Match, error)
}

func (s *IndexService) IndexExists(ctx context.Context, name string) (bool, error) {
	return s.IndexExistsFn(ctx, name)
}

func (s *IndexService) DescribeIndex(ctx context.Context, name string) (*ragdoc.IndexSpec, error) {
	return s.DescribeIndexFn(ctx, name)
}

func (s *IndexService) CreateIndex(ctx context.Context, spec ragdoc.IndexSpec) error {
	return s.CreateIndexFn(ctx, spec)
}

func (s *IndexService) Upsert(ctx context.Context, index, namespace string, entries []ragdoc.IndexEntry) error {
	return s.UpsertFn(ctx, index, namespace, entries)
}

func (s *IndexService) Query(ctx context.Context, index, namespace string, vector []float32, topK int) ([]ragdoc.Match, error) {
	return s.QueryFn(ctx, index, namespace, vector, topK)
}
