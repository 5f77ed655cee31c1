package ragdoc

import "context"

// Metric is the similarity function of a vector index.
type Metric string

// Supported metrics.
const (
	MetricCosine     Metric = "cosine"
	MetricDotProduct Metric = "dotproduct"
	MetricEuclidean  Metric = "euclidean"
)

// Validate returns an error if the metric is not supported.
func (m Metric) Validate() error {
	switch m {
	case MetricCosine, MetricDotProduct, MetricEuclidean:
		return nil
	}
	return Errorf(EINVALID, "unsupported metric %q", m)
}

// IndexSpec describes a vector index.
type IndexSpec struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    Metric `json:"metric"`
	Cloud     string `json:"cloud,omitempty"`
	Region    string `json:"region,omitempty"`
}

// Validate returns an error if the spec contains invalid fields.
func (s IndexSpec) Validate() error {
	if s.Name == "" {
		return Errorf(EINVALID, "index name required")
	}
	if s.Dimension <= 0 {
		return Errorf(EINVALID, "index dimension must be positive, got %d", s.Dimension)
	}
	return s.Metric.Validate()
}

// ChunkMetadata is stored alongside each vector.
type ChunkMetadata struct {
	Source      string `json:"source"`
	ChunkIndex  int    `json:"chunk_index"`
	Text        string `json:"text"`
	ContentHash string `json:"content_hash,omitempty"`
}

// IndexEntry is a vector with its identity and metadata.
type IndexEntry struct {
	ID       string
	Values   []float32
	Metadata ChunkMetadata
}

// Match is a query result.
type Match struct {
	ID       string
	Score    float32
	Metadata ChunkMetadata
}

// IndexService manages vector indexes.
// Implementations must make Upsert idempotent: writing an ID that already
// exists in the namespace replaces it.
type IndexService interface {
	// IndexExists reports whether an index with the given name exists.
	IndexExists(ctx context.Context, name string) (bool, error)

	// DescribeIndex returns the spec of an existing index.
	// Returns ENOTFOUND if the index does not exist.
	DescribeIndex(ctx context.Context, name string) (*IndexSpec, error)

	// CreateIndex creates a new index. Creating an index that already
	// exists returns ECONFLICT.
	CreateIndex(ctx context.Context, spec IndexSpec) error

	// Upsert inserts or replaces entries in a namespace of the index.
	Upsert(ctx context.Context, index, namespace string, entries []IndexEntry) error

	// Query returns at most topK entries from the namespace ordered by
	// non-increasing similarity to vector.
	Query(ctx context.Context, index, namespace string, vector []float32, topK int) ([]Match, error)
}
