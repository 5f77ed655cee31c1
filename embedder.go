package ragdoc

import "context"

// DefaultEmbeddingDimension is the vector length of text-embedding-3-small.
const DefaultEmbeddingDimension = 1536

// Embedder turns text into fixed-length vectors.
// The same Embedder and model must be used for indexing and for queries.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
