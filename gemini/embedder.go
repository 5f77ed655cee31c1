package gemini

import (
	"context"

	"github.com/fwojciec/ragdoc"
	"google.golang.org/genai"
)

// maxEmbedBatch is the most texts the Gemini API embeds per request.
const maxEmbedBatch = 100

// Ensure Embedder implements ragdoc.Embedder at compile time.
var _ ragdoc.Embedder = (*Embedder)(nil)

// Embedder implements ragdoc.Embedder using Gemini embedding models.
type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbeddingModel. A positive dimension asks the model to truncate
// its output to that many values.
func NewEmbedder(client *genai.Client, model string, dimension int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, dimension: dimension}
}

// Embed returns one vector per text in input order. Inputs larger than
// the API batch limit are sent in several requests.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	config := &genai.EmbedContentConfig{}
	if e.dimension > 0 {
		dim := int32(e.dimension)
		config.OutputDimensionality = &dim
	}

	vectors := make([][]float32, 0, len(texts))
	for lo := 0; lo < len(texts); lo += maxEmbedBatch {
		hi := min(lo+maxEmbedBatch, len(texts))

		contents := make([]*genai.Content, 0, hi-lo)
		for _, t := range texts[lo:hi] {
			contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
		}

		resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, config)
		if err != nil {
			return nil, err
		}
		if resp == nil || len(resp.Embeddings) != hi-lo {
			return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "gemini returned wrong number of embeddings")
		}
		for _, emb := range resp.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}

	return vectors, nil
}
