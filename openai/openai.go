// Package openai provides embeddings and answers from OpenAI models.
package openai

import (
	"context"

	"github.com/fwojciec/ragdoc"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default models.
const (
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultChatModel      = "gpt-4o"
)

// NewClient creates an OpenAI API client. Extra options are passed to the
// SDK, e.g. option.WithBaseURL for compatible endpoints.
func NewClient(apiKey string, opts ...option.RequestOption) (*openai.Client, error) {
	if apiKey == "" {
		return nil, ragdoc.Errorf(ragdoc.ECONFIG, "OPENAI_API_KEY is not set")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &client, nil
}

// Ensure Embedder implements ragdoc.Embedder at compile time.
var _ ragdoc.Embedder = (*Embedder)(nil)

// Embedder implements ragdoc.Embedder with the OpenAI embeddings API.
type Embedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbeddingModel. A positive dimension is requested from models
// that support shortened embeddings.
func NewEmbedder(client *openai.Client, model string, dimension int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, dimension: dimension}
}

// Embed returns one vector per text in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) || vectors[d.Index] != nil {
			return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "openai returned unexpected embedding index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vectors[d.Index] = v
	}
	return vectors, nil
}

// Ensure Generator implements ragdoc.Generator at compile time.
var _ ragdoc.Generator = (*Generator)(nil)

// Generator implements ragdoc.Generator with chat completions.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float64
}

// NewGenerator creates a new Generator. An empty model selects
// DefaultChatModel.
func NewGenerator(client *openai.Client, model string, temperature float64) *Generator {
	if model == "" {
		model = DefaultChatModel
	}
	return &Generator{client: client, model: model, temperature: temperature}
}

// Generate sends prompt as a single user message and returns the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ragdoc.Errorf(ragdoc.EINVALID, "prompt required")
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(g.temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ragdoc.Errorf(ragdoc.EINTERNAL, "openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
