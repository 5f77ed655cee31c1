// Package rag answers questions from a vector index with a language model.
package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/ragdoc"
)

// Ensure Engine implements ragdoc.Asker at compile time.
var _ ragdoc.Asker = (*Engine)(nil)

// Engine embeds a question, retrieves the closest chunks, and asks the
// generator to answer from them.
//
// Embedder must be the embedder, with the same model, used to build the
// index. Vectors from different models are not comparable.
type Engine struct {
	Embedder  ragdoc.Embedder
	Index     ragdoc.IndexService
	Generator ragdoc.Generator

	IndexName string
	Namespace string
	TopK      int
	Subject   string

	// Timeout bounds each external call separately. Zero means no limit
	// beyond the caller's context.
	Timeout time.Duration

	Logger *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Engine) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.Timeout)
}

// Ask answers question. Errors are *ragdoc.QueryError values whose State
// is the last state reached before the failure.
func (e *Engine) Ask(ctx context.Context, question string) (*ragdoc.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ragdoc.QueryError{
			State: ragdoc.QueryReceived,
			Err:   ragdoc.Errorf(ragdoc.EINVALID, "question required"),
		}
	}

	log := e.logger().With("index", e.IndexName, "namespace", e.Namespace)
	state := ragdoc.QueryReceived
	fail := func(err error) error {
		log.Debug("query state", "state", ragdoc.QueryFailed, "after", state, "error", err)
		return &ragdoc.QueryError{State: state, Err: err}
	}

	vector, err := e.embed(ctx, question)
	if err != nil {
		return nil, fail(err)
	}
	state = ragdoc.QueryEmbedded
	log.Debug("query state", "state", state, "dimension", len(vector))

	matches, err := e.retrieve(ctx, vector)
	if err != nil {
		return nil, fail(err)
	}
	state = ragdoc.QueryRetrieved
	log.Debug("query state", "state", state, "matches", len(matches))

	prompt := ragdoc.BuildPrompt(ragdoc.PromptInput{
		Subject:  e.Subject,
		Context:  ragdoc.FormatContext(matches),
		Question: question,
	})

	text, err := e.generate(ctx, prompt)
	if err != nil {
		return nil, fail(err)
	}
	state = ragdoc.QueryAnswered
	log.Debug("query state", "state", state, "length", len(text))

	sources := make([]ragdoc.Source, len(matches))
	for i, m := range matches {
		sources[i] = ragdoc.Source{URL: m.Metadata.Source, ChunkIndex: m.Metadata.ChunkIndex, Score: m.Score}
	}
	return &ragdoc.Answer{Text: text, Sources: sources, State: state}, nil
}

func (e *Engine) embed(ctx context.Context, question string) ([]float32, error) {
	ctx, cancel := e.bounded(ctx)
	defer cancel()

	vectors, err := e.Embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "embedder returned %d vectors for 1 question", len(vectors))
	}
	return vectors[0], nil
}

func (e *Engine) retrieve(ctx context.Context, vector []float32) ([]ragdoc.Match, error) {
	ctx, cancel := e.bounded(ctx)
	defer cancel()

	topK := e.TopK
	if topK <= 0 {
		topK = ragdoc.DefaultTopK
	}
	matches, err := e.Index.Query(ctx, e.IndexName, e.Namespace, vector, topK)
	if err != nil {
		return nil, err
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := e.bounded(ctx)
	defer cancel()

	return e.Generator.Generate(ctx, prompt)
}
