//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemini_Integration(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gemini.NewClient(ctx, apiKey)
	require.NoError(t, err)

	t.Run("embeds with the requested dimension", func(t *testing.T) {
		vectors, err := gemini.NewEmbedder(client, "", ragdoc.DefaultEmbeddingDimension).Embed(ctx, []string{"hello", "world"})
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Len(t, vectors[0], ragdoc.DefaultEmbeddingDimension)
	})

	t.Run("answers from the prompt", func(t *testing.T) {
		prompt := ragdoc.BuildPrompt(ragdoc.PromptInput{
			Subject:  "ragdoc",
			Context:  "Run `ragdoc crawl https://example.com/sitemap.xml` to crawl a site.",
			Question: "How do I crawl a site?",
		})
		answer, err := gemini.NewGenerator(client, "", 0.2).Generate(ctx, prompt)
		require.NoError(t, err)
		assert.Contains(t, answer, "ragdoc crawl")
	})
}
