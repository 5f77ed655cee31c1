// Package gemini provides embeddings, answers and token counts from Google
// Gemini models.
package gemini

import (
	"context"
	"os"

	"github.com/fwojciec/ragdoc"
	"google.golang.org/genai"
)

// Default models.
const (
	DefaultChatModel      = "gemini-2.5-flash"
	DefaultEmbeddingModel = "gemini-embedding-001"
)

// NewClient creates a Gemini API client. An empty apiKey falls back to the
// GEMINI_API_KEY environment variable.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, ragdoc.Errorf(ragdoc.ECONFIG, "GEMINI_API_KEY is not set")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}
