package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/ragdoc"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultTokenizerModel is a model supported by the local tokenizer.
const DefaultTokenizerModel = "gemini-2.0-flash"

var _ ragdoc.TokenCounter = (*TokenCounter)(nil)

// TokenCounter estimates chunk sizes in tokens offline with the Gemini
// tokenizer. It never calls the API.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a TokenCounter for model, or for
// DefaultTokenizerModel when model is empty.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultTokenizerModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.ECONFIG, "tokenizer for %s: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the number of tokens in text. Blank text has none.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
