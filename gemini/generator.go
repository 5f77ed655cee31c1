package gemini

import (
	"context"

	"github.com/fwojciec/ragdoc"
	"google.golang.org/genai"
)

// Ensure Generator implements ragdoc.Generator at compile time.
var _ ragdoc.Generator = (*Generator)(nil)

// Generator implements ragdoc.Generator using Google Gemini.
type Generator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGenerator creates a new Generator. An empty model selects
// DefaultChatModel.
func NewGenerator(client *genai.Client, model string, temperature float32) *Generator {
	if model == "" {
		model = DefaultChatModel
	}
	return &Generator{client: client, model: model, temperature: temperature}
}

// Generate returns the model's answer to prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ragdoc.Errorf(ragdoc.EINVALID, "prompt required")
	}

	temp := g.temperature
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: &temp},
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", ragdoc.Errorf(ragdoc.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}
