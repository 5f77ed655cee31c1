package ragdoc

import "context"

// Generator produces a completion for a prompt using a language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
