package mock

import (
	"context"

	"github.com/fwojciec/ragdoc"
)

var (
	_ ragdoc.Generator = (*Generator)(nil)
	_ ragdoc.Asker     = (*Asker)(nil)
)

// Generator is a mock implementation of ragdoc.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateFn(ctx, prompt)
}

// Asker is a mock implementation of ragdoc.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string) (*ragdoc.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, question string) (*ragdoc.Answer, error) {
	return a.AskFn(ctx, question)
}
