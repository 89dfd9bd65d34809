package ai

import "context"

// Generator is the single boundary to a language model. Implementations send
// one system instruction plus one user message and return the raw text reply.
type Generator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
	Model() string
}
