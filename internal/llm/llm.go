// Package llm abstracts the generation collaborator: one prompt in, one
// free-text completion out. Anthropic is the default backend; Ollama serves
// fully local setups.
package llm

import "context"

// Generator produces a completion for a single prompt. Implementations do
// not retry; retry policy belongs to the caller.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
