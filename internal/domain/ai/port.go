package ai

import "context"

// Generator port (external generative-text service)
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
