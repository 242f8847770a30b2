// Package textgen abstracts the text generation backends used for facility
// guidance. Ollama is the default; Gemini can be selected via config.
package textgen

import "context"

// Options tunes a single generation call. Zero values fall back to the
// backend's configured defaults.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	System      string
}

// Generator produces text from a prompt, optionally streaming fragments as
// they arrive. onFragment receives the new delta plus the full text so far.
type Generator interface {
	Available(ctx context.Context) bool
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	GenerateStream(ctx context.Context, prompt string, opts Options, onFragment func(delta, full string)) (string, error)
}
