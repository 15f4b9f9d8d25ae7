package driven

import "context"

// LLMService provides grounded text generation for answer synthesis.
// This is an optional service - when nil or unreachable, the pipeline
// reports the outage in-band inside the answer text.
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens bounds the generated output length.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// TopK restricts sampling to the K most likely tokens (0 = backend default).
	TopK int

	// TopP restricts sampling to the smallest probability mass >= TopP.
	TopP float64
}
