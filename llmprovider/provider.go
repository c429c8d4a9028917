// Package llmprovider abstracts the language model backend used by the
// Extractor (structured extraction from free text) and the deep Reasoner
// (contradiction/misalignment analysis). Both components share this
// interface so the process can be configured with Bedrock, Gemini, or no
// provider at all without either component knowing which.
package llmprovider

import "context"

// Provider queries a language model with a prompt and returns its raw text
// response. Implementations must be safe for concurrent use.
type Provider interface {
	// Query sends prompt to the model and returns its completion text.
	Query(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider for logging and metrics.
	Name() string
	// IsHealthy reports whether the provider is currently usable. The
	// Bedrock and Gemini providers start out healthy, turn unhealthy when a
	// request to their backend fails and healthy again when one succeeds;
	// NullProvider always reports unhealthy.
	IsHealthy() bool
}
