package llmprovider

import (
	"context"
	"errors"
)

// ErrNoProvider is returned by NullProvider.Query so callers can
// distinguish "no LLM configured" from a genuine upstream failure and fall
// back to deterministic logic.
var ErrNoProvider = errors.New("llmprovider: no provider configured")

// NullProvider is used, for the whole process, when a provider kind is
// null, empty or unrecognized, or when the Gemini provider is selected
// without an API key. Its presence lets the Extractor and
// Reasoner unconditionally hold a Provider reference and fall back to
// deterministic paths by checking the error, rather than branching on a
// nil interface everywhere.
type NullProvider struct{}

func (NullProvider) Query(ctx context.Context, prompt string) (string, error) {
	return "", ErrNoProvider
}

func (NullProvider) Name() string { return "null" }

func (NullProvider) IsHealthy() bool { return false }
