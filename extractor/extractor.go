// Package extractor implements the Extractor (component C): it turns a
// free-text decision description into a structured decision.Decision by
// querying a language model, retrying on malformed output, and falling
// back to a minimal low-confidence decision if every attempt fails.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"decisiongov/platform/decision"
	"decisiongov/platform/llmprovider"
	"decisiongov/platform/shared/logger"
)

const (
	defaultMaxAttempts   = 3
	fallbackConfidence   = 0.1
	fallbackStatementCap = 500
)

// Extractor turns free text into a structured Decision.
type Extractor struct {
	Provider    llmprovider.Provider
	Cache       *RateCache
	Log         *logger.Logger
	MaxAttempts int
}

// New constructs an Extractor. A nil cache disables rate limiting and
// dedup; MaxAttempts <= 0 defaults to 3.
func New(provider llmprovider.Provider, cache *RateCache, log *logger.Logger, maxAttempts int) *Extractor {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Extractor{Provider: provider, Cache: cache, Log: log, MaxAttempts: maxAttempts}
}

// Extract produces a decision.Decision from rawText. On an LLM, parse or
// validation failure it tries again, making at most MaxAttempts attempts in
// total, then returns a
// fallback decision at low confidence rather than erroring — the pipeline
// always has something to evaluate, even with no LLM configured.
func (e *Extractor) Extract(ctx context.Context, tenantID, decisionID, rawText string) (*decision.Decision, error) {
	if e.Cache != nil {
		allowed, err := e.Cache.Allow(ctx, tenantID)
		if err != nil && e.Log != nil {
			e.Log.Warn(tenantID, decisionID, "rate cache unavailable", map[string]interface{}{"error": err.Error()})
		}
		if err == nil && !allowed {
			return nil, fmt.Errorf("extractor: tenant %q exceeded extraction rate limit", tenantID)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= e.MaxAttempts; attempt++ {
		d, err := e.attempt(ctx, tenantID, decisionID, rawText)
		if err == nil {
			return d, nil
		}
		lastErr = err
		if e.Log != nil {
			e.Log.Warn(tenantID, decisionID, "extraction attempt failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
		}
	}

	if e.Log != nil {
		e.Log.Error(tenantID, decisionID, "extraction exhausted retries, using fallback decision", map[string]interface{}{
			"error": lastErr.Error(),
		})
	}
	return fallbackDecision(rawText), nil
}

func (e *Extractor) attempt(ctx context.Context, tenantID, decisionID, rawText string) (*decision.Decision, error) {
	prompt := buildExtractionPrompt(rawText)
	raw, err := e.Provider.Query(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extractor: query provider: %w", err)
	}

	var d decision.Decision
	if err := json.Unmarshal([]byte(extractJSONPayload(raw)), &d); err != nil {
		return nil, fmt.Errorf("extractor: parse model output: %w", err)
	}
	if err := validate(&d); err != nil {
		return nil, fmt.Errorf("extractor: validate extracted decision: %w", err)
	}
	return &d, nil
}

// validate enforces the minimal shape a usable extraction must have.
func validate(d *decision.Decision) error {
	if strings.TrimSpace(d.Statement) == "" {
		return fmt.Errorf("missing decision_statement")
	}
	if d.Confidence <= 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range (0,1]", d.Confidence)
	}
	return nil
}

// extractJSONPayload strips markdown code fences some models wrap JSON in.
func extractJSONPayload(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// fallbackDecision is returned when extraction could not produce a valid
// structured Decision after every retry (or no provider is configured at
// all — llmprovider.NullProvider fails on the first attempt, so this path
// is also how the pipeline runs with zero LLM dependency).
func fallbackDecision(rawText string) *decision.Decision {
	statement := strings.TrimSpace(rawText)
	if len(statement) > fallbackStatementCap {
		statement = statement[:fallbackStatementCap]
	}
	return &decision.Decision{
		Statement:  statement,
		Confidence: fallbackConfidence,
	}
}

func buildExtractionPrompt(rawText string) string {
	return fmt.Sprintf(`Extract a structured governance decision from the following text.
Respond with a single JSON object matching this shape: {"decision_statement": string, "goals": [...], "kpis": [...], "risks": [...], "owners": [...], "assumptions": [...], "confidence": number between 0 and 1}.
Preserve the input language in every text field.

Text:
%s`, rawText)
}
