// Package reasoner implements the Reasoner (component G): a second pass
// over an evaluated decision that looks for contradictions and strategic
// misalignment, either via a language model ("deep" mode) or via fixed
// heuristics when no provider is configured or the model call fails
// ("deterministic" mode). Both modes produce the same Result shape so
// downstream components never need to know which one ran.
package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"decisiongov/platform/decision"
	"decisiongov/platform/llmprovider"
	"decisiongov/platform/rules"
	"decisiongov/platform/shared/logger"
	"decisiongov/platform/subgraph"
)

const (
	deterministicConfidence = 0.6
	highRiskThreshold       = 7.0
	sparseRiskCount         = 2
)

// Contradiction is a specific inconsistency found in the decision.
type Contradiction struct {
	Type     string            `json:"type"`
	Severity decision.Severity `json:"severity"`
	Message  string            `json:"message"`
}

// Result is the Reasoner's output, identical in shape whether produced
// deterministically or by a language model.
type Result struct {
	Contradictions        []Contradiction `json:"contradictions"`
	Warnings               []string        `json:"warnings"`
	Confidence             float64         `json:"confidence"`
	StrategicMisalignment  bool            `json:"strategic_misalignment"`
	Mode                   string          `json:"mode"`
}

// Reasoner evaluates a decision for contradictions and misalignment.
type Reasoner struct {
	Provider llmprovider.Provider
	Log      *logger.Logger
}

// New constructs a Reasoner. provider may be llmprovider.NullProvider{},
// in which case Reason always runs deterministically.
func New(provider llmprovider.Provider, log *logger.Logger) *Reasoner {
	return &Reasoner{Provider: provider, Log: log}
}

// Reason analyzes d and its assembled subgraph. The caller (the HTTP
// submission, via use_deep_reasoning) decides whether a deep
// language-model pass should even be attempted; Reason never auto-selects
// it on its own. When requested, it still falls back to deterministic
// heuristics if the provider is unhealthy or the call fails.
func (r *Reasoner) Reason(ctx context.Context, tenantID, decisionID string, d *decision.Decision, outcome rules.Outcome, sub subgraph.Subgraph, useDeepReasoning bool) Result {
	if useDeepReasoning && r.Provider != nil && r.Provider.IsHealthy() {
		if result, err := r.deepReason(ctx, d, sub); err == nil {
			return result
		} else if r.Log != nil {
			r.Log.Warn(tenantID, decisionID, "deep reasoning failed, falling back to deterministic", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return deterministicReason(d, outcome)
}

// deterministicReason implements the fixed-heuristic fallback path: it
// flags a missing-ownership contradiction when the decision names no
// actors, a coverage-gap contradiction when the risk score is high but
// few risks were actually identified, and a warning for every risk that
// lacks a stated mitigation. Confidence is always deterministicConfidence
// so callers can distinguish this path from a model's own confidence.
func deterministicReason(d *decision.Decision, outcome rules.Outcome) Result {
	var contradictions []Contradiction
	var warnings []string

	if len(d.Owners) == 0 {
		contradictions = append(contradictions, Contradiction{
			Type:     "ownership_missing",
			Severity: decision.SeverityCritical,
			Message:  "decision names no actors responsible for carrying it out",
		})
	}

	if outcome.RiskScore >= highRiskThreshold && len(d.Risks) < sparseRiskCount {
		contradictions = append(contradictions, Contradiction{
			Type:     "risk_coverage_gap",
			Severity: decision.SeverityHigh,
			Message:  "risk score is high relative to the small number of risks actually identified",
		})
	}

	for _, risk := range d.Risks {
		if strings.TrimSpace(risk.Mitigation) == "" {
			warnings = append(warnings, fmt.Sprintf("risk %q has no stated mitigation", risk.Description))
		}
	}

	return Result{
		Contradictions: contradictions,
		Warnings:       warnings,
		Confidence:     deterministicConfidence,
		Mode:           "deterministic",
	}
}

// deepReason builds a prompt from the decision and its subgraph, queries
// the configured provider, and parses its response into a Result.
func (r *Reasoner) deepReason(ctx context.Context, d *decision.Decision, sub subgraph.Subgraph) (Result, error) {
	prompt := buildReasoningPrompt(d, sub)
	raw, err := r.Provider.Query(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("reasoner: query provider: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		return Result{}, fmt.Errorf("reasoner: parse model output: %w", err)
	}
	result.Mode = "deep"
	return result, nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func buildReasoningPrompt(d *decision.Decision, sub subgraph.Subgraph) string {
	var goals strings.Builder
	for _, g := range sub.GoalAlignments {
		fmt.Fprintf(&goals, "- %s (score %.1f)\n", g.Goal, g.Score)
	}
	return fmt.Sprintf(`Analyze this governance decision for contradictions and strategic misalignment.
Respond with a single JSON object: {"contradictions": [{"type","severity","message"}], "warnings": [string], "confidence": number 0-1, "strategic_misalignment": bool}.
Preserve the input language in every text field.

Decision statement: %s
Candidate owners: %d
Strategic goal alignment:
%s`, d.Statement, len(sub.CandidateOwners), goals.String())
}
