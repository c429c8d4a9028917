package reasoner

import (
	"context"
	"testing"

	"decisiongov/platform/decision"
	"decisiongov/platform/llmprovider"
	"decisiongov/platform/rules"
	"decisiongov/platform/subgraph"
)

func TestDeterministicReasonFlagsZeroOwners(t *testing.T) {
	d := &decision.Decision{Statement: "Do something"}
	result := deterministicReason(d, rules.Outcome{RiskScore: 1})
	if result.Confidence != deterministicConfidence {
		t.Fatalf("expected fixed confidence %.1f, got %.1f", deterministicConfidence, result.Confidence)
	}
	found := false
	for _, c := range result.Contradictions {
		if c.Type == "ownership_missing" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected ownership_missing contradiction for zero owners")
	}
}

func TestDeterministicReasonFlagsSparseRiskCoverage(t *testing.T) {
	d := &decision.Decision{
		Statement: "Outsource critical system",
		Owners:    []decision.Owner{{Name: "Someone"}},
		Risks:     []decision.Risk{{Description: "one risk"}},
	}
	result := deterministicReason(d, rules.Outcome{RiskScore: 8.0})
	found := false
	for _, c := range result.Contradictions {
		if c.Type == "risk_coverage_gap" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected risk_coverage_gap contradiction for high score with sparse risks")
	}
}

func TestDeterministicReasonWarnsOnMissingMitigation(t *testing.T) {
	d := &decision.Decision{
		Statement: "x",
		Owners:    []decision.Owner{{Name: "Someone"}},
		Risks:     []decision.Risk{{Description: "vendor lock-in"}},
	}
	result := deterministicReason(d, rules.Outcome{})
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning for unmitigated risk, got %d", len(result.Warnings))
	}
}

func TestReasonFallsBackWhenProviderUnhealthy(t *testing.T) {
	r := New(llmprovider.NullProvider{}, nil)
	d := &decision.Decision{Statement: "x"}
	result := r.Reason(context.Background(), "tenant", "dec", d, rules.Outcome{}, subgraph.Subgraph{}, true)
	if result.Mode != "deterministic" {
		t.Fatalf("expected deterministic fallback, got mode %q", result.Mode)
	}
}

func TestReasonSkipsDeepWhenNotRequested(t *testing.T) {
	r := New(llmprovider.NullProvider{}, nil)
	d := &decision.Decision{Statement: "x"}
	result := r.Reason(context.Background(), "tenant", "dec", d, rules.Outcome{}, subgraph.Subgraph{}, false)
	if result.Mode != "deterministic" {
		t.Fatalf("expected deterministic mode when use_deep_reasoning is false, got mode %q", result.Mode)
	}
}
