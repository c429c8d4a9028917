package normalize

import (
	"testing"

	"decisiongov/platform/decision"
	"decisiongov/platform/pack"
	"decisiongov/platform/rules"
)

func TestNormalizeFlagsUsesCanonicalMessage(t *testing.T) {
	flags := []rules.Flag{{Name: "HIGH_RISK", Severity: decision.SeverityHigh, Message: "raw engine text"}}
	out := normalizeFlags(flags, "")
	if len(out) != 1 || out[0].Message != canonicalFlagMessages["HIGH_RISK"] {
		t.Fatalf("expected canonical message, got %+v", out)
	}
}

func TestNormalizeFlagsSuppressesMissingOwnerForDepartmentRole(t *testing.T) {
	flags := []rules.Flag{{Name: "MISSING_OWNER", Severity: decision.SeverityHigh}}
	out := normalizeFlags(flags, "department_head")
	if len(out) != 0 {
		t.Fatalf("expected MISSING_OWNER suppressed for department-head inferred owner, got %+v", out)
	}
}

func TestNormalizeFlagsKeepsMissingOwnerForEscalationRole(t *testing.T) {
	flags := []rules.Flag{{Name: "MISSING_OWNER", Severity: decision.SeverityHigh}}
	out := normalizeFlags(flags, "board")
	if len(out) != 1 {
		t.Fatalf("expected MISSING_OWNER kept for non-department inferred role, got %+v", out)
	}
}

func TestNormalizeApprovalChainResolvesFromPersonnel(t *testing.T) {
	personnel := []rules.Personnel{{Name: "Dana VP", Role: "VP Finance", Level: decision.LevelVP}}
	chain := []decision.ApprovalChainStep{{Level: decision.LevelVP, RuleAction: "REQUIRED"}}
	out := normalizeApprovalChain(chain, personnel)
	if len(out) != 1 || out[0].Name != "Dana VP" || out[0].Status != "pending" {
		t.Fatalf("unexpected normalized approval: %+v", out)
	}
}

func TestBuildConsolePayloadAssemblesAllFields(t *testing.T) {
	p := pack.Pack{Title: "t", Status: pack.StatusReviewRequired, RiskScore: 3}
	payload := BuildConsolePayload("dec1", p, nil, nil, "")
	if payload.DecisionID != "dec1" || payload.Title != "t" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestNormalizeRulesUnionsTriggeredAndPassed(t *testing.T) {
	tenantRules := []rules.Rule{
		{ID: "r1", Name: "rule one"},
		{ID: "r2", Name: "rule two"},
	}
	triggered := []pack.AuditRule{{RuleID: "r1", Name: "rule one"}}

	out := normalizeRules(triggered, tenantRules)
	if len(out) != 2 {
		t.Fatalf("expected 2 normalized rules (1 triggered + 1 passed), got %d: %+v", len(out), out)
	}
	byID := map[string]NormalizedRule{}
	for _, r := range out {
		byID[r.ID] = r
	}
	if byID["r1"].Status != "TRIGGERED" {
		t.Errorf("expected r1 TRIGGERED, got %+v", byID["r1"])
	}
	if byID["r2"].Status != "PASSED" {
		t.Errorf("expected r2 PASSED, got %+v", byID["r2"])
	}
}
