package rules

import (
	"encoding/json"
	"testing"

	"decisiongov/platform/decision"
)

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestSingleConditionOperators(t *testing.T) {
	cases := []struct {
		op       string
		actual   interface{}
		expected interface{}
		want     bool
	}{
		{">", 10.0, 5.0, true},
		{">=", 5.0, 5.0, true},
		{"<", 3.0, 5.0, true},
		{"<=", 5.0, 5.0, true},
		{"==", "vendor", "vendor", true},
		{"!=", "vendor", "partner", true},
		{"contains", "Uses customer PII data", "pii", true},
		{"overlaps_with", true, true, true},
		{"overlaps_with", true, false, true},
		{"overlaps_with", false, true, false},
	}
	for _, c := range cases {
		cond := SingleCondition{Field: "f", Operator: c.op, Value: c.expected}
		got := cond.Evaluate(map[string]interface{}{"f": c.actual})
		if got != c.want {
			t.Errorf("operator %q: got %v, want %v", c.op, got, c.want)
		}
	}
}

func TestOrConditionShortCircuits(t *testing.T) {
	cond := OrCondition{Conditions: []Condition{
		SingleCondition{Field: "cost", Operator: ">", Value: 100000.0},
		SingleCondition{Field: "uses_pii", Operator: "==", Value: true},
	}}
	if !cond.Evaluate(map[string]interface{}{"uses_pii": true}) {
		t.Fatal("expected OR condition to match on second clause")
	}
	if cond.Evaluate(map[string]interface{}{"uses_pii": false}) {
		t.Fatal("expected OR condition to fail when no clause matches")
	}
}

func TestRuleUnmarshalTaggedUnion(t *testing.T) {
	raw := []byte(`{
		"rule_id": "r1",
		"name": "high cost requires VP",
		"type": "financial",
		"condition": {"field": "cost", "operator": ">", "value": 50000},
		"consequence": {
			"action": "require_approval",
			"approver_roles": ["VP Finance"],
			"approver_ids": ["p-vp"],
			"severity": "high"
		}
	}`)
	var r Rule
	if err := json.Unmarshal(raw, &r); err != nil {
		t.Fatalf("unmarshal rule: %v", err)
	}
	single, ok := r.Condition.(SingleCondition)
	if !ok {
		t.Fatalf("expected SingleCondition, got %T", r.Condition)
	}
	if single.Field != "cost" || single.Operator != ">" {
		t.Fatalf("unexpected condition: %+v", single)
	}
	if !r.Active {
		t.Fatal("expected active to default to true when omitted")
	}
	if r.Type != RuleTypeFinancial {
		t.Fatalf("expected rule type financial, got %q", r.Type)
	}
	if r.Action.Type != ActionRequireApproval || len(r.Action.ApproverIDs) != 1 {
		t.Fatalf("unexpected consequence: %+v", r.Action)
	}
}

func TestEvaluateZeroActorsFlagsMissingOwnership(t *testing.T) {
	engine := NewEngine()
	d := &decision.Decision{Statement: "Launch a new product line", Confidence: 0.9}
	outcome := engine.Evaluate(d, nil, nil)
	if len(outcome.ApprovalChain) != 0 {
		t.Fatalf("expected empty chain with no rules, got %v", outcome.ApprovalChain)
	}
	foundMissingOwner := false
	for _, f := range outcome.Flags {
		if f.Name == "MISSING_OWNER" {
			foundMissingOwner = true
		}
	}
	if !foundMissingOwner {
		t.Fatal("expected MISSING_OWNER when the decision names no owner and the empty chain yields no inferred owner")
	}
}

func TestEvaluateHighRiskTriggersFlag(t *testing.T) {
	engine := NewEngine()
	d := &decision.Decision{
		Statement: "Outsource critical infrastructure",
		Risks: []decision.Risk{
			{Description: "vendor lock-in", Severity: decision.SeverityCritical},
		},
		Confidence: 0.8,
	}
	outcome := engine.Evaluate(d, nil, nil)
	if outcome.RiskScore < highRiskThreshold {
		t.Fatalf("expected risk score >= %.1f, got %.1f", highRiskThreshold, outcome.RiskScore)
	}
	found := false
	for _, f := range outcome.Flags {
		if f.Name == "HIGH_RISK" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected HIGH_RISK flag")
	}
}

func TestInferOwnerFromApproverDirectReport(t *testing.T) {
	personnel := []Personnel{
		{ID: "p1", Name: "Dana VP", Level: decision.LevelVP},
		{ID: "p2", Name: "Report To Dana", Level: decision.LevelTeamLead, ReportsTo: "p1"},
	}
	d := &decision.Decision{}
	chain := []decision.ApprovalChainStep{{Level: decision.LevelVP, Name: "Dana VP", ApproverID: "p1"}}
	owner := inferOwner(d, chain, personnel)
	if owner == nil || owner.Name != "Report To Dana" {
		t.Fatalf("expected owner to be the VP's direct report, got %+v", owner)
	}
}

func TestInferOwnerFallsBackToApprover(t *testing.T) {
	personnel := []Personnel{{ID: "p1", Name: "Solo VP", Level: decision.LevelVP}}
	d := &decision.Decision{}
	chain := []decision.ApprovalChainStep{{Level: decision.LevelVP, Name: "Solo VP", ApproverID: "p1"}}
	owner := inferOwner(d, chain, personnel)
	if owner == nil || owner.Name != "Solo VP" {
		t.Fatalf("expected owner to fall back to the approver, got %+v", owner)
	}
}

func TestMultipleApproverIDsProduceMultipleChainSteps(t *testing.T) {
	r := Rule{
		ID:   "r1",
		Name: "multi-approver rule",
		Type: RuleTypeCompliance,
		Action: Action{
			Type:          ActionRequireApproval,
			ApproverRoles: []string{"Legal", "Finance"},
			ApproverIDs:   []string{"p-legal", "p-fin"},
		},
	}
	personnel := []Personnel{
		{ID: "p-legal", Name: "Lee Legal", Role: "Legal", Level: decision.LevelDepartmentHead},
		{ID: "p-fin", Name: "Fin Officer", Role: "Finance", Level: decision.LevelVP},
	}
	steps := buildSteps(r, personnel)
	if len(steps) != 2 {
		t.Fatalf("expected 2 chain steps, got %d: %+v", len(steps), steps)
	}
}

func TestCriticalConflictRequiresIndependentOverfiveChecks(t *testing.T) {
	engine := NewEngine()
	kpis := make([]decision.KPI, 5)
	goals := make([]decision.Goal, 3)
	d := &decision.Decision{Statement: "x", KPIs: kpis, Goals: goals, Confidence: 0.9}
	outcome := engine.Evaluate(d, nil, nil)
	for _, f := range outcome.Flags {
		if f.Name == "CRITICAL_CONFLICT" {
			t.Fatalf("did not expect CRITICAL_CONFLICT with 5 KPIs + 3 goals (summed > 5 but neither independently > 5)")
		}
	}

	d.KPIs = make([]decision.KPI, 6)
	outcome = engine.Evaluate(d, nil, nil)
	found := false
	for _, f := range outcome.Flags {
		if f.Name == "CRITICAL_CONFLICT" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected CRITICAL_CONFLICT once KPIs alone exceed 5")
	}
}

func TestRuleTypeDrivesPrivacyFlag(t *testing.T) {
	engine := NewEngine()
	privacyRule := Rule{
		ID:        "priv1",
		Name:      "privacy rule",
		Type:      RuleTypePrivacy,
		Active:    true,
		Condition: SingleCondition{Field: "uses_pii", Operator: "overlaps_with", Value: true},
		Action:    Action{Type: ActionRequireReview},
	}
	usesPII := true
	d := &decision.Decision{Statement: "process customer data", UsesPII: &usesPII, Confidence: 0.9}
	outcome := engine.Evaluate(d, nil, []Rule{privacyRule})
	found := false
	for _, f := range outcome.Flags {
		if f.Name == "PRIVACY_REVIEW_REQUIRED" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected PRIVACY_REVIEW_REQUIRED when a triggered rule is of type privacy")
	}
}
