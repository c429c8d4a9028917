package subgraph

import (
	"testing"

	"decisiongov/platform/decision"
	"decisiongov/platform/graph"
	"decisiongov/platform/rules"
	"decisiongov/platform/tenant"
)

func TestCandidateOwnersFuzzyMatchesAndWalksReportsTo(t *testing.T) {
	personnel := []rules.Personnel{
		{ID: "p1", Name: "Finance Lead", Role: "Finance", ReportsTo: "p2"},
		{ID: "p2", Name: "CFO", Role: "Chief Financial Officer"},
	}
	d := &decision.Decision{Owners: []decision.Owner{{Name: "finance", Role: "budget owner"}}}

	sub := Build("dec-1", d, personnel, nil, nil, nil)
	if len(sub.CandidateOwners) != 2 {
		t.Fatalf("expected fuzzy match plus one reports_to hop, got %d: %+v", len(sub.CandidateOwners), sub.CandidateOwners)
	}
}

func TestEmptyOwnersInjectsAllPersonnelAsCandidates(t *testing.T) {
	personnel := []rules.Personnel{
		{ID: "p1", Name: "Alice", Role: "Engineer", ReportsTo: "p2"},
		{ID: "p2", Name: "Bob", Role: "Manager"},
	}
	d := &decision.Decision{}

	sub := Build("dec-2", d, personnel, nil, nil, nil)
	if len(sub.CandidateOwners) != 2 {
		t.Fatalf("expected every personnel record injected as a candidate owner, got %d", len(sub.CandidateOwners))
	}

	foundReportsTo := false
	for _, e := range sub.Edges {
		if e.Predicate == "REPORTS_TO" {
			foundReportsTo = true
		}
	}
	if !foundReportsTo {
		t.Error("expected a REPORTS_TO edge mirroring the org chart among injected candidate owners")
	}
}

func TestGoalAlignmentsScoreByMatchKind(t *testing.T) {
	d := &decision.Decision{
		KPIs:      []decision.KPI{{Name: "customer retention rate"}},
		Statement: "We will launch a new onboarding flow",
	}
	goals := []tenant.StrategicGoal{
		{GoalID: "g1", Name: "improve customer retention", KPIs: []string{"customer retention rate"}},
		{GoalID: "g2", Name: "streamline onboarding experience"},
		{GoalID: "g3", Name: "unrelated goal about inventory"},
	}

	b := newBuilder("dec-3")
	aligned := b.addGoalAlignments(d, goals, map[string]bool{}, b.id(graph.NodeAction, "dec-3"))
	byGoal := map[string]float64{}
	for _, a := range aligned {
		byGoal[a.Goal] = a.Score
	}
	if byGoal["improve customer retention"] != alignmentKPI {
		t.Errorf("expected KPI-level alignment, got %v", byGoal["improve customer retention"])
	}
	if byGoal["streamline onboarding experience"] != alignmentSemantic {
		t.Errorf("expected semantic alignment, got %v", byGoal["streamline onboarding experience"])
	}
	if _, ok := byGoal["unrelated goal about inventory"]; ok {
		t.Error("expected unrelated goal to score nothing")
	}
}
