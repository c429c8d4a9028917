package graph

import (
	"decisiongov/platform/decision"
	"decisiongov/platform/rules"
)

// UpsertDecisionGraph folds one evaluated decision into the store: an
// Action node for the decision itself, Actor/Approver nodes for its
// owners and approval chain, Risk/Policy nodes for its risks and
// triggered rules, and Goal/KPI/Cost nodes for its strategic attributes —
// each connected to the Action node by the predicate that describes the
// relationship.
func UpsertDecisionGraph(store *Store, decisionID string, d *decision.Decision, outcome rules.Outcome) {
	actionID := GenerateNodeID(NodeAction, decisionID)
	store.AddNode(&Node{
		ID:    actionID,
		Type:  NodeAction,
		Label: d.Statement,
		Properties: map[string]interface{}{
			"decision_id": decisionID,
			"confidence":  d.Confidence,
			"risk_score":  outcome.RiskScore,
		},
	})

	for _, owner := range d.Owners {
		actorID := GenerateNodeID(NodeActor, owner.Name)
		store.AddNode(&Node{ID: actorID, Type: NodeActor, Label: owner.Name, Properties: map[string]interface{}{
			"role": owner.Role,
		}})
		store.AddEdge(&Edge{From: actorID, To: actionID, Predicate: EdgeOwns})
	}

	for _, step := range outcome.ApprovalChain {
		if step.Name == "" {
			continue
		}
		approverID := GenerateNodeID(NodeApprover, step.Name)
		store.AddNode(&Node{ID: approverID, Type: NodeApprover, Label: step.Name, Properties: map[string]interface{}{
			"level": string(step.Level),
			"role":  step.Role,
		}})
		store.AddEdge(&Edge{From: actionID, To: approverID, Predicate: EdgeRequiresApprovalBy})
	}

	for _, r := range outcome.Triggered {
		policyID := GenerateNodeID(NodePolicy, r.Name)
		store.AddNode(&Node{ID: policyID, Type: NodePolicy, Label: r.Name})
		store.AddEdge(&Edge{From: actionID, To: policyID, Predicate: EdgeTriggers})
		store.AddEdge(&Edge{From: actionID, To: policyID, Predicate: EdgeGovernedBy})
	}

	for _, risk := range d.Risks {
		riskID := GenerateNodeID(NodeRisk, risk.Description)
		store.AddNode(&Node{ID: riskID, Type: NodeRisk, Label: risk.Description, Properties: map[string]interface{}{
			"severity": string(risk.Severity),
		}})
		store.AddEdge(&Edge{From: actionID, To: riskID, Predicate: EdgeImpacts})
		if risk.Mitigation != "" {
			store.AddEdge(&Edge{From: riskID, To: actionID, Predicate: EdgeMitigates, Properties: map[string]interface{}{
				"mitigation": risk.Mitigation,
			}})
		}
	}

	for _, goal := range d.Goals {
		goalID := GenerateNodeID(NodeGoal, goal.Description)
		store.AddNode(&Node{ID: goalID, Type: NodeGoal, Label: goal.Description})
		store.AddEdge(&Edge{From: actionID, To: goalID, Predicate: EdgeHasGoal})
	}

	for _, kpi := range d.KPIs {
		kpiID := GenerateNodeID(NodeKPI, kpi.Name)
		store.AddNode(&Node{ID: kpiID, Type: NodeKPI, Label: kpi.Name, Properties: map[string]interface{}{
			"target": kpi.Target,
		}})
		store.AddEdge(&Edge{From: actionID, To: kpiID, Predicate: EdgeHasKPI})
	}

	if d.Cost != nil {
		costID := GenerateNodeID(NodeCost, decisionID)
		store.AddNode(&Node{ID: costID, Type: NodeCost, Label: decisionID, Properties: map[string]interface{}{
			"amount": *d.Cost,
		}})
		store.AddEdge(&Edge{From: actionID, To: costID, Predicate: EdgeHasCost})
	}

	if d.UsesPII != nil && *d.UsesPII {
		dataID := GenerateNodeID(NodeDataType, "PII")
		store.AddNode(&Node{ID: dataID, Type: NodeDataType, Label: "PII"})
		store.AddEdge(&Edge{From: actionID, To: dataID, Predicate: EdgeUsesData})
	}

	if d.TargetMarket != nil {
		regionID := GenerateNodeID(NodeRegion, *d.TargetMarket)
		store.AddNode(&Node{ID: regionID, Type: NodeRegion, Label: *d.TargetMarket})
		store.AddEdge(&Edge{From: actionID, To: regionID, Predicate: EdgeAffectsRegion})
	}
}
