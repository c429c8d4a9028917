package rules

import "decisiongov/platform/decision"

// Facts flattens a decision.Decision into the field->value map that
// Condition.Evaluate consumes. Field names mirror the decision's extracted
// governance-trigger attributes exactly, so tenant rule authors can write
// conditions such as {"field": "cost", "operator": ">", "value": 50000}.
func Facts(d *decision.Decision) map[string]interface{} {
	facts := map[string]interface{}{
		"confidence":    d.Confidence,
		"goals_count":   len(d.Goals),
		"kpis_count":    len(d.KPIs),
		"risks_count":   len(d.Risks),
		"owners_count":  len(d.Owners),
	}
	if d.CounterpartyRelation != nil {
		facts["counterparty_relation"] = *d.CounterpartyRelation
	}
	if d.PolicyChangeType != nil {
		facts["policy_change_type"] = *d.PolicyChangeType
	}
	if d.UsesPII != nil {
		facts["uses_pii"] = *d.UsesPII
	}
	if d.Cost != nil {
		facts["cost"] = *d.Cost
	}
	if d.TargetMarket != nil {
		facts["target_market"] = *d.TargetMarket
	}
	if d.LaunchDate != nil {
		facts["launch_date"] = *d.LaunchDate
	}
	if d.InvolvesHiring != nil {
		facts["involves_hiring"] = *d.InvolvesHiring
	}
	if d.InvolvesComplianceRisk != nil {
		facts["involves_compliance_risk"] = *d.InvolvesComplianceRisk
	}
	if d.HeadcountChange != nil {
		facts["headcount_change"] = *d.HeadcountChange
	}
	if d.StrategicImpact != nil {
		facts["strategic_impact"] = string(*d.StrategicImpact)
	}
	return facts
}
