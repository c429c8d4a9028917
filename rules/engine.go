// Package rules implements the governance Rule Engine (component D): it
// evaluates a tenant's policy rules against an extracted decision, derives
// the required approval chain, computes a risk score, infers an
// accountable owner, and raises governance flags.
package rules

import (
	"math"

	"decisiongov/platform/decision"
)

// severityWeight maps a risk's severity to its contribution to the numeric
// risk score.
var severityWeight = map[decision.Severity]float64{
	decision.SeverityCritical: 8.0,
	decision.SeverityHigh:     3.0,
	decision.SeverityMedium:   1.5,
	decision.SeverityLow:      0.5,
}

const (
	highRiskThreshold     = 7.0
	maxRiskScore          = 10.0
	coverageGapConfidence = 0.3
	strategicGoalOverload = 5
)

// Engine evaluates governance rules. It is stateless and safe for
// concurrent use; all tenant-specific data is passed in per call.
type Engine struct{}

// NewEngine constructs a rule Engine.
func NewEngine() *Engine { return &Engine{} }

// Evaluate runs every active rule in tenantRules, in declared order,
// against d, builds the resulting approval chain against personnel,
// computes the risk score, infers an owner and emits governance flags.
func (e *Engine) Evaluate(d *decision.Decision, personnel []Personnel, tenantRules []Rule) Outcome {
	facts := Facts(d)

	var triggered, passed []Rule
	var rawSteps []decision.ApprovalChainStep

	for _, r := range tenantRules {
		if !r.Active {
			continue
		}
		if r.Condition != nil && r.Condition.Evaluate(facts) {
			triggered = append(triggered, r)
			if r.Action.Type == ActionRequireApproval || r.Action.Type == ActionRequireReview {
				rawSteps = append(rawSteps, buildSteps(r, personnel)...)
			}
		} else {
			passed = append(passed, r)
		}
	}

	chain := dedupeChain(rawSteps)
	riskScore := computeRiskScore(d)
	owner := inferOwner(d, chain, personnel)

	flags := detectFlags(d, triggered, chain, owner, riskScore)

	return Outcome{
		Triggered:     triggered,
		Passed:        passed,
		ApprovalChain: chain,
		Flags:         flags,
		RiskScore:     riskScore,
	}
}

// buildSteps zips a triggered rule's approver_roles with its approver_ids
// and produces one chain step per pair: one rule can demand sign-off from
// several distinct approvers, not just one authority tier.
func buildSteps(r Rule, personnel []Personnel) []decision.ApprovalChainStep {
	n := len(r.Action.ApproverIDs)
	if len(r.Action.ApproverRoles) < n {
		n = len(r.Action.ApproverRoles)
	}

	ruleAction := "REQUIRED"
	if r.Action.Type == ActionRequireReview {
		ruleAction = "ESCALATION"
	}

	steps := make([]decision.ApprovalChainStep, 0, n)
	for i := 0; i < n; i++ {
		id := r.Action.ApproverIDs[i]
		role := r.Action.ApproverRoles[i]

		step := decision.ApprovalChainStep{
			Role:         role,
			ApproverID:   id,
			Required:     true,
			SourceRuleID: r.ID,
			Rationale:    r.Description,
			RuleAction:   ruleAction,
		}
		if step.Rationale == "" {
			step.Rationale = r.Name
		}
		if p := findApproverByID(personnel, id); p != nil {
			step.Name = p.Name
			step.Level = p.Level
			if step.Role == "" {
				step.Role = p.Role
			}
		} else {
			step.Level = decision.LevelTeamLead
		}
		steps = append(steps, step)
	}
	return steps
}

// findApproverByID returns the personnel entry with the given id.
func findApproverByID(personnel []Personnel, id string) *Personnel {
	for i := range personnel {
		if personnel[i].ID == id {
			return &personnel[i]
		}
	}
	return nil
}

// dedupeChain keeps at most one step per approver id: the first triggering
// rule wins on rationale/source_rule_id, but a later duplicate escalates
// the kept step's auth_type to ESCALATION if its own rule demanded one.
// Steps with an empty approver id are never merged with one another, since
// they carry no stable identity to dedupe on; an id that does not resolve
// to personnel is still deduplicated like any other id.
func dedupeChain(steps []decision.ApprovalChainStep) []decision.ApprovalChainStep {
	seen := make(map[string]int, len(steps))
	var out []decision.ApprovalChainStep

	for _, s := range steps {
		if s.ApproverID == "" {
			out = append(out, s)
			continue
		}
		if idx, ok := seen[s.ApproverID]; ok {
			if s.RuleAction == "ESCALATION" && out[idx].RuleAction != "ESCALATION" {
				out[idx].RuleAction = "ESCALATION"
			}
			continue
		}
		seen[s.ApproverID] = len(out)
		out = append(out, s)
	}
	return out
}

// computeRiskScore sums severity weights across the decision's declared
// risks, capped at maxRiskScore and rounded to one decimal place.
func computeRiskScore(d *decision.Decision) float64 {
	if d.RiskScore != nil {
		return roundTo1(math.Min(*d.RiskScore, maxRiskScore))
	}
	var total float64
	for _, r := range d.Risks {
		w, ok := severityWeight[r.Severity]
		if !ok {
			w = severityWeight[decision.SeverityMedium]
		}
		total += w
	}
	return roundTo1(math.Min(total, maxRiskScore))
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// inferOwner infers an accountable owner only when the decision names no
// owners of its own: it finds the chain's lowest-authority required
// approver, then picks one of that approver's direct reports (the operator
// closer to the work), falling back to the approver themselves if they
// have none. An empty chain yields no inference at all.
func inferOwner(d *decision.Decision, chain []decision.ApprovalChainStep, personnel []Personnel) *Personnel {
	if len(d.Owners) > 0 || len(chain) == 0 {
		return nil
	}

	lowest := chain[0]
	for _, step := range chain[1:] {
		if step.Level.Numeric() < lowest.Level.Numeric() {
			lowest = step
		}
	}

	var approver *Personnel
	for i := range personnel {
		if personnel[i].ID == lowest.ApproverID {
			approver = &personnel[i]
			break
		}
	}
	if approver == nil {
		return nil
	}

	for i := range personnel {
		if personnel[i].ReportsTo == approver.ID {
			return &personnel[i]
		}
	}
	return approver
}

// detectFlags implements the flag taxonomy: MISSING_OWNER,
// MISSING_RISK_ASSESSMENT, HIGH_RISK, STRATEGIC_CRITICAL,
// CRITICAL_CONFLICT, PRIVACY_REVIEW_REQUIRED,
// FINANCIAL_THRESHOLD_EXCEEDED and GOVERNANCE_COVERAGE_GAP.
// STRATEGIC_MISALIGNMENT is not raised here; the Pack Builder adds it when
// the Reasoner reports a strategic misalignment.
func detectFlags(d *decision.Decision, triggered []Rule, chain []decision.ApprovalChainStep, owner *Personnel, riskScore float64) []Flag {
	var flags []Flag

	if len(d.Owners) == 0 && owner == nil {
		flags = append(flags, Flag{
			Name:     "MISSING_OWNER",
			Severity: decision.SeverityHigh,
			Message:  "no accountable owner could be determined or inferred for this decision",
		})
	}

	if len(d.Risks) == 0 {
		flags = append(flags, Flag{
			Name:     "MISSING_RISK_ASSESSMENT",
			Severity: decision.SeverityMedium,
			Message:  "no risks were identified for this decision",
		})
	}

	if riskScore >= highRiskThreshold {
		flags = append(flags, Flag{
			Name:     "HIGH_RISK",
			Severity: decision.SeverityHigh,
			Message:  "risk score meets or exceeds the high-risk threshold",
		})
	}

	triggeredTypes := make(map[RuleType]bool, len(triggered))
	for _, r := range triggered {
		if r.Type != "" {
			triggeredTypes[r.Type] = true
		}
	}

	strategicCritical := (d.StrategicImpact != nil && *d.StrategicImpact == decision.ImpactCritical) || triggeredTypes[RuleTypeStrategic]
	if strategicCritical {
		flags = append(flags, Flag{
			Name:     "STRATEGIC_CRITICAL",
			Severity: decision.SeverityCritical,
			Message:  "decision is flagged as critical strategic impact",
		})
	}

	hasCriticalTrigger := false
	for _, r := range triggered {
		if r.Action.Severity == decision.SeverityCritical {
			hasCriticalTrigger = true
			break
		}
	}
	if hasCriticalTrigger || len(d.KPIs) > strategicGoalOverload || len(d.Goals) > strategicGoalOverload {
		flags = append(flags, Flag{
			Name:     "CRITICAL_CONFLICT",
			Severity: decision.SeverityCritical,
			Message:  "a critical governance rule triggered, or the decision carries an unusually large number of goals/KPIs",
		})
	}

	if triggeredTypes[RuleTypePrivacy] {
		flags = append(flags, Flag{
			Name:     "PRIVACY_REVIEW_REQUIRED",
			Severity: decision.SeverityHigh,
			Message:  "decision involves personally identifiable information",
		})
	}

	if triggeredTypes[RuleTypeFinancial] {
		flags = append(flags, Flag{
			Name:     "FINANCIAL_THRESHOLD_EXCEEDED",
			Severity: decision.SeverityHigh,
			Message:  "decision cost exceeds the tenant's financial approval threshold",
		})
	}

	substantive := len(d.Goals) > 0 || len(d.KPIs) > 0 || len(d.Risks) > 0
	if len(triggered) == 0 && substantive && d.Confidence > coverageGapConfidence {
		flags = append(flags, Flag{
			Name:     "GOVERNANCE_COVERAGE_GAP",
			Severity: decision.SeverityMedium,
			Message:  "no governance rule matched this decision despite substantive, confidently extracted content",
		})
	}

	return flags
}

// RequiresHumanReview implements 4.3.7: true if any of flags/chain are
// non-empty, any triggered rule is of a human-gate type, risk is high, the
// decision is strategically significant, or extraction confidence is low.
func RequiresHumanReview(d *decision.Decision, outcome Outcome) bool {
	if len(outcome.Flags) > 0 || len(outcome.ApprovalChain) > 0 {
		return true
	}
	for _, r := range outcome.Triggered {
		switch r.Type {
		case RuleTypeCompliance, RuleTypePrivacy, RuleTypeStrategic, RuleTypeFinancial:
			return true
		}
	}
	if outcome.RiskScore >= 7.0 {
		return true
	}
	if d.StrategicImpact != nil && (*d.StrategicImpact == decision.ImpactHigh || *d.StrategicImpact == decision.ImpactCritical) {
		return true
	}
	return d.Confidence < 0.7
}
