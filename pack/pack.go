// Package pack implements the Pack Builder (component H): it assembles
// the final decision pack a console or API client consumes from the Rule
// Engine's and Reasoner's output — a title, a summary block carrying the
// governance disposition, the decision's goals/KPIs/risks/owners/
// assumptions, the approval chain, missing items, recommended next
// actions, and an audit trail of exactly which rules and flags drove the
// outcome.
package pack

import (
	"fmt"
	"strings"

	"decisiongov/platform/decision"
	"decisiongov/platform/reasoner"
	"decisiongov/platform/rules"
	"decisiongov/platform/subgraph"
)

const (
	titleMaxLen            = 80
	highRiskScoreThreshold = 7.0
	reviewRiskScoreThreshold = 4.0
	coverageGapSnippetLen  = 60
)

// Status is the decision's overall governance disposition.
type Status string

const (
	StatusCompliant      Status = "compliant"
	StatusReviewRequired Status = "review_required"
	StatusBlocked        Status = "blocked"
)

// Summary is the Pack's at-a-glance governance verdict.
type Summary struct {
	DecisionStatement     string  `json:"decision_statement"`
	HumanApprovalRequired bool    `json:"human_approval_required"`
	RiskLevel             string  `json:"risk_level"`
	GovernanceStatus      Status  `json:"governance_status"`
	ConfidenceScore       float64 `json:"confidence_score"`
	StrategicImpact       string  `json:"strategic_impact"`
	GraphAnalysisEnabled  bool    `json:"graph_analysis_enabled"`
	ConclusionReason      string  `json:"conclusion_reason"`
}

// GoalsKPIs groups the decision's own objectives and measurable success
// criteria alongside how they score against the tenant's strategic goals.
type GoalsKPIs struct {
	StrategicGoals     []subgraph.GoalAlignment `json:"strategic_goals"`
	DecisionObjectives []decision.Goal          `json:"decision_objectives"`
	KPIs               []decision.KPI           `json:"kpis"`
}

// AuditRule is the minimal identifying information for a triggered rule,
// as surfaced in the audit trail (never the full Rule, which also carries
// its condition tree).
type AuditRule struct {
	RuleID      string `json:"rule_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Audit is the evidentiary trail behind the governance verdict: every flag
// raised, every rule that fired, the rationale extracted from each, and
// the risk score that was actually computed.
type Audit struct {
	Flags             []rules.Flag `json:"flags"`
	TriggeredRules     []AuditRule `json:"triggered_rules"`
	Rationales         []string    `json:"rationales"`
	ComputedRiskScore  float64     `json:"computed_risk_score"`
}

// GraphReasoning surfaces what the Reasoner found, when it ran. Absent
// entirely (a nil pointer on Pack) when the Reasoner result carries no
// analysis mode, i.e. no reasoning pass ran; a pass that found nothing
// still produces a GraphReasoning with empty lists.
type GraphReasoning struct {
	AnalysisMethod        string                    `json:"analysis_method"`
	LogicalContradictions []reasoner.Contradiction `json:"logical_contradictions"`
	Warnings              []string                  `json:"warnings"`
	Confidence            float64                   `json:"confidence"`
}

// Pack is the fully assembled output of the pipeline for one decision.
type Pack struct {
	Title            string                       `json:"title"`
	Summary          Summary                      `json:"summary"`
	GoalsKPIs        GoalsKPIs                    `json:"goals_kpis"`
	Risks            []decision.Risk              `json:"risks"`
	Owners           []decision.Owner             `json:"owners"`
	Assumptions      []decision.Assumption        `json:"assumptions"`
	MissingItems     []string                     `json:"missing_items"`
	ApprovalChain    []decision.ApprovalChainStep `json:"approval_chain"`
	NextActions      []string                     `json:"next_actions"`
	Audit            Audit                        `json:"audit"`
	GraphReasoning   *GraphReasoning              `json:"graph_reasoning,omitempty"`

	// Status and ConclusionReason are duplicated at the top level (beyond
	// Summary) since they are what the pipeline's lifecycle record and the
	// console normalizer key off of most often.
	Status           Status  `json:"status"`
	RiskScore        float64 `json:"risk_score"`
	ConclusionReason string  `json:"conclusion_reason"`
}

// Build assembles a Pack from the evaluated decision and the Rule
// Engine's and Reasoner's outputs. A strategic misalignment reported by
// the Reasoner is added to the flags as STRATEGIC_MISALIGNMENT.
func Build(d *decision.Decision, outcome rules.Outcome, reason reasoner.Result, sub subgraph.Subgraph) Pack {
	if reason.StrategicMisalignment {
		outcome.Flags = append(append([]rules.Flag{}, outcome.Flags...), rules.Flag{
			Name:     "STRATEGIC_MISALIGNMENT",
			Severity: decision.SeverityHigh,
			Message:  "the reasoner found the decision misaligned with the tenant's strategic goals",
		})
	}
	missing := detectMissingItems(d)
	status, riskLevel, humanApprovalRequired := determineStatus(d, outcome)
	conclusion := summarizeConclusion(status, riskLevel, outcome, reason, missing)

	owners := append([]decision.Owner{}, d.Owners...)
	for _, c := range sub.CandidateOwners {
		if c.Personnel.ID == "" {
			continue
		}
		owners = append(owners, decision.Owner{Name: c.Personnel.Name, Role: c.Personnel.Role})
	}

	strategicImpact := "not_specified"
	if d.StrategicImpact != nil {
		strategicImpact = string(*d.StrategicImpact)
	}

	var graphReasoning *GraphReasoning
	if reason.Mode != "" {
		graphReasoning = &GraphReasoning{
			AnalysisMethod:        reason.Mode,
			LogicalContradictions: reason.Contradictions,
			Warnings:              reason.Warnings,
			Confidence:            reason.Confidence,
		}
	}

	return Pack{
		Title: generateTitle(d),
		Summary: Summary{
			DecisionStatement:     d.Statement,
			HumanApprovalRequired: humanApprovalRequired,
			RiskLevel:             riskLevel,
			GovernanceStatus:      status,
			ConfidenceScore:       d.Confidence,
			StrategicImpact:       strategicImpact,
			GraphAnalysisEnabled:  reason.Mode != "",
			ConclusionReason:      conclusion,
		},
		GoalsKPIs: GoalsKPIs{
			StrategicGoals:     sub.GoalAlignments,
			DecisionObjectives: d.Goals,
			KPIs:               d.KPIs,
		},
		Risks:         d.Risks,
		Owners:        owners,
		Assumptions:   d.Assumptions,
		MissingItems:  missing,
		ApprovalChain: outcome.ApprovalChain,
		NextActions:   generateNextActions(d, outcome, status, missing),
		Audit: Audit{
			Flags:             outcome.Flags,
			TriggeredRules:    auditRules(outcome.Triggered),
			Rationales:        extractRationales(outcome),
			ComputedRiskScore: outcome.RiskScore,
		},
		GraphReasoning:   graphReasoning,
		Status:           status,
		RiskScore:        outcome.RiskScore,
		ConclusionReason: conclusion,
	}
}

// generateTitle derives a short display title from the decision
// statement, truncating on a word boundary rather than mid-word, and
// prefixing [CRITICAL]/[HIGH] when the decision's strategic impact
// warrants calling it out before a reader even opens the pack.
func generateTitle(d *decision.Decision) string {
	s := strings.TrimSpace(d.Statement)
	truncated := s
	if len(s) > titleMaxLen {
		cut := strings.LastIndex(s[:titleMaxLen], " ")
		if cut <= 0 {
			cut = titleMaxLen
		}
		truncated = strings.TrimSpace(s[:cut]) + "…"
	}

	if d.StrategicImpact != nil {
		switch *d.StrategicImpact {
		case decision.ImpactCritical, decision.ImpactHigh:
			return fmt.Sprintf("[%s] %s", strings.ToUpper(string(*d.StrategicImpact)), truncated)
		}
	}
	return truncated
}

// detectMissingItems is the single source of truth for what a decision is
// missing: pure structural checks against d, never re-derived from flag
// names. strategic_impact in {high, critical} is the only condition under
// which absent KPIs/goals count as missing (decision.StrategicImpact's
// RequiresMeasurables).
func detectMissingItems(d *decision.Decision) []string {
	var missing []string
	if len(d.Owners) == 0 {
		missing = append(missing, "owner")
	}
	if len(d.Risks) == 0 {
		missing = append(missing, "risk_assessment")
	}
	if d.StrategicImpact != nil && d.StrategicImpact.RequiresMeasurables() {
		if len(d.KPIs) == 0 {
			missing = append(missing, "kpis")
		}
		if len(d.Goals) == 0 {
			missing = append(missing, "goals")
		}
	}
	return missing
}

// determineStatus derives the governance disposition, risk level and
// whether human approval is required: blocked whenever any flag name
// contains "CRITICAL" anywhere in it (not just an exact-match severity
// check — a flag like STRATEGIC_CRITICAL or CRITICAL_CONFLICT both
// qualify), review_required when the risk score alone crosses the high
// threshold, when human review is otherwise required, when any flag was
// raised at all, or when the risk score crosses the lower review
// threshold, and compliant only when none of the above hold.
func determineStatus(d *decision.Decision, outcome rules.Outcome) (status Status, riskLevel string, humanApprovalRequired bool) {
	humanApprovalRequired = rules.RequiresHumanReview(d, outcome)

	for _, f := range outcome.Flags {
		if strings.Contains(f.Name, "CRITICAL") {
			return StatusBlocked, "high", humanApprovalRequired
		}
	}

	if outcome.RiskScore >= highRiskScoreThreshold {
		return StatusReviewRequired, "high", humanApprovalRequired
	}

	if humanApprovalRequired || len(outcome.Flags) > 0 || outcome.RiskScore >= reviewRiskScoreThreshold {
		return StatusReviewRequired, "medium", humanApprovalRequired
	}

	return StatusCompliant, "low", humanApprovalRequired
}

// auditRules strips a triggered Rule down to the identifying fields the
// audit trail surfaces, never the full condition/consequence tree.
func auditRules(triggered []rules.Rule) []AuditRule {
	out := make([]AuditRule, 0, len(triggered))
	for _, r := range triggered {
		out = append(out, AuditRule{RuleID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out
}

// extractRationales surfaces the human-readable reason each triggered
// rule fired, plus any chain step rationale not already covered by its
// rule (an approval step can exist without a corresponding triggered-rule
// entry when it was seeded directly).
func extractRationales(outcome rules.Outcome) []string {
	var rationales []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			rationales = append(rationales, s)
		}
	}
	for _, r := range outcome.Triggered {
		if r.Description != "" {
			add(fmt.Sprintf("%s: %s", r.Name, r.Description))
		} else {
			add(r.Name)
		}
	}
	for _, step := range outcome.ApprovalChain {
		if step.Rationale != "" {
			add(fmt.Sprintf("%s - %s", step.Role, step.Rationale))
		}
	}
	return rationales
}

// summarizeConclusion produces a one-sentence, human-readable reason for
// the governance conclusion, cross-referencing triggered rules with the
// approval chain so the result expresses a conditional resolution path
// rather than a bare status label. It distinguishes six forms: blocked
// with a clean approval path, blocked with structural gaps on top of
// required approvals, blocked with no resolution path at all, review
// required with a known approver, review required with none, and
// compliant.
func summarizeConclusion(status Status, riskLevel string, outcome rules.Outcome, reason reasoner.Result, missing []string) string {
	requiredApprovers := approverNames(outcome.ApprovalChain)

	switch status {
	case StatusBlocked:
		var causes []string
		var ruleNames []string
		for _, r := range outcome.Triggered {
			name := r.Name
			if name == "" {
				name = r.ID
			}
			ruleNames = append(ruleNames, name)
		}
		if len(ruleNames) > 0 {
			causes = append(causes, strings.Join(ruleNames, ", "))
		}

		structuralGaps := len(missing) > 0
		if structuralGaps {
			causes = append(causes, strings.Join(missingPhrases(missing), "; "))
		}

		if len(reason.Contradictions) > 0 {
			causes = append(causes, fmt.Sprintf("%d logical contradiction(s)", len(reason.Contradictions)))
		}

		causeStr := "governance issues"
		if len(causes) > 0 {
			causeStr = strings.Join(causes, "; ")
		}

		if len(requiredApprovers) > 0 && !structuralGaps {
			return fmt.Sprintf("Blocked by %s — resolvable with %s approval.", causeStr, strings.Join(requiredApprovers, " and "))
		}
		if len(requiredApprovers) > 0 && structuralGaps {
			return fmt.Sprintf("Blocked by %s. Resolve structural gaps first, then obtain %s approval.", causeStr, strings.Join(requiredApprovers, " and "))
		}
		return fmt.Sprintf("Blocked by %s. No resolution path available — review decision structure.", causeStr)

	case StatusReviewRequired:
		if len(requiredApprovers) > 0 {
			return fmt.Sprintf("Requires human review — risk level is %s with %d rule(s) triggered. Proceed after %s approval.",
				riskLevel, len(outcome.Triggered), strings.Join(requiredApprovers, ", "))
		}
		return fmt.Sprintf("Requires human review — risk level is %s with %d rule(s) triggered.", riskLevel, len(outcome.Triggered))

	default:
		return "Decision is compliant with governance rules. No blocking issues found."
	}
}

func approverNames(chain []decision.ApprovalChainStep) []string {
	var names []string
	for _, step := range chain {
		if !step.Required {
			continue
		}
		who := step.Role
		if step.Name != "" {
			who = step.Name
		}
		if who == "" {
			who = "unknown"
		}
		names = append(names, who)
	}
	return names
}

func missingPhrases(missing []string) []string {
	out := make([]string, 0, len(missing))
	for _, m := range missing {
		out = append(out, "missing "+strings.ReplaceAll(m, "_", " "))
	}
	return out
}

// generateNextActions turns the approval chain, missing items, and
// remaining flags into concrete, actionable guidance, deriving guidance
// from the actual triggered-rule type rather than hardcoded rule ids so
// it stays accurate for any tenant's rule set.
func generateNextActions(d *decision.Decision, outcome rules.Outcome, status Status, missing []string) []string {
	var actions []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			actions = append(actions, s)
		}
	}

	ruleByID := make(map[string]rules.Rule, len(outcome.Triggered))
	for _, r := range outcome.Triggered {
		ruleByID[r.ID] = r
	}

	for _, step := range outcome.ApprovalChain {
		who := step.Role
		if step.Name != "" {
			who = step.Name
		}
		ruleType := ruleByID[step.SourceRuleID].Type
		if step.RuleAction == "ESCALATION" {
			add(buildReviewGuidance(who, ruleType, step.Rationale, d))
		} else {
			add(buildApprovalGuidance(who, ruleType, step.Rationale, d))
		}
	}

	for _, item := range missing {
		add(buildMissingItemGuidance(item))
	}

	hasFlag := func(name string) bool {
		for _, f := range outcome.Flags {
			if f.Name == name {
				return true
			}
		}
		return false
	}

	if hasFlag("GOVERNANCE_COVERAGE_GAP") {
		add(buildCoverageGapGuidance(d))
	}

	if hasFlag("CRITICAL_CONFLICT") {
		add("Resolve the conflicting items in this decision — reconcile contradictions among its goals, KPIs and risks, then resubmit.")
	}

	if status == StatusBlocked && len(actions) == 0 {
		add("Cannot proceed until the blocking issues above are resolved — resubmit to the governance review team once addressed.")
	}
	if status == StatusReviewRequired && len(actions) == 0 {
		add("Assign a reviewer and route this decision pack to them.")
	}
	if status == StatusCompliant && len(actions) == 0 {
		add("All governance requirements are met — proceed after a final sign-off check.")
	}

	return actions
}

// buildMissingItemGuidance mirrors buildReviewGuidance/buildApprovalGuidance
// in offering an "OR" alternative where one exists, rather than a bare
// instruction to go fill in the gap.
func buildMissingItemGuidance(item string) string {
	switch item {
	case "owner":
		return "Assign an accountable owner for this decision — name a responsible lead, or add one to the decision statement itself."
	case "risk_assessment":
		return "Add a risk assessment — identify at least one failure mode and its mitigation, or document why none applies."
	case "kpis":
		return "Define measurable KPIs — target value, target date and measurement cadence, or link to an existing strategic goal's KPIs."
	case "goals":
		return "Connect this decision to an organizational strategic goal."
	default:
		return fmt.Sprintf("Address missing item: %s.", strings.ReplaceAll(item, "_", " "))
	}
}

// buildCoverageGapGuidance gives context-aware wording for
// GOVERNANCE_COVERAGE_GAP using whatever content the decision actually
// has, rather than a generic "no rule matched" line.
func buildCoverageGapGuidance(d *decision.Decision) string {
	if len(d.Risks) > 0 {
		snippet := d.Risks[0].Description
		if len(snippet) > coverageGapSnippetLen {
			snippet = snippet[:coverageGapSnippetLen] + "..."
		}
		return fmt.Sprintf("No governance rule matched this decision — given the %q risk, route it for manual review or ask the governance team to add a rule for this decision type.", snippet)
	}
	snippet := d.Statement
	if len(snippet) > coverageGapSnippetLen {
		snippet = snippet[:coverageGapSnippetLen]
	}
	return fmt.Sprintf("No governance rule matched this %q decision — consider adding a rule for this decision type, or request a manual compliance review.", snippet)
}

// buildReviewGuidance builds context-aware guidance for a review-type
// (require_review) approval step: what to prepare and attach for that
// reviewer, specialized by the triggering rule's type.
func buildReviewGuidance(who string, ruleType rules.RuleType, rationale string, d *decision.Decision) string {
	switch ruleType {
	case rules.RuleTypeCompliance:
		if rationale != "" {
			return fmt.Sprintf("Get review from %s — prepare the %s context beforehand and attach supporting documents (policy basis, risk mitigation plan).", who, rationale)
		}
		return fmt.Sprintf("Get review from %s — attach documentation of the compliance risk (policy basis, risk mitigation plan).", who)
	case rules.RuleTypeHR:
		if d.HeadcountChange != nil && *d.HeadcountChange > 0 {
			return fmt.Sprintf("Get review from %s — attach a staffing plan for the %d-person headcount change (job descriptions, budget, hiring timeline).", who, *d.HeadcountChange)
		}
		return fmt.Sprintf("Get review from %s — attach the staffing plan and hiring requirements.", who)
	case rules.RuleTypeFinancial:
		if d.Cost != nil {
			return fmt.Sprintf("Get review from %s — attach the budget justification and cost-benefit analysis for a $%.0f expenditure.", who, *d.Cost)
		}
		return fmt.Sprintf("Get review from %s — attach a budget justification and cost-benefit analysis.", who)
	default:
		if rationale != "" {
			return fmt.Sprintf("Get review from %s — %s.", who, rationale)
		}
		return fmt.Sprintf("Get review from %s.", who)
	}
}

// buildApprovalGuidance builds context-aware "approve OR adjust" guidance
// for a hard approval step, offering a concrete alternative path (lowering
// cost below a threshold, trimming headcount) where one exists.
func buildApprovalGuidance(who string, ruleType rules.RuleType, rationale string, d *decision.Decision) string {
	const (
		boardLevelCost = 1_000_000_000.0
		cLevelCost     = 50_000_000.0
		largeHeadcount = 10
	)

	switch ruleType {
	case rules.RuleTypeFinancial:
		if d.Cost == nil {
			if rationale != "" {
				return fmt.Sprintf("Get approval from %s — %s. Attach a budget justification and cost-benefit analysis.", who, rationale)
			}
			return fmt.Sprintf("Get approval from %s — attach a budget justification and cost-benefit analysis.", who)
		}
		cost := *d.Cost
		switch {
		case cost > boardLevelCost:
			return fmt.Sprintf("Get approval from %s — a $%.0f spend requires board-level approval. Prepare sequential CFO and CEO approval documents, or reduce the budget below $%.0f.", who, cost, boardLevelCost)
		case cost > cLevelCost:
			return fmt.Sprintf("Get approval from %s — a $%.0f spend requires CFO approval. Submit an approval request with cost-benefit analysis and budget justification, or reduce the budget to $%.0f or below.", who, cost, cLevelCost)
		default:
			return fmt.Sprintf("Get approval from %s — submit an approval request for the $%.0f expenditure.", who, cost)
		}

	case rules.RuleTypeStrategic:
		if d.StrategicImpact != nil && *d.StrategicImpact == decision.ImpactCritical {
			return fmt.Sprintf("Get approval from %s — company-wide strategic impact is rated critical. Prepare an executive briefing with a strategic review report and stakeholder analysis.", who)
		}
		if rationale != "" {
			return fmt.Sprintf("Get approval from %s — %s. Attach a strategic alignment review.", who, rationale)
		}
		return fmt.Sprintf("Get approval from %s — attach a strategic impact review.", who)

	case rules.RuleTypeHR:
		if d.HeadcountChange != nil && *d.HeadcountChange >= largeHeadcount {
			return fmt.Sprintf("Get approval from %s — a %d-person headcount change requires CEO approval. Prepare an organizational change plan (staffing, budget, strategic rationale), or reduce the change below %d people.", who, *d.HeadcountChange, largeHeadcount)
		}
		return fmt.Sprintf("Get approval from %s — submit a staffing change plan.", who)

	default:
		if rationale != "" {
			return fmt.Sprintf("Get approval from %s — %s.", who, rationale)
		}
		return fmt.Sprintf("Get approval from %s.", who)
	}
}
