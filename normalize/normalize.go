// Package normalize implements the Response Normalizer (component K): it
// takes the Pack Builder's typed output and renders the console-facing
// JSON payload — canonicalizing flag messages, unioning triggered and
// passed rules into one list against the tenant's full rule set, and
// resolving approval-chain display fields against the tenant's personnel
// roster.
package normalize

import (
	"decisiongov/platform/decision"
	"decisiongov/platform/pack"
	"decisiongov/platform/rules"
)

// departmentOwnerRoles names roles that count as a legitimate inferred
// owner rather than a mere escalation contact — used to suppress a
// spurious MISSING_OWNER flag when an owner actually was inferred but the
// Rule Engine flagged it anyway because it couldn't tell the difference
// between a department head and a bare escalation role like "CEO".
var departmentOwnerRoles = map[string]bool{
	"department_head": true,
	"vp":               true,
}

// ConsolePayload is the final JSON shape returned to API clients.
type ConsolePayload struct {
	DecisionID       string               `json:"decision_id"`
	Title            string               `json:"title"`
	Status           pack.Status          `json:"status"`
	RiskScore        float64              `json:"risk_score"`
	ConclusionReason string               `json:"conclusion_reason"`
	Flags            []NormalizedFlag     `json:"flags"`
	Rules            []NormalizedRule     `json:"rules"`
	ApprovalChain    []NormalizedApproval `json:"approval_chain"`
	NextActions      []string             `json:"next_actions"`
	MissingItems     []string             `json:"missing_items"`
}

// NormalizedFlag attaches a canonical, human-readable message to a raw
// governance flag.
type NormalizedFlag struct {
	Name     string            `json:"name"`
	Severity decision.Severity `json:"severity"`
	Message  string            `json:"message"`
}

// NormalizedRule is one entry in the union of triggered and passed rules.
type NormalizedRule struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"` // "TRIGGERED" or "PASSED"
}

// NormalizedApproval is one resolved approval chain step.
type NormalizedApproval struct {
	Level    decision.ApprovalLevel `json:"level"`
	Name     string                 `json:"name"`
	Role     string                 `json:"role"`
	Status   string                 `json:"status"`
	AuthType string                 `json:"auth_type"`
}

// canonicalFlagMessages maps a flag name to the message shown to console
// users, overriding whatever ad hoc message the Rule Engine attached — so
// message text stays both stable and independently reviewable.
var canonicalFlagMessages = map[string]string{
	"MISSING_OWNER":                "No accountable owner could be determined for this decision.",
	"MISSING_RISK_ASSESSMENT":      "This decision has not undergone a risk assessment.",
	"HIGH_RISK":                    "This decision carries a high computed risk score.",
	"STRATEGIC_CRITICAL":           "This decision is marked as critical strategic impact.",
	"CRITICAL_CONFLICT":            "A critical governance rule triggered, or the decision conflicts with existing strategic commitments.",
	"PRIVACY_REVIEW_REQUIRED":      "This decision involves personal data and requires privacy review.",
	"FINANCIAL_THRESHOLD_EXCEEDED": "This decision's cost exceeds the tenant's financial approval threshold.",
	"STRATEGIC_MISALIGNMENT":       "This decision appears misaligned with one or more stated strategic goals.",
	"GOVERNANCE_COVERAGE_GAP":      "No governance rule covers this decision despite substantive content.",
}

// BuildConsolePayload assembles the final API response for one evaluated
// decision. tenantRules is the tenant's full active+inactive rule set, used
// to derive the PASSED half of the rules union — the Pack only carries
// the rules that actually triggered.
func BuildConsolePayload(decisionID string, p pack.Pack, tenantRules []rules.Rule, personnel []rules.Personnel, inferredOwnerRole string) ConsolePayload {
	return ConsolePayload{
		DecisionID:       decisionID,
		Title:            p.Title,
		Status:           p.Status,
		RiskScore:        p.RiskScore,
		ConclusionReason: p.ConclusionReason,
		Flags:            normalizeFlags(p.Audit.Flags, inferredOwnerRole),
		Rules:            normalizeRules(p.Audit.TriggeredRules, tenantRules),
		ApprovalChain:    normalizeApprovalChain(p.ApprovalChain, personnel),
		NextActions:      p.NextActions,
		MissingItems:     p.MissingItems,
	}
}

// normalizeFlags canonicalizes each flag's message and suppresses
// MISSING_OWNER when an owner actually was inferred at a legitimate
// department-level role rather than a bare escalation contact.
func normalizeFlags(flags []rules.Flag, inferredOwnerRole string) []NormalizedFlag {
	suppressMissingOwner := inferredOwnerRole != "" && departmentOwnerRoles[inferredOwnerRole]

	out := make([]NormalizedFlag, 0, len(flags))
	for _, f := range flags {
		if f.Name == "MISSING_OWNER" && suppressMissingOwner {
			continue
		}
		message := f.Message
		if canonical, ok := canonicalFlagMessages[f.Name]; ok {
			message = canonical
		}
		out = append(out, NormalizedFlag{Name: f.Name, Severity: f.Severity, Message: message})
	}
	return out
}

// normalizeRules unions triggered rules with the tenant's full rule set:
// every triggered rule is reported TRIGGERED, and every other tenant rule
// (active or not) is reported PASSED, keyed by rule id so the console
// always shows the complete picture of what was evaluated, not just what
// fired.
func normalizeRules(triggered []pack.AuditRule, tenantRules []rules.Rule) []NormalizedRule {
	triggeredIDs := make(map[string]bool, len(triggered))
	out := make([]NormalizedRule, 0, len(triggered)+len(tenantRules))

	for _, r := range triggered {
		triggeredIDs[r.RuleID] = true
		out = append(out, NormalizedRule{ID: r.RuleID, Name: r.Name, Status: "TRIGGERED"})
	}

	for _, r := range tenantRules {
		if triggeredIDs[r.ID] {
			continue
		}
		out = append(out, NormalizedRule{ID: r.ID, Name: r.Name, Status: "PASSED"})
	}

	return out
}

// normalizeApprovalChain fills in a step's missing display name/role from
// the personnel record at the same approval level (the last one listed at
// that level) and always reports status "pending" — approvals are granted outside
// this system and reflected back in through a future decision
// resubmission, not toggled in place here.
func normalizeApprovalChain(chain []decision.ApprovalChainStep, personnel []rules.Personnel) []NormalizedApproval {
	byLevel := make(map[decision.ApprovalLevel]rules.Personnel)
	for _, p := range personnel {
		byLevel[p.Level] = p
	}

	out := make([]NormalizedApproval, 0, len(chain))
	for _, step := range chain {
		name, role := step.Name, step.Role
		if name == "" {
			if p, ok := byLevel[step.Level]; ok {
				name, role = p.Name, p.Role
			}
		}
		authType := step.RuleAction
		if authType == "" {
			authType = "REQUIRED"
		}
		out = append(out, NormalizedApproval{
			Level:    step.Level,
			Name:     name,
			Role:     role,
			Status:   "pending",
			AuthType: authType,
		})
	}
	return out
}
