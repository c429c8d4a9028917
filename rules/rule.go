package rules

import (
	"encoding/json"

	"decisiongov/platform/decision"
)

// RuleType is the governance taxonomy a rule belongs to. Flags like
// PRIVACY_REVIEW_REQUIRED and FINANCIAL_THRESHOLD_EXCEEDED are derived from
// the set of types among a decision's triggered rules, not from any single
// rule's consequence.
type RuleType string

const (
	RuleTypeFinancial   RuleType = "financial"
	RuleTypePrivacy     RuleType = "privacy"
	RuleTypeCompliance  RuleType = "compliance"
	RuleTypeStrategic   RuleType = "strategic"
	RuleTypeHR          RuleType = "hr"
	RuleTypeOperational RuleType = "operational"
)

// ActionType is the closed set of things a triggered rule's consequence can
// ask the engine to do.
type ActionType string

const (
	// ActionRequireApproval and ActionRequireReview both add one chain step
	// per unique approver id; ActionRequireReview escalates the step's
	// auth_type to ESCALATION instead of REQUIRED.
	ActionRequireApproval ActionType = "require_approval"
	ActionRequireReview   ActionType = "require_review"
	// ActionRequireGoalMapping adds no approver; the rule is recorded as
	// triggered and contributes to STRATEGIC_CRITICAL via its rule type.
	ActionRequireGoalMapping ActionType = "require_goal_mapping"
	// ActionBlock adds no approver either; it is a hard stop recorded as
	// triggered like ActionRequireGoalMapping, surfaced through the
	// decision's flags and status rather than an approval gate.
	ActionBlock ActionType = "block"
)

// Action is the consequence attached to a rule once its condition matches.
// On the wire this is the rule's "consequence" object.
type Action struct {
	// Type selects which of the four gate behaviors this consequence asks for.
	Type ActionType `json:"action"`
	// ApproverRoles is paired positionally with ApproverIDs: for
	// require_approval/require_review, each (role, id) pair becomes (at
	// most) one approval chain step, deduplicated by approver id.
	ApproverRoles []string `json:"approver_roles,omitempty"`
	ApproverIDs   []string `json:"approver_ids,omitempty"`
	// Severity is the severity carried by this consequence, used for
	// CRITICAL_CONFLICT detection. When the same approver is reached by
	// more than one rule, the merged chain step escalates only its auth
	// type; severities are not compared and chain steps carry none.
	Severity decision.Severity `json:"severity,omitempty"`
}

// Rule is one governance policy entry: a named, tenant-scoped condition
// plus the action to take when it matches.
type Rule struct {
	ID          string
	Name        string
	Description string
	// Type is the rule's governance taxonomy (financial, privacy,
	// compliance, strategic, hr, operational); flag detection keys off the
	// set of types among a decision's triggered rules, never off a single
	// rule's name or consequence flag string.
	Type      RuleType
	Active    bool
	Priority  int
	Condition Condition
	Action    Action
}

// ruleJSON is the on-wire shape: Condition is decoded via the tagged-union
// dispatch in condition.go instead of Go's default struct unmarshaling, and
// Action is carried under the wire name "consequence".
type ruleJSON struct {
	ID          string            `json:"rule_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        RuleType          `json:"type,omitempty"`
	Active      *bool             `json:"active,omitempty"`
	Priority    int               `json:"priority,omitempty"`
	Condition   conditionEnvelope `json:"condition"`
	Consequence Action            `json:"consequence"`
}

// UnmarshalJSON implements the tagged-union dispatch for Rule.Condition and
// defaults Active to true when the tenant file omits it.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Name = raw.Name
	r.Description = raw.Description
	r.Type = raw.Type
	r.Active = raw.Active == nil || *raw.Active
	r.Priority = raw.Priority
	r.Condition = raw.Condition.inner
	r.Action = raw.Consequence
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (r Rule) MarshalJSON() ([]byte, error) {
	active := r.Active
	env := conditionEnvelope{inner: r.Condition}
	raw := ruleJSON{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Active:      &active,
		Priority:    r.Priority,
		Condition:   env,
		Consequence: r.Action,
	}
	return json.Marshal(raw)
}

// Personnel is one entry in a tenant's org chart, used to resolve approval
// chain names/levels and to walk reports_to during owner inference.
type Personnel struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Role      string                 `json:"role"`
	Level     decision.ApprovalLevel `json:"level"`
	ReportsTo string                 `json:"reports_to,omitempty"`
}

// Outcome is the result of running all of a tenant's rules against one
// decision: the rules that fired, the ones that passed, the derived
// approval chain, and the accumulated flags.
type Outcome struct {
	Triggered     []Rule
	Passed        []Rule
	ApprovalChain []decision.ApprovalChainStep
	Flags         []Flag
	RiskScore     float64
}

// Flag is a governance flag attached to a decision by the rule engine or a
// later pipeline stage.
type Flag struct {
	Name     string            `json:"name"`
	Severity decision.Severity `json:"severity"`
	Message  string            `json:"message,omitempty"`
}
