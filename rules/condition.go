package rules

import (
	"encoding/json"
	"fmt"
)

// Condition is a tagged union: either a SingleCondition testing one field
// against one value, or an OrCondition combining several conditions with
// short-circuit OR semantics. Rules authored against a tenant's governance
// policy decode into one of these two concrete types.
type Condition interface {
	// Evaluate reports whether the condition holds against the given field
	// values, which are keyed by Field name and sourced from a flattened
	// view of decision.Decision plus any derived facts.
	Evaluate(facts map[string]interface{}) bool
	kind() string
}

// SingleCondition compares one field against one value using Operator.
type SingleCondition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

func (c SingleCondition) kind() string { return "single" }

// Evaluate looks up Field in facts and applies Operator against Value.
// A missing field evaluates to false for every operator except "!=",
// where absence trivially satisfies inequality.
func (c SingleCondition) Evaluate(facts map[string]interface{}) bool {
	actual, present := facts[c.Field]
	if !present {
		return c.Operator == "!="
	}
	ok, err := ApplyOperator(c.Operator, actual, c.Value)
	if err != nil {
		return false
	}
	return ok
}

// OrCondition holds true if any of its sub-conditions hold. An empty
// OrCondition never matches.
type OrCondition struct {
	Conditions []Condition `json:"conditions"`
}

func (c OrCondition) kind() string { return "or" }

func (c OrCondition) Evaluate(facts map[string]interface{}) bool {
	for _, sub := range c.Conditions {
		if sub.Evaluate(facts) {
			return true
		}
	}
	return false
}

// rawCondition mirrors the on-disk JSON shape before we know which
// concrete Condition type it decodes to.
type rawCondition struct {
	Field      string          `json:"field"`
	Operator   string          `json:"operator"`
	Value      json.RawMessage `json:"value"`
	Conditions []rawCondition  `json:"conditions"`
}

// UnmarshalCondition dispatches a JSON condition blob to SingleCondition or
// OrCondition based on the presence of a "conditions" array, mirroring the
// original engine's open-dict conditions with a closed, statically typed
// union.
func UnmarshalCondition(data []byte) (Condition, error) {
	var raw rawCondition
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("rules: unmarshal condition: %w", err)
	}
	return buildCondition(raw)
}

func buildCondition(raw rawCondition) (Condition, error) {
	if raw.Conditions != nil {
		sub := make([]Condition, 0, len(raw.Conditions))
		for _, rc := range raw.Conditions {
			c, err := buildCondition(rc)
			if err != nil {
				return nil, err
			}
			sub = append(sub, c)
		}
		return OrCondition{Conditions: sub}, nil
	}

	var value interface{}
	if len(raw.Value) > 0 {
		if err := json.Unmarshal(raw.Value, &value); err != nil {
			return nil, fmt.Errorf("rules: unmarshal condition value: %w", err)
		}
	}
	return SingleCondition{Field: raw.Field, Operator: raw.Operator, Value: value}, nil
}

// conditionEnvelope is the JSON-decoding helper used by Rule.UnmarshalJSON.
type conditionEnvelope struct {
	inner Condition
}

func (e *conditionEnvelope) UnmarshalJSON(data []byte) error {
	c, err := UnmarshalCondition(data)
	if err != nil {
		return err
	}
	e.inner = c
	return nil
}

func (e conditionEnvelope) MarshalJSON() ([]byte, error) {
	switch v := e.inner.(type) {
	case SingleCondition:
		return json.Marshal(v)
	case OrCondition:
		return json.Marshal(v)
	default:
		return []byte("null"), nil
	}
}
