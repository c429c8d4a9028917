// Package tenant implements the Tenant Registry (component A): loading,
// validating and caching a tenant's personnel roster, governance rules,
// strategic goals and demo fixtures from a pluggable backing Source.
package tenant

import (
	"encoding/json"
	"fmt"

	"decisiongov/platform/rules"
)

// StrategicGoal is one of a tenant's named strategic objectives, carried in
// full (not collapsed to a bare name) so the Subgraph Builder can match a
// decision's owners against GoalID's OwnerID and score KPI overlap per
// goal, not just against a flat label.
type StrategicGoal struct {
	GoalID      string   `json:"goal_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	OwnerID     string   `json:"owner_id,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	KPIs        []string `json:"kpis,omitempty"`
}

// Tenant is one organization's governance configuration and personnel
// roster, as loaded from a Source.
type Tenant struct {
	ID             string                     `json:"id"`
	Name           string                     `json:"name"`
	Personnel      []rules.Personnel          `json:"personnel"`
	Rules          []rules.Rule               `json:"rules"`
	StrategicGoals []StrategicGoal            `json:"strategic_goals"`
	RiskTolerance  json.RawMessage            `json:"risk_tolerance,omitempty"`
	Fixtures       map[string]json.RawMessage `json:"fixtures,omitempty"`
}

// parseTenant decodes raw JSON bytes into a Tenant and validates that its
// personnel roster's reports_to graph is acyclic.
func parseTenant(id string, raw []byte) (*Tenant, error) {
	var t Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("tenant %q: unmarshal: %w", id, err)
	}
	if t.ID == "" {
		t.ID = id
	}
	if err := detectReportsToCycle(t.Personnel); err != nil {
		return nil, fmt.Errorf("tenant %q: %w", id, err)
	}
	return &t, nil
}

// detectReportsToCycle walks each personnel record's reports_to chain and
// returns an error naming every id on the first cycle it finds. Resolving
// this when the tenant is loaded (rather than tolerating a cycle and
// looping forever in owner inference) makes a malformed tenant file fail
// closed: every load of that tenant returns the error. Tenants load on
// first use, so the error does not stop the process from starting.
func detectReportsToCycle(personnel []rules.Personnel) error {
	byID := make(map[string]rules.Personnel, len(personnel))
	for _, p := range personnel {
		byID[p.ID] = p
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(personnel))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("cycle detected in reports_to chain: %v", append(path, id))
		}
		p, ok := byID[id]
		if !ok || p.ReportsTo == "" {
			state[id] = done
			return nil
		}
		state[id] = visiting
		if err := visit(p.ReportsTo, append(path, id)); err != nil {
			return err
		}
		state[id] = done
		return nil
	}

	for _, p := range personnel {
		if state[p.ID] == unvisited {
			if err := visit(p.ID, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
