// Package subgraph implements the Subgraph Builder (component F): it
// assembles the neighborhood of context a Reasoner needs around one
// decision — a real node/edge graph rooted at the decision, candidate
// owners resolved by fuzzy name/role matching (or, absent any named owner,
// the whole personnel roster) and by walking the reports_to chain,
// strategic-goal alignment scores derived from keyword/owner overlap, risk
// nodes, a risk-tolerance node, and whatever policy/approver context the
// tenant's Graph Store already holds for this decision.
package subgraph

import (
	"encoding/json"
	"regexp"
	"strings"

	"decisiongov/platform/decision"
	"decisiongov/platform/graph"
	"decisiongov/platform/rules"
	"decisiongov/platform/tenant"
)

// alignmentKPI, alignmentOwner and alignmentSemantic are the fixed scores
// assigned to a strategic goal depending on how it was matched.
const (
	alignmentKPI      = 0.9
	alignmentOwner    = 0.7
	alignmentSemantic = 0.5
)

const (
	reportsToWalkDepth = 2
	storeContextDepth  = 2
)

// CandidateOwner is a personnel record proposed as accountable owner,
// together with a short description of how it was matched.
type CandidateOwner struct {
	Personnel rules.Personnel
	Reason    string
}

// GoalAlignment scores how strongly one of the tenant's strategic goals
// relates to the decision being evaluated.
type GoalAlignment struct {
	Goal         string
	Score        float64
	OverlapTypes []string
}

// Subgraph is the assembled context handed to the Reasoner: both the raw
// node/edge graph (for a deep-reasoning prompt or further traversal) and
// the pre-digested views the rest of the pipeline already consumes.
type Subgraph struct {
	Nodes           []*graph.Node
	Edges           []*graph.Edge
	CandidateOwners []CandidateOwner
	GoalAlignments  []GoalAlignment
	Risks           []decision.Risk
}

// builder accumulates a decision-scoped node/edge set, deduping nodes by
// id so repeated extraction stays idempotent.
type builder struct {
	decisionID string
	nodes      map[string]*graph.Node
	order      []string
	edges      []*graph.Edge
}

func newBuilder(decisionID string) *builder {
	return &builder{decisionID: decisionID, nodes: make(map[string]*graph.Node)}
}

// id derives a decision-scoped node id: stable across rebuilds of the same
// decision, but never colliding with another decision's nodes of the same
// type and label.
func (b *builder) id(nodeType graph.NodeType, label string) string {
	return b.decisionID + ":" + graph.GenerateNodeID(nodeType, label)
}

func (b *builder) addNode(n *graph.Node) {
	if _, ok := b.nodes[n.ID]; ok {
		return
	}
	b.nodes[n.ID] = n
	b.order = append(b.order, n.ID)
}

func (b *builder) addEdge(e *graph.Edge) {
	b.edges = append(b.edges, e)
}

func (b *builder) nodeList() []*graph.Node {
	out := make([]*graph.Node, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.nodes[id])
	}
	return out
}

// Build assembles a Subgraph for d, given the tenant's personnel roster,
// strategic goals and opaque risk tolerance. store, if non-nil, is the
// tenant's Graph Store; any policy/approver context it already holds for
// decisionID is merged in to enrich the structural picture the Reasoner
// sees beyond what this one decision's extraction produced.
func Build(decisionID string, d *decision.Decision, personnel []rules.Personnel, strategicGoals []tenant.StrategicGoal, riskTolerance json.RawMessage, store *graph.Store) Subgraph {
	b := newBuilder(decisionID)

	rootID := b.id(graph.NodeAction, decisionID)
	b.addNode(&graph.Node{
		ID:    rootID,
		Type:  graph.NodeAction,
		Label: d.Statement,
		Properties: map[string]interface{}{
			"decision_id": decisionID,
			"confidence":  d.Confidence,
		},
	})

	candidates, matchedPersonnel := b.addOwners(d, personnel, rootID)
	b.addGoalsAndKPIs(d, rootID)
	alignments := b.addGoalAlignments(d, strategicGoals, matchedPersonnel, rootID)
	b.addRisks(d, rootID)
	b.addRiskTolerance(rootID, riskTolerance)

	if store != nil {
		b.mergeStoreContext(store, decisionID)
	}

	return Subgraph{
		Nodes:           b.nodeList(),
		Edges:           b.edges,
		CandidateOwners: candidates,
		GoalAlignments:  alignments,
		Risks:           d.Risks,
	}
}

// addOwners fuzzy-matches the decision's named owners against the
// personnel roster (case-insensitive substring match on name or role, in
// either direction), adds a Person node plus a MATCHES_PERSON edge from
// the decision root for each match, and walks up to reportsToWalkDepth
// hops of reports_to to surface likely escalation owners. If the decision
// names no owners at all, every personnel record is injected as a
// CandidateOwner node (plus REPORTS_TO edges mirroring the org chart)
// instead of leaving the candidate set empty. The returned set of matched
// personnel ids feeds strategic-goal alignment's owner-overlap criterion.
func (b *builder) addOwners(d *decision.Decision, personnel []rules.Personnel, rootID string) ([]CandidateOwner, map[string]bool) {
	byID := make(map[string]rules.Personnel, len(personnel))
	for _, p := range personnel {
		byID[p.ID] = p
	}

	matched := make(map[string]bool)
	var candidates []CandidateOwner

	if len(d.Owners) == 0 {
		for _, p := range personnel {
			matched[p.ID] = true
			pid := b.id(graph.NodeCandidateOwner, p.ID)
			b.addNode(&graph.Node{ID: pid, Type: graph.NodeCandidateOwner, Label: p.Name, Properties: map[string]interface{}{"role": p.Role}})
			b.addEdge(&graph.Edge{From: rootID, To: pid, Predicate: graph.EdgeMatchesPerson})
			candidates = append(candidates, CandidateOwner{Personnel: p, Reason: "no explicit owner named; injected as candidate"})
		}
		for _, p := range personnel {
			if p.ReportsTo == "" {
				continue
			}
			mgr, ok := byID[p.ReportsTo]
			if !ok {
				continue
			}
			b.addEdge(&graph.Edge{
				From:      b.id(graph.NodeCandidateOwner, p.ID),
				To:        b.id(graph.NodeCandidateOwner, mgr.ID),
				Predicate: graph.EdgeReportsTo,
			})
		}
		return candidates, matched
	}

	seen := make(map[string]bool)
	for _, owner := range d.Owners {
		for _, p := range personnel {
			if !fuzzyMatches(owner.Name, p.Name) && !fuzzyMatches(owner.Role, p.Role) {
				continue
			}
			matched[p.ID] = true
			if !seen[p.ID] {
				seen[p.ID] = true
				candidates = append(candidates, CandidateOwner{Personnel: p, Reason: "matched decision owner \"" + owner.Name + "\""})
			}
			pid := b.id(graph.NodePerson, p.ID)
			b.addNode(&graph.Node{ID: pid, Type: graph.NodePerson, Label: p.Name, Properties: map[string]interface{}{"role": p.Role}})
			b.addEdge(&graph.Edge{From: rootID, To: pid, Predicate: graph.EdgeMatchesPerson})

			current := p
			for hop := 0; hop < reportsToWalkDepth && current.ReportsTo != ""; hop++ {
				next, ok := byID[current.ReportsTo]
				if !ok {
					break
				}
				matched[next.ID] = true
				if !seen[next.ID] {
					seen[next.ID] = true
					candidates = append(candidates, CandidateOwner{Personnel: next, Reason: "reports_to chain from " + p.Name})
				}
				nextID := b.id(graph.NodePerson, next.ID)
				b.addNode(&graph.Node{ID: nextID, Type: graph.NodePerson, Label: next.Name, Properties: map[string]interface{}{"role": next.Role}})
				b.addEdge(&graph.Edge{From: b.id(graph.NodePerson, current.ID), To: nextID, Predicate: graph.EdgeReportsTo})
				current = next
			}
		}
	}

	return candidates, matched
}

// fuzzyMatches is a case-insensitive substring test in either direction:
// "VP of Finance" matches "Finance" and vice versa.
func fuzzyMatches(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

var keywordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z']+`)

// extractKeywords tokenizes text into lowercase words of at least two
// letters, stripping digits and percent signs so "reduce churn by 15%"
// yields {"reduce", "churn", "by"}.
func extractKeywords(text string) map[string]bool {
	words := keywordPattern.FindAllString(strings.ToLower(text), -1)
	out := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) >= 2 {
			out[w] = true
		}
	}
	return out
}

func overlaps(a, b map[string]bool) bool {
	for w := range a {
		if b[w] {
			return true
		}
	}
	return false
}

// addGoalsAndKPIs adds a Goal/KPI node (HAS_GOAL/HAS_KPI edge from the
// decision root) for every goal and KPI the decision itself carries.
func (b *builder) addGoalsAndKPIs(d *decision.Decision, rootID string) {
	for _, g := range d.Goals {
		gid := b.id(graph.NodeGoal, g.Description)
		b.addNode(&graph.Node{ID: gid, Type: graph.NodeGoal, Label: g.Description})
		b.addEdge(&graph.Edge{From: rootID, To: gid, Predicate: graph.EdgeHasGoal})
	}
	for _, k := range d.KPIs {
		kid := b.id(graph.NodeKPI, k.Name)
		b.addNode(&graph.Node{ID: kid, Type: graph.NodeKPI, Label: k.Name, Properties: map[string]interface{}{"target": k.Target}})
		b.addEdge(&graph.Edge{From: rootID, To: kid, Predicate: graph.EdgeHasKPI})
	}
}

// addGoalAlignments scores each tenant strategic goal against the decision
// by three independent criteria — (a) a shared KPI keyword, (b) an owner
// in the matched-personnel set, (c) semantic keyword overlap against the
// decision statement — keeping the highest of whichever criteria match,
// and emits an ALIGNS_TO edge carrying overlap_types/confidence for any
// goal that matches at all.
func (b *builder) addGoalAlignments(d *decision.Decision, strategicGoals []tenant.StrategicGoal, matchedPersonnel map[string]bool, rootID string) []GoalAlignment {
	kpiKeywords := make(map[string]bool)
	for _, kpi := range d.KPIs {
		for w := range extractKeywords(kpi.Name) {
			kpiKeywords[w] = true
		}
	}
	statementKeywords := extractKeywords(d.Statement)

	var out []GoalAlignment
	for _, goal := range strategicGoals {
		var overlapTypes []string
		score := 0.0

		goalKPIKeywords := make(map[string]bool)
		for _, k := range goal.KPIs {
			for w := range extractKeywords(k) {
				goalKPIKeywords[w] = true
			}
		}
		if overlaps(goalKPIKeywords, kpiKeywords) {
			overlapTypes = append(overlapTypes, "kpi")
			score = alignmentKPI
		}
		if goal.OwnerID != "" && matchedPersonnel[goal.OwnerID] {
			overlapTypes = append(overlapTypes, "owner")
			if score < alignmentOwner {
				score = alignmentOwner
			}
		}
		goalKeywords := extractKeywords(goal.Name + " " + goal.Description)
		if overlaps(goalKeywords, statementKeywords) {
			overlapTypes = append(overlapTypes, "semantic")
			if score < alignmentSemantic {
				score = alignmentSemantic
			}
		}

		if len(overlapTypes) == 0 {
			continue
		}

		out = append(out, GoalAlignment{Goal: goal.Name, Score: score, OverlapTypes: overlapTypes})

		gid := b.id(graph.NodeGoal, "strategic:"+goal.GoalID)
		b.addNode(&graph.Node{ID: gid, Type: graph.NodeGoal, Label: goal.Name})
		b.addEdge(&graph.Edge{
			From:      rootID,
			To:        gid,
			Predicate: graph.EdgeAlignsTo,
			Properties: map[string]interface{}{
				"overlap_types": overlapTypes,
				"confidence":    score,
			},
		})
	}
	return out
}

// addRisks adds a Risk node (TRIGGERS_RISK edge from the decision root)
// for every risk the decision carries.
func (b *builder) addRisks(d *decision.Decision, rootID string) {
	for _, r := range d.Risks {
		rid := b.id(graph.NodeRisk, r.Description)
		b.addNode(&graph.Node{ID: rid, Type: graph.NodeRisk, Label: r.Description, Properties: map[string]interface{}{"severity": string(r.Severity)}})
		b.addEdge(&graph.Edge{From: rootID, To: rid, Predicate: graph.EdgeTriggersRisk})
	}
}

// addRiskTolerance adds a single RiskTolerance node carrying the tenant's
// opaque risk posture, connected to the decision root by EVALUATED_AGAINST
// so the Reasoner can weigh the decision's own risk profile against it.
func (b *builder) addRiskTolerance(rootID string, riskTolerance json.RawMessage) {
	props := map[string]interface{}{}
	if len(riskTolerance) > 0 {
		var parsed map[string]interface{}
		if err := json.Unmarshal(riskTolerance, &parsed); err == nil {
			props = parsed
		}
	}
	rtID := b.id(graph.NodeRiskTolerance, "tolerance")
	b.addNode(&graph.Node{ID: rtID, Type: graph.NodeRiskTolerance, Label: "risk_tolerance", Properties: props})
	b.addEdge(&graph.Edge{From: rootID, To: rtID, Predicate: graph.EdgeEvaluatedAgainst})
}

// mergeStoreContext pulls in every node (of any type) and edge within
// storeContextDepth hops of this decision's Action node that the tenant's
// in-memory Graph Store already holds (written
// there by the Rule Engine stage, one step earlier in the pipeline) so the
// Reasoner sees governance context this one decision's own extraction
// never produces directly.
func (b *builder) mergeStoreContext(store *graph.Store, decisionID string) {
	startID := graph.GenerateNodeID(graph.NodeAction, decisionID)
	ctx := store.GetContext(startID, storeContextDepth)
	for _, nodes := range ctx.Nodes {
		for _, n := range nodes {
			b.addNode(n)
		}
	}
	for _, e := range ctx.Edges {
		b.addEdge(e)
	}
}
