// Package pipeline implements the Pipeline Orchestrator (component I): it
// wires the Extractor, Rule Engine, Graph Store, Subgraph Builder,
// Reasoner and Pack Builder into the five-step sequence that turns a raw
// decision submission into a governance pack, advancing the decision's
// Lifecycle Store record at each step.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"decisiongov/platform/extractor"
	"decisiongov/platform/graph"
	"decisiongov/platform/lifecycle"
	"decisiongov/platform/pack"
	"decisiongov/platform/reasoner"
	"decisiongov/platform/rules"
	"decisiongov/platform/shared/logger"
	"decisiongov/platform/subgraph"
	"decisiongov/platform/tenant"
)

// Steps, in pipeline order. Step 4 (terminal) is assigned by
// lifecycle.Record.Complete.
const (
	StepExtract  = 0
	StepEvaluate = 1
	StepReason   = 2
	StepBuildPack = 3
)

// Orchestrator runs the decision pipeline end to end for one process. It
// holds one Graph Store per tenant, since the graph accumulates context
// across that tenant's decisions but must never leak across tenants.
type Orchestrator struct {
	Tenants   *tenant.Registry
	Extractor *extractor.Extractor
	Rules     *rules.Engine
	Reasoner  *reasoner.Reasoner
	Lifecycle *lifecycle.Store
	Log       *logger.Logger

	graphMu sync.Mutex
	graphs  map[string]*graph.Store
}

// New constructs an Orchestrator.
func New(tenants *tenant.Registry, ext *extractor.Extractor, ruleEngine *rules.Engine, reason *reasoner.Reasoner, lc *lifecycle.Store, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		Tenants:   tenants,
		Extractor: ext,
		Rules:     ruleEngine,
		Reasoner:  reason,
		Lifecycle: lc,
		Log:       log,
		graphs:    make(map[string]*graph.Store),
	}
}

func (o *Orchestrator) graphFor(tenantID string) *graph.Store {
	o.graphMu.Lock()
	defer o.graphMu.Unlock()
	g, ok := o.graphs[tenantID]
	if !ok {
		g = graph.NewStore()
		o.graphs[tenantID] = g
	}
	return g
}

// GraphStats reports node/edge counts per tenant graph currently held in
// memory, for the health endpoint's diagnostic use.
type GraphStats struct {
	TenantID  string `json:"tenant_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// GraphStats returns one entry per tenant with an in-memory Graph Store.
func (o *Orchestrator) GraphStats() []GraphStats {
	o.graphMu.Lock()
	defer o.graphMu.Unlock()
	stats := make([]GraphStats, 0, len(o.graphs))
	for tenantID, g := range o.graphs {
		stats = append(stats, GraphStats{
			TenantID:  tenantID,
			NodeCount: g.NodeCount(),
			EdgeCount: g.EdgeCount(),
		})
	}
	return stats
}

// Submit registers a new pending decision record and returns it
// immediately; the caller (typically a worker pool) runs Process
// asynchronously.
func (o *Orchestrator) Submit(tenantID, decisionID string) *lifecycle.Record {
	return o.Lifecycle.Create(decisionID, tenantID)
}

// Process runs the full five-stage pipeline for one decision submission,
// advancing its lifecycle record at every step. Any stage error fails the
// record terminally rather than propagating — the caller (a worker pool
// goroutine) has nothing useful to do with the error beyond what Process
// already recorded.
func (o *Orchestrator) Process(ctx context.Context, tenantID, decisionID, rawText string, useDeepReasoning bool) {
	record, ok := o.Lifecycle.Get(decisionID)
	if !ok {
		record = o.Lifecycle.Create(decisionID, tenantID)
	}

	t, err := o.Tenants.Load(ctx, tenantID)
	if err != nil {
		record.Fail(fmt.Errorf("pipeline: load tenant: %w", err))
		return
	}

	record.Advance(lifecycle.StatusProcessing, StepExtract)
	d, err := o.Extractor.Extract(ctx, tenantID, decisionID, rawText)
	if err != nil {
		record.Fail(fmt.Errorf("pipeline: extract: %w", err))
		return
	}

	record.Advance(lifecycle.StatusProcessing, StepEvaluate)
	outcome := o.Rules.Evaluate(d, t.Personnel, t.Rules)
	graph.UpsertDecisionGraph(o.graphFor(tenantID), decisionID, d, outcome)

	record.Advance(lifecycle.StatusProcessing, StepReason)
	sub := subgraph.Build(decisionID, d, t.Personnel, t.StrategicGoals, t.RiskTolerance, o.graphFor(tenantID))
	reasonResult := o.Reasoner.Reason(ctx, tenantID, decisionID, d, outcome, sub, useDeepReasoning)

	record.Advance(lifecycle.StatusProcessing, StepBuildPack)
	p := pack.Build(d, outcome, reasonResult, sub)

	record.Complete(&p)
	if o.Log != nil {
		o.Log.InfoWithDuration(tenantID, decisionID, "pipeline complete", 0, map[string]interface{}{
			"status": string(p.Status),
		})
	}
}
