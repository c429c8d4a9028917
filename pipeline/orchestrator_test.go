package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"decisiongov/platform/extractor"
	"decisiongov/platform/lifecycle"
	"decisiongov/platform/llmprovider"
	"decisiongov/platform/reasoner"
	"decisiongov/platform/rules"
	"decisiongov/platform/tenant"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	dir := t.TempDir()
	doc := `{
		"name": "Test Co",
		"personnel": [{"id": "p1", "name": "VP One", "level": "vp"}],
		"rules": [],
		"strategic_goals": [{"goal_id": "g1", "name": "grow revenue"}]
	}`
	if err := os.WriteFile(filepath.Join(dir, "testco.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg := tenant.NewRegistry(nil, tenant.NewFileSource(dir))
	ext := extractor.New(llmprovider.NullProvider{}, nil, nil, 1)
	return New(reg, ext, rules.NewEngine(), reasoner.New(llmprovider.NullProvider{}, nil), lifecycle.NewStore(), nil)
}

func TestProcessRunsFullPipelineWithFallbackExtraction(t *testing.T) {
	o := newTestOrchestrator(t)
	record := o.Submit("testco", "dec1")
	o.Process(context.Background(), "testco", "dec1", "Launch a new regional office", false)

	if record.Status() != lifecycle.StatusComplete {
		t.Fatalf("expected complete status, got %s (error: %s)", record.Status(), record.Error())
	}
	if record.Pack() == nil {
		t.Fatal("expected a pack on completion")
	}
}

func TestProcessFailsOnUnknownTenant(t *testing.T) {
	o := newTestOrchestrator(t)
	record := o.Submit("nonexistent", "dec1")
	o.Process(context.Background(), "nonexistent", "dec1", "some decision", false)
	if record.Status() != lifecycle.StatusFailed {
		t.Fatalf("expected failed status for unknown tenant, got %s", record.Status())
	}
}

func TestWorkerPoolProcessesEnqueuedJobs(t *testing.T) {
	o := newTestOrchestrator(t)
	o.Submit("testco", "dec1")

	pool := NewWorkerPool(o, nil, 2, 4)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	pool.Enqueue(Job{TenantID: "testco", DecisionID: "dec1", RawText: "Expand into a new market"})
	pool.Stop()
	cancel()

	record, ok := o.Lifecycle.Get("dec1")
	if !ok {
		t.Fatal("expected record to exist")
	}

	deadline := time.Now().Add(2 * time.Second)
	for record.Status() != lifecycle.StatusComplete && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if record.Status() != lifecycle.StatusComplete {
		t.Fatalf("expected job to complete, got status %s", record.Status())
	}
}

