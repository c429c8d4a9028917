package tenant

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"decisiongov/platform/rules"
)

func TestDetectReportsToCycleRejectsCycle(t *testing.T) {
	personnel := []rules.Personnel{
		{ID: "a", Name: "A", ReportsTo: "b"},
		{ID: "b", Name: "B", ReportsTo: "c"},
		{ID: "c", Name: "C", ReportsTo: "a"},
	}
	err := detectReportsToCycle(personnel)
	if err == nil {
		t.Fatal("expected cycle detection error")
	}
	for _, id := range []string{"a", "b", "c"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("expected error to name offending id %q, got: %v", id, err)
		}
	}
}

func TestDetectReportsToCycleAcceptsTree(t *testing.T) {
	personnel := []rules.Personnel{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", ReportsTo: "a"},
		{ID: "c", Name: "C", ReportsTo: "b"},
	}
	if err := detectReportsToCycle(personnel); err != nil {
		t.Fatalf("expected no error for acyclic chain, got: %v", err)
	}
}

func TestRegistryLoadFromFileSource(t *testing.T) {
	dir := t.TempDir()
	const doc = `{
		"name": "Example Co",
		"personnel": [{"id": "p1", "name": "VP One", "level": "vp"}],
		"rules": [],
		"strategic_goals": [{"goal_id": "g1", "name": "grow revenue"}]
	}`
	if err := os.WriteFile(filepath.Join(dir, "example.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg := NewRegistry(nil, NewFileSource(dir))
	tn, err := reg.Load(context.Background(), "example")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.Name != "Example Co" || len(tn.Personnel) != 1 {
		t.Fatalf("unexpected tenant: %+v", tn)
	}

	// Second load should hit cache, not the filesystem again.
	if err := os.Remove(filepath.Join(dir, "example.json")); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}
	if _, err := reg.Load(context.Background(), "example"); err != nil {
		t.Fatalf("expected cached load to succeed, got: %v", err)
	}
}

func TestRegistryLoadMissingTenant(t *testing.T) {
	reg := NewRegistry(nil, NewFileSource(t.TempDir()))
	if _, err := reg.Load(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing tenant")
	}
}
