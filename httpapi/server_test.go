package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"decisiongov/platform/extractor"
	"decisiongov/platform/lifecycle"
	"decisiongov/platform/llmprovider"
	"decisiongov/platform/pipeline"
	"decisiongov/platform/reasoner"
	"decisiongov/platform/rules"
	"decisiongov/platform/tenant"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	doc := `{"name": "Test Co", "personnel": [], "rules": [], "strategic_goals": []}`
	if err := os.WriteFile(filepath.Join(dir, "testco.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg := tenant.NewRegistry(nil, tenant.NewFileSource(dir))
	ext := extractor.New(llmprovider.NullProvider{}, nil, nil, 1)
	lc := lifecycle.NewStore()
	orch := pipeline.New(reg, ext, rules.NewEngine(), reasoner.New(llmprovider.NullProvider{}, nil), lc, nil)
	pool := pipeline.NewWorkerPool(orch, nil, 1, 2)
	pool.Start(t.Context())
	t.Cleanup(pool.Stop)

	return NewServer(orch, pool, reg, lc, nil)
}

func TestSubmitAndGetDecisionLifecycle(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	submitReq := httptest.NewRequest(http.MethodPost, "/v1/decisions", strings.NewReader(`{"tenant_id":"testco","input_text":"Launch a new product"}`))
	submitW := httptest.NewRecorder()
	handler.ServeHTTP(submitW, submitReq)
	if submitW.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", submitW.Code, submitW.Body.String())
	}

	var submitted submitResponse
	if err := json.Unmarshal(submitW.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var last *httptest.ResponseRecorder
	for time.Now().Before(deadline) {
		getReq := httptest.NewRequest(http.MethodGet, "/v1/decisions/"+submitted.DecisionID, nil)
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, getReq)
		if strings.Contains(last.Body.String(), `"conclusion_reason"`) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected decision to complete within deadline, last response: %s", last.Body.String())
}

func TestListCompanies(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/companies", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Test Co") {
		t.Fatalf("expected company in response, got %s", w.Body.String())
	}
}

func TestGetDecisionNotFound(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/decisions/nope", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSubmitDecisionRejectsUnknownTenant(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/decisions", strings.NewReader(`{"tenant_id":"nope","input_text":"x"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown tenant, got %d", w.Code)
	}
}

func TestHealthReportsGraphStats(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"graphs"`) {
		t.Fatalf("expected graph stats in health response, got %s", w.Body.String())
	}
}
