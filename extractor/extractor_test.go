package extractor

import (
	"context"
	"errors"
	"testing"

	"decisiongov/platform/llmprovider"
)

type stubProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubProvider) Query(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("stub exhausted")
}

func (s *stubProvider) Name() string     { return "stub" }
func (s *stubProvider) IsHealthy() bool  { return true }

func TestExtractSucceedsOnFirstAttempt(t *testing.T) {
	p := &stubProvider{responses: []string{`{"decision_statement":"Launch product","confidence":0.9}`}}
	e := New(p, nil, nil, 3)
	d, err := e.Extract(context.Background(), "tenant1", "dec1", "Launch product")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if d.Statement != "Launch product" || d.Confidence != 0.9 {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if p.calls != 1 {
		t.Fatalf("expected 1 call, got %d", p.calls)
	}
}

func TestExtractRetriesThenFallsBack(t *testing.T) {
	p := &stubProvider{responses: []string{"not json", "still not json", "nope"}}
	e := New(p, nil, nil, 3)
	d, err := e.Extract(context.Background(), "tenant1", "dec1", "Some decision text")
	if err != nil {
		t.Fatalf("expected fallback, not error: %v", err)
	}
	if d.Confidence != fallbackConfidence {
		t.Fatalf("expected fallback confidence %v, got %v", fallbackConfidence, d.Confidence)
	}
	if p.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", p.calls)
	}
}

func TestExtractWithNullProviderAlwaysFallsBack(t *testing.T) {
	e := New(llmprovider.NullProvider{}, nil, nil, 2)
	d, err := e.Extract(context.Background(), "tenant1", "dec1", "No LLM configured decision")
	if err != nil {
		t.Fatalf("expected fallback, not error: %v", err)
	}
	if d.Confidence != fallbackConfidence {
		t.Fatalf("expected fallback confidence, got %v", d.Confidence)
	}
}

func TestExtractStripsMarkdownCodeFence(t *testing.T) {
	p := &stubProvider{responses: []string{"```json\n{\"decision_statement\":\"Fenced\",\"confidence\":0.5}\n```"}}
	e := New(p, nil, nil, 3)
	d, err := e.Extract(context.Background(), "tenant1", "dec1", "Fenced")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if d.Statement != "Fenced" {
		t.Fatalf("expected fenced JSON to be parsed, got %+v", d)
	}
}
