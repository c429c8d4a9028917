package llmprovider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestNullProviderAlwaysFails(t *testing.T) {
	p := NullProvider{}
	if p.IsHealthy() {
		t.Fatal("NullProvider should never report healthy")
	}
	_, err := p.Query(context.Background(), "anything")
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

type fakeDoer struct {
	status int
	body   string
	err    error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func TestGeminiProviderParsesCandidate(t *testing.T) {
	p := NewGeminiProvider("test-key", "")
	p.client = &fakeDoer{
		status: http.StatusOK,
		body:   `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`,
	}
	out, err := p.Query(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if out != "hello" {
		t.Fatalf("expected 'hello', got %q", out)
	}
	if !p.IsHealthy() {
		t.Fatal("expected provider to report healthy after success")
	}
}

func TestGeminiProviderMarksUnhealthyOnError(t *testing.T) {
	p := NewGeminiProvider("test-key", "")
	p.client = &fakeDoer{err: errors.New("network down")}
	if _, err := p.Query(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}
	if p.IsHealthy() {
		t.Fatal("expected provider to report unhealthy after transport error")
	}
}
