package tenant

import (
	"context"
	"fmt"
	"sync"

	"decisiongov/platform/shared/logger"
)

// Registry loads and caches Tenant configurations from one or more
// Sources, consulted in order until one resolves the id. A successful
// load is cached for the lifetime of the process; tenant data is treated
// as slow-changing configuration, not live state.
type Registry struct {
	sources []Source
	log     *logger.Logger

	mu    sync.RWMutex
	cache map[string]*Tenant
}

// NewRegistry constructs a Registry backed by sources, tried in order.
func NewRegistry(log *logger.Logger, sources ...Source) *Registry {
	return &Registry{
		sources: sources,
		log:     log,
		cache:   make(map[string]*Tenant),
	}
}

// Load returns the Tenant for id, loading and validating it from the
// backing sources on first access.
func (r *Registry) Load(ctx context.Context, id string) (*Tenant, error) {
	r.mu.RLock()
	if t, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return t, nil
	}
	r.mu.RUnlock()

	var lastErr error
	for _, src := range r.sources {
		raw, err := src.Load(ctx, id)
		if err != nil {
			lastErr = err
			continue
		}
		t, err := parseTenant(id, raw)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[id] = t
		r.mu.Unlock()
		if r.log != nil {
			r.log.Info(id, "", "tenant loaded", map[string]interface{}{
				"personnel_count": len(t.Personnel),
				"rule_count":      len(t.Rules),
			})
		}
		return t, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("tenant %q: no sources configured", id)
	}
	return nil, fmt.Errorf("tenant %q: not found in any source: %w", id, lastErr)
}

// ListIDs aggregates tenant ids across every configured source,
// deduplicated, preserving source order.
func (r *Registry) ListIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, src := range r.sources {
		srcIDs, err := src.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("tenant registry: list ids: %w", err)
		}
		for _, id := range srcIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// Fixture returns one named fixture document for a tenant, e.g. a demo
// decision input used by the supplemented "/v1/fixtures" endpoint.
func (r *Registry) Fixture(ctx context.Context, tenantID, fixtureName string) ([]byte, error) {
	t, err := r.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	doc, ok := t.Fixtures[fixtureName]
	if !ok {
		return nil, fmt.Errorf("tenant %q: fixture %q not found", tenantID, fixtureName)
	}
	return doc, nil
}
