package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

type companySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// handleListCompanies implements the supplemented GET /v1/companies
// endpoint: every tenant id known to the registry's configured sources,
// with its display name.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Tenants.ListIDs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list companies")
		return
	}

	summaries := make([]companySummary, 0, len(ids))
	for _, id := range ids {
		t, err := s.Tenants.Load(r.Context(), id)
		if err != nil {
			continue
		}
		summaries = append(summaries, companySummary{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleGetCompany implements the supplemented GET /v1/companies/{id}
// endpoint: the full tenant configuration (personnel, rules, strategic
// goals) for one tenant.
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t, err := s.Tenants.Load(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleGetFixture implements the supplemented GET /v1/fixtures endpoint:
// a named demo decision document for a tenant, used to populate the
// console's "try an example" flow.
func (s *Server) handleGetFixture(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	name := r.URL.Query().Get("name")
	if companyID == "" || name == "" {
		writeError(w, http.StatusBadRequest, "company_id and name query parameters are required")
		return
	}

	doc, err := s.Tenants.Fixture(r.Context(), companyID, name)
	if err != nil {
		writeError(w, http.StatusNotFound, "fixture not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
