// Package httpapi implements the HTTP/SSE Surface (component L): decision
// submission and status endpoints, a server-sent-events stream for live
// progress, and the supplemented company/fixture browsing endpoints, all
// wrapped with CORS and Prometheus instrumentation.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"decisiongov/platform/lifecycle"
	"decisiongov/platform/normalize"
	"decisiongov/platform/pipeline"
	"decisiongov/platform/shared/logger"
	"decisiongov/platform/tenant"
)

// Server wires the pipeline orchestrator, worker pool, tenant registry and
// lifecycle store behind an HTTP API.
type Server struct {
	Orchestrator *pipeline.Orchestrator
	Pool         *pipeline.WorkerPool
	Tenants      *tenant.Registry
	Lifecycle    *lifecycle.Store
	Log          *logger.Logger
	metrics      *metrics

	router *mux.Router
}

// NewServer constructs a Server and registers all routes.
func NewServer(orch *pipeline.Orchestrator, pool *pipeline.WorkerPool, tenants *tenant.Registry, lc *lifecycle.Store, log *logger.Logger) *Server {
	s := &Server{
		Orchestrator: orch,
		Pool:         pool,
		Tenants:      tenants,
		Lifecycle:    lc,
		Log:          log,
		metrics:      newMetrics(),
	}
	s.router = mux.NewRouter()
	s.registerRoutes()
	return s
}

// Handler returns the fully wrapped HTTP handler (routes, CORS, metrics
// middleware) ready to be passed to http.Server.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(s.metrics.middleware(s.router))
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/v1/decisions", s.handleSubmitDecision).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/decisions/{id}", s.handleGetDecision).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/decisions/{id}/stream", s.handleStreamDecision).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/companies", s.handleListCompanies).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/companies/{id}", s.handleGetCompany).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/fixtures", s.handleGetFixture).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"graphs": s.Orchestrator.GraphStats(),
	})
}

type submitRequest struct {
	TenantID          string `json:"tenant_id"`
	Text              string `json:"input_text"`
	UseDeepGovernance bool   `json:"use_deep_governance"`
	UseDeepReasoning  bool   `json:"use_deep_reasoning"`
}

type submitResponse struct {
	DecisionID string `json:"decision_id"`
	Status     string `json:"status"`
	StreamURL  string `json:"stream_url"`
}

func (s *Server) handleSubmitDecision(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.TenantID == "" || req.Text == "" {
		writeError(w, http.StatusUnprocessableEntity, "tenant_id and input_text are required")
		return
	}
	if _, err := s.Tenants.Load(r.Context(), req.TenantID); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown tenant_id")
		return
	}

	decisionID := uuid.NewString()
	s.Orchestrator.Submit(req.TenantID, decisionID)
	s.Pool.Enqueue(pipeline.Job{
		TenantID:         req.TenantID,
		DecisionID:       decisionID,
		RawText:          req.Text,
		UseDeepReasoning: req.UseDeepGovernance || req.UseDeepReasoning,
	})

	writeJSON(w, http.StatusAccepted, submitResponse{
		DecisionID: decisionID,
		Status:     string(lifecycle.StatusPending),
		StreamURL:  "/v1/decisions/" + decisionID + "/stream",
	})
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	record, ok := s.Lifecycle.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}

	if record.Status() != lifecycle.StatusComplete {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"decision_id": id,
			"status":      record.Status(),
			"step":        record.Step(),
			"error":       record.Error(),
		})
		return
	}

	t, err := s.Tenants.Load(r.Context(), record.TenantID)
	var payload interface{}
	if err == nil {
		payload = normalize.BuildConsolePayload(id, *record.Pack(), t.Rules, t.Personnel, "")
	} else {
		payload = normalize.BuildConsolePayload(id, *record.Pack(), nil, nil, "")
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
