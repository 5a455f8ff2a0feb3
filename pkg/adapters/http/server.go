// Package http exposes a scheduler over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Scheduler is the part of stepwise.Scheduler the server needs.
type Scheduler interface {
	Run(ctx context.Context, bound map[string]any) (*domain.Report, error)
	Report(ctx context.Context, runID string) (*domain.Report, error)
	Recipes() []domain.Recipe
	Steps() []*domain.Step
	Inspect() []domain.Edge
	Inputs() schema.Schema
}

// InputDecoder converts JSON inputs into the values the steps expect.
type InputDecoder func(raw map[string]any) (map[string]any, error)

// Server serves one scheduler.
type Server struct {
	scheduler Scheduler
	decode    InputDecoder
	metrics   http.Handler
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithInputDecoder sets how POST /run inputs are converted.
func WithInputDecoder(d InputDecoder) Option {
	return func(s *Server) { s.decode = d }
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	Inputs map[string]any `json:"inputs"`
}

// RecipeView describes one recipe in GET /recipes.
type RecipeView struct {
	Index int      `json:"index"`
	Steps []string `json:"steps"`
	Key   string   `json:"key"`
}

// RecipesResponse is the body of GET /recipes.
type RecipesResponse struct {
	Inputs  schema.Schema `json:"inputs"`
	Recipes []RecipeView  `json:"recipes"`
	Edges   []domain.Edge `json:"edges"`
}

// NewHandler creates the HTTP handler for scheduler.
func NewHandler(scheduler Scheduler, opts ...Option) http.Handler {
	s := &Server{
		scheduler: scheduler,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/recipes", s.Recipes)
	r.Get("/graph", s.Graph)
	r.Post("/run", s.Run)
	r.Get("/reports/{id}", s.GetReport)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Recipes handles GET /recipes.
func (s *Server) Recipes(w http.ResponseWriter, _ *http.Request) {
	resp := RecipesResponse{
		Inputs: s.scheduler.Inputs(),
		Edges:  s.scheduler.Inspect(),
	}
	for i, rec := range s.scheduler.Recipes() {
		resp.Recipes = append(resp.Recipes, RecipeView{Index: i, Steps: rec.Names(), Key: rec.Key()})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Graph handles GET /graph with a Mermaid flowchart. The query parameter
// recipe highlights one recipe.
func (s *Server) Graph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.Overlay
	if q := r.URL.Query().Get("recipe"); q != "" {
		recipes := s.scheduler.Recipes()
		idx, err := strconv.Atoi(q)
		if err != nil || idx < 0 || idx >= len(recipes) {
			http.Error(w, "unknown recipe", http.StatusNotFound)
			return
		}
		overlay = &graph.Overlay{Recipe: recipes[idx].Names()}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.scheduler.Steps(), s.scheduler.Inspect(), overlay)))
}

// Run handles POST /run. Rejected inputs answer 400 and failed recipes 422;
// both carry the report.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Run: invalid request body", "error", err)
		return
	}

	inputs := body.Inputs
	if s.decode != nil {
		decoded, err := s.decode(inputs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			s.logger.Warn("Run: inputs rejected", "error", err)
			return
		}
		inputs = decoded
	}

	report, err := s.scheduler.Run(r.Context(), inputs)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, report)
	case errors.Is(err, domain.ErrIncompleteBoundInputs), errors.Is(err, domain.ErrInvalidBoundInput):
		s.writeJSON(w, http.StatusBadRequest, report)
	case report != nil:
		s.logger.Error("Run failed", "error", err, "run_id", report.RunID)
		s.writeJSON(w, http.StatusUnprocessableEntity, report)
	default:
		s.logger.Error("Run failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetReport handles GET /reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.scheduler.Report(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrReportNotFound) {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("GetReport failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
