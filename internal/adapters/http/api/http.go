// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/plaudit/internal/adapters/index"
	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AddSubmission(ctx context.Context, account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission) (repository.AddStatus, repository.BasicSummary, error)
	RemoveSubmission(ctx context.Context, account model.Account, key model.EntityKey) (repository.BasicSummary, error)
	GetBasicSummary(ctx context.Context, key model.EntityKey, showBelowThreshold bool) repository.BasicSummary
	GetDetailedSummary(ctx context.Context, key model.EntityKey, showBelowThreshold bool) repository.DetailedSummary
	GetFeaturedSample(ctx context.Context, kind index.Kind, f index.Filter, size int) (index.Page, error)
	SetWebsiteEnabled(ctx context.Context, website string, enabled bool) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	summaryHandler     *SummaryHandler
	featuredHandler    *FeaturedHandler
	websitesHandler    *WebsitesHandler

	rateLimiter *RateLimiter
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		submissionsHandler: NewSubmissionsHandler(deps),
		summaryHandler:     NewSummaryHandler(deps),
		featuredHandler:    NewFeaturedHandler(deps),
		websitesHandler:    NewWebsitesHandler(deps),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/submissions", s.limited(MetricsMiddleware(s.submissionsHandler.HandleSubmissions, "submissions")))
	mux.HandleFunc("/summary/basic", s.limited(MetricsMiddleware(s.summaryHandler.HandleBasicSummary, "summary_basic")))
	mux.HandleFunc("/summary/detailed", s.limited(MetricsMiddleware(s.summaryHandler.HandleDetailedSummary, "summary_detailed")))
	mux.HandleFunc("/featured", s.limited(MetricsMiddleware(s.featuredHandler.HandleFeatured, "featured")))
	mux.HandleFunc("/websites/", MetricsMiddleware(s.websitesHandler.HandlePutWebsite, "websites"))
}

// limited applies the per-client rate limiter when one is configured.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	if s.rateLimiter == nil {
		return next
	}
	return RateLimitMiddleware(next, s.rateLimiter)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
