package api

import (
	"fmt"
	"net/http"
)

// SummaryHandler handles summary read requests.
type SummaryHandler struct {
	deps Dependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps Dependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleBasicSummary handles GET /summary/basic requests. Unknown
// entities yield an empty summary, never an error.
func (h *SummaryHandler) HandleBasicSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	key, err := entityKeyFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	showBelow := r.URL.Query().Get("show_below_threshold") == "true"
	writeJSON(w, http.StatusOK, h.deps.GetBasicSummary(r.Context(), key, showBelow))
}

// HandleDetailedSummary handles GET /summary/detailed requests.
func (h *SummaryHandler) HandleDetailedSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	key, err := entityKeyFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	showBelow := r.URL.Query().Get("show_below_threshold") == "true"
	writeJSON(w, http.StatusOK, h.deps.GetDetailedSummary(r.Context(), key, showBelow))
}
