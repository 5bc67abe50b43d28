package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// WebsitesHandler handles website availability administration.
type WebsitesHandler struct {
	deps Dependencies
}

// NewWebsitesHandler creates a new websites handler.
func NewWebsitesHandler(deps Dependencies) *WebsitesHandler {
	return &WebsitesHandler{deps: deps}
}

// websiteRequest mirrors the wire schema for PUT /websites/{id}.
type websiteRequest struct {
	Enabled bool `json:"enabled"`
}

type websiteResponse struct {
	Website  string `json:"website"`
	Enabled  bool   `json:"enabled"`
	Previous bool   `json:"previous"`
}

// HandlePutWebsite handles PUT /websites/{id} requests and returns the
// website's previous state.
func (h *WebsitesHandler) HandlePutWebsite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}

	website := strings.TrimPrefix(r.URL.Path, "/websites/")
	if website == "" || strings.Contains(website, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing website id", ErrBadRequest))
		return
	}

	var req websiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	previous := h.deps.SetWebsiteEnabled(r.Context(), website, req.Enabled)
	writeJSON(w, http.StatusOK, websiteResponse{Website: website, Enabled: req.Enabled, Previous: previous})
}
