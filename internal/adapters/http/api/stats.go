// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// StatsProvider exposes the engine's runtime counters: startup state,
// live entity count, and the configured featured page size.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the feedback engine's runtime statistics.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a stats handler over the given provider.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats answers GET /stats with the engine counters as JSON.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	stats := h.statsProvider.GetStats()
	_ = json.NewEncoder(w).Encode(stats)
}
