// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/plaudit/internal/adapters/repository"
	service "github.com/okian/plaudit/internal/app"
	"github.com/okian/plaudit/internal/domain/model"
)

// SubmissionsHandler handles submission add and remove requests.
type SubmissionsHandler struct {
	deps Dependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps Dependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// submissionRequest mirrors the wire schema for POST /submissions.
type submissionRequest struct {
	Account     string         `json:"account"`
	Website     string         `json:"website"`
	Item        string         `json:"item"`
	Criteria    string         `json:"criteria"`
	DisplayName string         `json:"display_name"`
	Tags        []string       `json:"tags,omitempty"`
	Overall     int            `json:"overall"`
	Ratings     map[string]int `json:"ratings,omitempty"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.Account) == "":
		return errors.New("missing account")
	case strings.TrimSpace(s.Website) == "":
		return errors.New("missing website")
	case strings.TrimSpace(s.Item) == "":
		return errors.New("missing item")
	case strings.TrimSpace(s.Criteria) == "":
		return errors.New("missing criteria")
	}
	if _, ok := model.ParseCriteriaType(s.Criteria); !ok {
		return fmt.Errorf("unknown criteria %q", s.Criteria)
	}
	return nil
}

type submissionResponse struct {
	Status  string                  `json:"status"`
	Summary repository.BasicSummary `json:"summary"`
}

// statusLabel maps an add status to its wire name.
func statusLabel(status repository.AddStatus) string {
	switch status {
	case repository.AddAccepted:
		return "accepted"
	case repository.AddReplaced:
		return "replaced"
	case repository.AddRejectedTooMany:
		return "declined"
	default:
		return "unknown"
	}
}

// HandleSubmissions dispatches POST and DELETE /submissions requests.
func (h *SubmissionsHandler) HandleSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleAdd(w, r)
	case http.MethodDelete:
		h.handleRemove(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SubmissionsHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	criteria, _ := model.ParseCriteriaType(req.Criteria)
	key := model.EntityKey{Website: req.Website, Item: req.Item, Criteria: criteria}
	profile := model.Profile{DisplayName: req.DisplayName, Tags: req.Tags}

	sub := model.Submission{Overall: req.Overall}
	if len(req.Ratings) > 0 {
		sub.Ratings = make(map[model.Criterion]int, len(req.Ratings))
		for name, v := range req.Ratings {
			c, ok := model.ParseCriterion(name)
			if !ok {
				writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown criterion %q", ErrBadRequest, name))
				return
			}
			sub.Ratings[c] = v
		}
	}

	status, summary, err := h.deps.AddSubmission(r.Context(), model.Account(req.Account), key, profile, sub)
	switch {
	case errors.Is(err, service.ErrWebsiteDisabled):
		writeError(w, http.StatusNotFound, "not_available", err)
		return
	case errors.Is(err, service.ErrInvalidSubmission):
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	writeJSON(w, http.StatusOK, submissionResponse{Status: statusLabel(status), Summary: summary})
}

func (h *SubmissionsHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	key, err := entityKeyFromQuery(r.URL.Query())
	if err != nil || strings.TrimSpace(account) == "" {
		if err == nil {
			err = errors.New("missing account")
		}
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	summary, err := h.deps.RemoveSubmission(r.Context(), model.Account(account), key)
	switch {
	case errors.Is(err, repository.ErrNoSubmission):
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	writeJSON(w, http.StatusOK, submissionResponse{Status: "removed", Summary: summary})
}

// entityKeyFromQuery reads the website, item, and criteria params shared
// by the read and remove endpoints.
func entityKeyFromQuery(q url.Values) (model.EntityKey, error) {
	website := q.Get("website")
	item := q.Get("item")
	criteriaName := q.Get("criteria")

	switch {
	case strings.TrimSpace(website) == "":
		return model.EntityKey{}, errors.New("missing website")
	case strings.TrimSpace(item) == "":
		return model.EntityKey{}, errors.New("missing item")
	case strings.TrimSpace(criteriaName) == "":
		return model.EntityKey{}, errors.New("missing criteria")
	}

	criteria, ok := model.ParseCriteriaType(criteriaName)
	if !ok {
		return model.EntityKey{}, fmt.Errorf("unknown criteria %q", criteriaName)
	}
	return model.EntityKey{Website: website, Item: item, Criteria: criteria}, nil
}
