package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/plaudit/internal/adapters/index"
	"github.com/okian/plaudit/internal/domain/model"
)

// cursorParts is the field count of the wire cursor
// "sortValue:website:item".
const cursorParts = 3

// FeaturedHandler handles featured sample requests.
type FeaturedHandler struct {
	deps Dependencies
}

// NewFeaturedHandler creates a new featured handler.
func NewFeaturedHandler(deps Dependencies) *FeaturedHandler {
	return &FeaturedHandler{deps: deps}
}

// featuredEntry is the wire shape of one ranked entry.
type featuredEntry struct {
	Website        string   `json:"website"`
	Item           string   `json:"item"`
	DisplayName    string   `json:"display_name"`
	Tags           []string `json:"tags,omitempty"`
	Count          int      `json:"count"`
	Average        int      `json:"average"`
	Suppressed     bool     `json:"suppressed,omitempty"`
	CreationMillis int64    `json:"creation_millis"`
}

type featuredResponse struct {
	Entries   []featuredEntry `json:"entries"`
	EndOfData bool            `json:"end_of_data"`
	Next      string          `json:"next,omitempty"`
}

// HandleFeatured handles GET /featured requests.
func (h *FeaturedHandler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	kind, ok := index.ParseKind(q.Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown kind %q", ErrBadRequest, q.Get("kind")))
		return
	}
	criteria, ok := model.ParseCriteriaType(q.Get("criteria"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown criteria %q", ErrBadRequest, q.Get("criteria")))
		return
	}
	websites := splitCSV(q.Get("websites"))
	if len(websites) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing websites", ErrBadRequest))
		return
	}

	f := index.Filter{
		Criteria: criteria,
		Websites: websites,
		Tags:     splitCSV(q.Get("tags")),
	}

	if raw := q.Get("cursor"); raw != "" {
		cursor, err := parseCursor(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
		f.Resume = cursor
	}

	size := 0
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid size %q", ErrBadRequest, raw))
			return
		}
		size = n
	}

	page, err := h.deps.GetFeaturedSample(r.Context(), kind, f, size)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	resp := featuredResponse{
		Entries:   make([]featuredEntry, 0, len(page.Entries)),
		EndOfData: page.EndOfData,
	}
	for _, e := range page.Entries {
		resp.Entries = append(resp.Entries, featuredEntry{
			Website:        e.Key.Website,
			Item:           e.Key.Item,
			DisplayName:    e.Profile.DisplayName,
			Tags:           e.Profile.Tags,
			Count:          e.Summary.Count,
			Average:        e.Summary.Average,
			Suppressed:     e.Summary.Suppressed,
			CreationMillis: e.CreationMillis,
		})
	}
	if page.Next != nil {
		resp.Next = formatCursor(page.Next)
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseCursor reads the "sortValue:website:item" wire cursor.
func parseCursor(raw string) (*index.Cursor, error) {
	parts := strings.SplitN(raw, ":", cursorParts)
	if len(parts) != cursorParts {
		return nil, errors.New("malformed cursor")
	}
	sv, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor sort value: %w", err)
	}
	return &index.Cursor{SortValue: sv, Website: parts[1], Item: parts[2]}, nil
}

func formatCursor(c *index.Cursor) string {
	return fmt.Sprintf("%d:%s:%s", c.SortValue, c.Website, c.Item)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
