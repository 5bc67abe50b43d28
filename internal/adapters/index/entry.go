// Package index maintains the featured ranking indexes and the pagination
// merge that reads them.
package index

import (
	"sort"

	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/internal/domain/model"
)

// Kind selects one of the two featured orderings.
type Kind string

// Index kinds.
const (
	KindNew Kind = "new"
	KindHot Kind = "hot"
)

// ParseKind maps a wire name to an index kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case string(KindNew):
		return KindNew, true
	case string(KindHot):
		return KindHot, true
	default:
		return "", false
	}
}

// FeaturedEntry is one ranked, indexed snapshot of an entity. Entries are
// immutable once published; a rebuild discards and regenerates them.
type FeaturedEntry struct {
	Key            model.EntityKey         `json:"key"`
	Profile        model.Profile           `json:"profile"`
	Summary        repository.BasicSummary `json:"summary"`
	CreationMillis int64                   `json:"creation_millis"`
	SortValue      int64                   `json:"sort_value"`

	// tagSet is the union of explicit profile tags and tags derived from
	// the display name, for direct membership checks during filtering.
	tagSet map[string]struct{}
}

// HasTag reports whether the entry carries tag.
func (e *FeaturedEntry) HasTag(tag string) bool {
	_, ok := e.tagSet[tag]
	return ok
}

// Tags returns the entry's tag set in unspecified order.
func (e *FeaturedEntry) Tags() []string {
	out := make([]string, 0, len(e.tagSet))
	for t := range e.tagSet {
		out = append(out, t)
	}
	return out
}

// rankBefore reports whether (sv, website, item) ranks earlier than entry
// e in the descending featured order: higher sort value first, ties by
// website then item, both ascending.
func rankBefore(sv int64, website, item string, e *FeaturedEntry) bool {
	if sv != e.SortValue {
		return sv > e.SortValue
	}
	if website != e.Key.Website {
		return website < e.Key.Website
	}
	return item < e.Key.Item
}

// insertRanked places e into a descending-sorted list at its binary-search
// position.
func insertRanked(list []*FeaturedEntry, e *FeaturedEntry) []*FeaturedEntry {
	i := sort.Search(len(list), func(i int) bool {
		return rankBefore(e.SortValue, e.Key.Website, e.Key.Item, list[i])
	})
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}

// resumeIndex locates where a pagination cursor resumes in a descending
// list: the position just after an exact match, or the insertion point
// when the index content shifted between requests. A position past the
// end means the list is exhausted.
func resumeIndex(list []*FeaturedEntry, sv int64, website, item string) int {
	return sort.Search(len(list), func(i int) bool {
		return rankBefore(sv, website, item, list[i])
	})
}
