package index

import (
	"context"
	"sync"

	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/internal/domain/model"
	"github.com/okian/plaudit/internal/domain/scoring"
	"github.com/okian/plaudit/internal/domain/tags"
)

// Default index configuration constants.
const (
	defaultMinVisibleAverage = 30
)

// websiteIndex holds one website's featured entries plus the per-tag
// sub-lists referencing the same entries in the same relative order.
type websiteIndex struct {
	entries []*FeaturedEntry
	byTag   map[string][]*FeaturedEntry
}

// criteriaIndex is the independently locked per-family slice of an Index.
// Each (criteria type, index kind) pair rebuilds under its own write lock.
type criteriaIndex struct {
	mu        sync.RWMutex
	byWebsite map[string]*websiteIndex
}

// Index is one featured ordering ("new" or "hot") across all criteria
// families. It is read-only from the request path; the housekeeping
// scheduler rebuilds it wholesale.
type Index struct {
	kind              Kind
	minVisibleAverage int
	extractor         *tags.Extractor
	byCriteria        map[model.CriteriaType]*criteriaIndex
}

// New constructs an empty index of the given kind.
func New(kind Kind, opts ...Option) *Index {
	x := &Index{
		kind:              kind,
		minVisibleAverage: defaultMinVisibleAverage,
		extractor:         tags.New(),
		byCriteria:        make(map[model.CriteriaType]*criteriaIndex),
	}

	for _, opt := range opts {
		opt(x)
	}

	for _, ct := range model.CriteriaTypes() {
		x.byCriteria[ct] = &criteriaIndex{byWebsite: make(map[string]*websiteIndex)}
	}
	return x
}

// Kind returns the index ordering.
func (x *Index) Kind() Kind {
	return x.kind
}

// Rebuild regenerates every criteria family from the store and returns the
// number of entries published.
func (x *Index) Rebuild(ctx context.Context, store repository.Store) int {
	total := 0
	for _, ct := range model.CriteriaTypes() {
		total += x.RebuildCriteria(ctx, ct, store)
	}
	return total
}

// RebuildCriteria clears and repopulates one criteria family under a
// single write-lock acquisition, so readers never see half-built state.
// Entities emptied concurrently are skipped; a later cycle catches up.
func (x *Index) RebuildCriteria(ctx context.Context, ct model.CriteriaType, store repository.Store) int {
	ci := x.byCriteria[ct]
	ci.mu.Lock()
	defer ci.mu.Unlock()

	// Keep the map shells, drop the lists. Fresh slices keep entries
	// published to earlier readers untouched.
	for _, wi := range ci.byWebsite {
		wi.entries = nil
		for tag := range wi.byTag {
			wi.byTag[tag] = nil
		}
	}

	count := 0
	store.ForEach(ctx, ct, func(stats repository.FeaturedStats) {
		sortValue := stats.CreationMillis
		if x.kind == KindHot {
			sortValue = scoring.HotRank(stats.Count, stats.Average, stats.CreationMillis)
			if sortValue == scoring.Excluded {
				return
			}
		}

		entry := &FeaturedEntry{
			Key:            stats.Key,
			Profile:        stats.Profile,
			Summary:        x.publishedSummary(stats),
			CreationMillis: stats.CreationMillis,
			SortValue:      sortValue,
			tagSet:         x.tagSet(stats.Profile),
		}

		wi, ok := ci.byWebsite[stats.Key.Website]
		if !ok {
			wi = &websiteIndex{byTag: make(map[string][]*FeaturedEntry)}
			ci.byWebsite[stats.Key.Website] = wi
		}
		wi.entries = insertRanked(wi.entries, entry)
		for tag := range entry.tagSet {
			wi.byTag[tag] = insertRanked(wi.byTag[tag], entry)
		}
		count++
	})

	// Tag sub-lists exist only while they have entries.
	for _, wi := range ci.byWebsite {
		for tag, list := range wi.byTag {
			if len(list) == 0 {
				delete(wi.byTag, tag)
			}
		}
	}
	return count
}

// publishedSummary applies the visibility floor to the summary baked into
// a featured entry.
func (x *Index) publishedSummary(stats repository.FeaturedStats) repository.BasicSummary {
	if stats.Average < x.minVisibleAverage {
		return repository.BasicSummary{
			Count:      stats.Count,
			Average:    repository.SuppressedAverage,
			Suppressed: true,
		}
	}
	return repository.BasicSummary{Count: stats.Count, Average: stats.Average}
}

// tagSet unions the tags derived from the display name with the explicit
// profile tags.
func (x *Index) tagSet(profile model.Profile) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range x.extractor.Extract(profile.DisplayName) {
		set[t] = struct{}{}
	}
	for _, t := range profile.Tags {
		if normalized := tags.Normalize(t); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}
