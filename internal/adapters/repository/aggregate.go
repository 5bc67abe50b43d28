package repository

import (
	"sync"
	"time"

	"github.com/okian/plaudit/internal/domain/model"
)

// aggregate is the mutable per-entity statistics record. All fields are
// guarded by mu; the store never touches them without holding it.
type aggregate struct {
	mu sync.Mutex

	key         model.EntityKey
	submissions map[model.Account]SubmissionRecord
	overall     *distribution
	criteria    map[model.Criterion]*distribution
	creation    time.Time

	// deleted is set exactly once, when the last submission is removed
	// and the node is unlinked from the store. A deleted node is never
	// reused; racing inserters must discard it and retry.
	deleted bool
}

func newAggregate(key model.EntityKey, at time.Time) *aggregate {
	return &aggregate{
		key:         key,
		submissions: make(map[model.Account]SubmissionRecord),
		overall:     newDistribution(model.OverallBuckets, 0, 10),
		criteria:    make(map[model.Criterion]*distribution),
		creation:    at,
	}
}

// apply records or replaces one account's submission. Caller holds mu.
// Returns true when an earlier submission was replaced.
func (a *aggregate) apply(account model.Account, rec SubmissionRecord) bool {
	old, replacing := a.submissions[account]
	if replacing {
		a.subtract(old)
	}
	a.submissions[account] = rec
	a.overall.add(rec.Submission.Overall)
	for criterion, value := range rec.Submission.Ratings {
		d, ok := a.criteria[criterion]
		if !ok {
			spec, known := model.SpecOf(criterion)
			if !known {
				// Inputs are validated upstream; an unknown criterion here
				// is a programming error, but it must not corrupt the node.
				continue
			}
			d = newDistribution(spec.ScaleSize(), spec.ScaleMin, 1)
			a.criteria[criterion] = d
		}
		d.add(value)
	}
	if rec.Time.Before(a.creation) {
		a.creation = rec.Time
	} else if replacing {
		a.refreshCreation()
	}
	return replacing
}

// drop removes one account's submission. Caller holds mu and guarantees
// the submission exists.
func (a *aggregate) drop(account model.Account) error {
	old, ok := a.submissions[account]
	if !ok {
		return ErrNoSubmission
	}
	delete(a.submissions, account)
	a.subtract(old)
	if len(a.submissions) > 0 {
		a.refreshCreation()
	}
	return nil
}

// subtract undoes one submission's contributions. Caller holds mu.
func (a *aggregate) subtract(rec SubmissionRecord) {
	a.overall.remove(rec.Submission.Overall)
	for criterion, value := range rec.Submission.Ratings {
		d, ok := a.criteria[criterion]
		if !ok {
			continue
		}
		d.remove(value)
		if d.total == 0 {
			// Distributions exist only for criteria with at least one rating.
			delete(a.criteria, criterion)
		}
	}
}

// refreshCreation re-derives the creation time from the earliest surviving
// submission. Caller holds mu and guarantees submissions is non-empty.
func (a *aggregate) refreshCreation() {
	first := true
	for _, rec := range a.submissions {
		if first || rec.Time.Before(a.creation) {
			a.creation = rec.Time
			first = false
		}
	}
}

// basicSummary builds the (count, average) view. Caller holds mu.
func (a *aggregate) basicSummary(minVisibleAverage int, showBelowThreshold bool) BasicSummary {
	count := len(a.submissions)
	if count == 0 {
		return BasicSummary{}
	}
	avg := a.overall.average()
	if avg < minVisibleAverage && !showBelowThreshold {
		return BasicSummary{Count: count, Average: SuppressedAverage, Suppressed: true}
	}
	return BasicSummary{Count: count, Average: avg}
}

// detailedSummary builds the full percentage breakdown. Suppression is
// applied independently to the overall rating and to each criterion
// against its own visibility floor. Caller holds mu.
func (a *aggregate) detailedSummary(minVisibleAverage int, showBelowThreshold bool) DetailedSummary {
	out := DetailedSummary{
		Overall: a.basicSummary(minVisibleAverage, showBelowThreshold),
	}
	if out.Overall.Count == 0 {
		return out
	}
	if !out.Overall.Suppressed {
		out.OverallPercentages = a.overall.percentages()
	}

	// Table order keeps the output deterministic.
	for _, spec := range model.CriteriaFor(a.key.Criteria) {
		d, ok := a.criteria[spec.ID]
		if !ok {
			continue
		}
		cs := CriterionSummary{Criterion: spec.Name, Count: d.total, Average: d.average()}
		if cs.Average < spec.VisibilityFloor && !showBelowThreshold {
			cs.Average = SuppressedAverage
			cs.Suppressed = true
		} else {
			cs.Percentages = d.percentages()
		}
		out.Criteria = append(out.Criteria, cs)
	}
	return out
}

// featuredStats snapshots the node for the housekeeping rebuild, picking
// the canonical profile as the most frequently submitted variant (ties go
// to the lexicographically smallest encoded variant, which keeps rebuilds
// deterministic across map iteration orders). Caller holds mu.
func (a *aggregate) featuredStats() (FeaturedStats, bool) {
	if a.deleted || len(a.submissions) == 0 {
		return FeaturedStats{}, false
	}

	variants := make(map[string]int, len(a.submissions))
	for _, rec := range a.submissions {
		variants[rec.Profile.Variant()]++
	}
	var canonical string
	best := 0
	for v, n := range variants {
		if n > best || (n == best && v < canonical) {
			canonical = v
			best = n
		}
	}

	return FeaturedStats{
		Key:            a.key,
		Count:          len(a.submissions),
		Average:        a.overall.average(),
		CreationMillis: a.creation.UnixMilli(),
		Profile:        model.ProfileFromVariant(canonical),
	}, true
}
