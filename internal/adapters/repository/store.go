// Package repository implements the concurrent per-entity feedback store.
package repository

import (
	"context"
	"time"

	"github.com/okian/plaudit/internal/domain/model"
)

// SuppressedAverage is the sentinel published instead of an average that
// falls below the visibility floor.
const SuppressedAverage = -1

// SubmissionRecord is one account's stored submission for an entity.
type SubmissionRecord struct {
	Profile    model.Profile
	Submission model.Submission
	Time       time.Time
}

// AddStatus reports the outcome of an add operation. Policy declines are
// statuses the caller branches on, not errors.
type AddStatus int

const (
	// AddAccepted means a new submission was recorded.
	AddAccepted AddStatus = iota
	// AddReplaced means the account's earlier submission was replaced.
	AddReplaced
	// AddRejectedTooMany means the account hit its submission cap.
	AddRejectedTooMany
)

// BasicSummary is the (count, average) view of an entity. The zero value
// is the distinguished empty summary for entities with no submissions.
type BasicSummary struct {
	Count      int  `json:"count"`
	Average    int  `json:"average"`
	Suppressed bool `json:"suppressed,omitempty"`
}

// CriterionSummary is one criterion's slice of a detailed summary.
// Percentages is indexed by scale value (ScaleMin first) and is omitted
// when the criterion's average is suppressed.
type CriterionSummary struct {
	Criterion   string `json:"criterion"`
	Count       int    `json:"count"`
	Average     int    `json:"average"`
	Suppressed  bool   `json:"suppressed,omitempty"`
	Percentages []int  `json:"percentages,omitempty"`
}

// DetailedSummary extends the basic summary with the overall percentage
// distribution and per-criterion blocks, each suppressed independently.
type DetailedSummary struct {
	Overall            BasicSummary       `json:"overall"`
	OverallPercentages []int              `json:"overall_percentages,omitempty"`
	Criteria           []CriterionSummary `json:"criteria,omitempty"`
}

// FeaturedStats is the per-entity snapshot the housekeeping rebuild reads
// under the node's own lock.
type FeaturedStats struct {
	Key            model.EntityKey
	Count          int
	Average        int
	CreationMillis int64
	Profile        model.Profile // canonical (most frequent) variant
}

// Store provides read/write access to per-entity feedback aggregates.
type Store interface {
	// Add records or replaces an account's submission for an entity and
	// returns the post-add summary.
	Add(ctx context.Context, account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission, at time.Time) (AddStatus, BasicSummary)

	// Remove deletes an account's submission and returns the post-removal
	// summary. Removing a submission that does not exist is a contract
	// violation and returns ErrNoSubmission.
	Remove(ctx context.Context, account model.Account, key model.EntityKey) (BasicSummary, error)

	// Restore replays one persisted record during checkpoint load. The
	// per-account cap does not apply; entity creation time is reconciled
	// to the earliest submission time seen.
	Restore(ctx context.Context, account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission, at time.Time) error

	// BasicSummary returns the entity's summary, or the empty summary for
	// unknown entities.
	BasicSummary(ctx context.Context, key model.EntityKey, showBelowThreshold bool) BasicSummary

	// DetailedSummary returns the full percentage breakdown with
	// suppression applied per field.
	DetailedSummary(ctx context.Context, key model.EntityKey, showBelowThreshold bool) DetailedSummary

	// ForEach visits the featured snapshot of every live entity of one
	// criteria family. Entities emptied concurrently are skipped.
	ForEach(ctx context.Context, criteria model.CriteriaType, fn func(FeaturedStats))

	// ForEachRecord visits every stored submission record, for checkpoint
	// writing. Records are copied out under the node lock; fn runs outside it.
	ForEachRecord(ctx context.Context, fn func(model.Account, model.EntityKey, SubmissionRecord))

	// Count returns the number of entities with at least one live submission.
	Count(ctx context.Context) int
}
