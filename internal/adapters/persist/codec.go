// Package persist checkpoints the feedback store to disk and replays a
// checkpoint on startup through a bounded queue and a restore worker pool.
package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/plaudit/internal/domain/model"
)

// Record is the wire form of one persisted submission. Checkpoints hold
// one JSON record per line.
type Record struct {
	ID          uuid.UUID      `json:"id"`
	Account     string         `json:"account"`
	Website     string         `json:"website"`
	Item        string         `json:"item"`
	Criteria    string         `json:"criteria"`
	DisplayName string         `json:"display_name"`
	Tags        []string       `json:"tags,omitempty"`
	Overall     int            `json:"overall"`
	Ratings     map[string]int `json:"ratings,omitempty"`
	UnixMillis  int64          `json:"unix_millis"`
}

// EncodeRecord flattens one stored submission into its wire form. A fresh
// record id is minted per encoding; ids identify checkpoint lines, not
// submissions.
func EncodeRecord(account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission, at time.Time) ([]byte, error) {
	r := Record{
		ID:          uuid.New(),
		Account:     string(account),
		Website:     key.Website,
		Item:        key.Item,
		Criteria:    key.Criteria.String(),
		DisplayName: profile.DisplayName,
		Tags:        profile.Tags,
		Overall:     sub.Overall,
		UnixMillis:  at.UnixMilli(),
	}

	if len(sub.Ratings) > 0 {
		r.Ratings = make(map[string]int, len(sub.Ratings))
		for c, v := range sub.Ratings {
			spec, ok := model.SpecOf(c)
			if !ok {
				return nil, fmt.Errorf("%w: criterion %d", ErrUnknownField, c)
			}
			r.Ratings[spec.Name] = v
		}
	}

	return json.Marshal(&r)
}

// DecodeRecord parses one checkpoint line back into store-domain values.
func DecodeRecord(line []byte) (model.Account, model.EntityKey, model.Profile, model.Submission, time.Time, error) {
	var r Record
	if err := json.Unmarshal(line, &r); err != nil {
		return "", model.EntityKey{}, model.Profile{}, model.Submission{}, time.Time{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	criteria, ok := model.ParseCriteriaType(r.Criteria)
	if !ok {
		return "", model.EntityKey{}, model.Profile{}, model.Submission{}, time.Time{}, fmt.Errorf("%w: criteria %q", ErrCorruptRecord, r.Criteria)
	}
	if r.Account == "" || r.Website == "" || r.Item == "" {
		return "", model.EntityKey{}, model.Profile{}, model.Submission{}, time.Time{}, fmt.Errorf("%w: missing identity", ErrCorruptRecord)
	}

	sub := model.Submission{Overall: r.Overall}
	if len(r.Ratings) > 0 {
		sub.Ratings = make(map[model.Criterion]int, len(r.Ratings))
		for name, v := range r.Ratings {
			c, ok := model.ParseCriterion(name)
			if !ok {
				return "", model.EntityKey{}, model.Profile{}, model.Submission{}, time.Time{}, fmt.Errorf("%w: criterion %q", ErrCorruptRecord, name)
			}
			sub.Ratings[c] = v
		}
	}

	key := model.EntityKey{Website: r.Website, Item: r.Item, Criteria: criteria}
	profile := model.Profile{DisplayName: r.DisplayName, Tags: r.Tags}
	return model.Account(r.Account), key, profile, sub, time.UnixMilli(r.UnixMillis), nil
}
