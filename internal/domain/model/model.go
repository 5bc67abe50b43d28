// Package model contains domain models passed between layers.
package model

import "strings"

// Account identifies the submitting user account.
type Account string

// EntityKey identifies a rated subject. It is a comparable value type and
// is used directly as a map key; equal keys always address the same
// aggregate node in the store.
type EntityKey struct {
	Website  string       // source website id
	Item     string       // item id within the website
	Criteria CriteriaType // criteria family the ratings belong to
}

// Profile is the metadata snapshot attached to a submission. Different
// submissions for the same entity may carry slightly different variants;
// the ranking index publishes the most frequent one.
type Profile struct {
	DisplayName string
	Tags        []string // explicit tags supplied by the submitter
}

// variantSeparator joins profile fields into an encoded variant key.
// Unit separator never occurs in validated display names or tags.
const variantSeparator = "\x1f"

// Variant returns the encoded form of the profile used for canonical
// selection. Equal variants encode to equal strings.
func (p Profile) Variant() string {
	parts := make([]string, 0, len(p.Tags)+1)
	parts = append(parts, p.DisplayName)
	parts = append(parts, p.Tags...)
	return strings.Join(parts, variantSeparator)
}

// ProfileFromVariant reconstructs a profile from its encoded variant.
func ProfileFromVariant(v string) Profile {
	parts := strings.Split(v, variantSeparator)
	p := Profile{DisplayName: parts[0]}
	if len(parts) > 1 {
		p.Tags = parts[1:]
	}
	return p
}

// Submission carries one account's ratings for one entity. Overall is a
// percentage rating in steps of ten (0, 10, ..., 100); Ratings holds
// per-criterion values on each criterion's own scale. Inputs are validated
// by the protocol layer before they reach the engine.
type Submission struct {
	Overall int
	Ratings map[Criterion]int
}

// OverallBuckets is the size of the overall rating histogram
// (ratings 0, 10, ..., 100).
const OverallBuckets = 11
