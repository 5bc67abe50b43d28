package repository

import "errors"

// Sentinel kinds for feedback store errors.
var (
	// ErrNoSubmission signals a remove for an account with no stored
	// submission, including accounts whose node was already emptied and
	// unlinked. Contract violation, not a user-visible condition.
	ErrNoSubmission = errors.New("no submission for account")
)
