package service

import "errors"

// Sentinel errors returned across the service boundary.
var (
	ErrWebsiteDisabled   = errors.New("website is not available")
	ErrInvalidSubmission = errors.New("invalid submission")
)
