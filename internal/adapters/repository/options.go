package repository

// Option applies a configuration option to the FeedbackStore.
type Option func(*FeedbackStore)

// WithMaxSubmissionsPerAccount caps how many live submissions one account
// may hold across all entities.
func WithMaxSubmissionsPerAccount(limit int) Option {
	return func(s *FeedbackStore) {
		if limit > 0 {
			s.maxPerAccount = limit
		}
	}
}

// WithMinimumVisibleAverage sets the overall-rating floor below which
// averages are suppressed in summaries.
func WithMinimumVisibleAverage(floor int) Option {
	return func(s *FeedbackStore) {
		if floor > 0 {
			s.minVisibleAverage = floor
		}
	}
}
