package index

import (
	"time"

	"github.com/okian/plaudit/internal/domain/tags"
	"github.com/okian/plaudit/pkg/logger"
)

// Option applies a configuration option to an Index.
type Option func(*Index)

// WithMinimumVisibleAverage sets the floor below which published entry
// summaries are suppressed.
func WithMinimumVisibleAverage(floor int) Option {
	return func(x *Index) {
		if floor > 0 {
			x.minVisibleAverage = floor
		}
	}
}

// WithExtractor replaces the tag extractor used to derive display-name tags.
func WithExtractor(e *tags.Extractor) Option {
	return func(x *Index) {
		if e != nil {
			x.extractor = e
		}
	}
}

// SchedulerOption applies a configuration option to the Scheduler.
type SchedulerOption func(*Scheduler)

// WithPeriod sets the housekeeping rebuild period.
func WithPeriod(period time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if period > 0 {
			s.period = period
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
