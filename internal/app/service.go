// Package service wires the feedback store, the featured indexes, the
// housekeeping scheduler, and the checkpoint pipeline behind the
// operations the HTTP API depends on.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/plaudit/internal/adapters/index"
	"github.com/okian/plaudit/internal/adapters/persist"
	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/internal/domain/model"
	"github.com/okian/plaudit/internal/domain/tags"
	"github.com/okian/plaudit/pkg/logger"
	"github.com/okian/plaudit/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultFeaturedPageSize = 10
	defaultCheckpointPeriod = 10 * time.Minute
	defaultRestoreWorkers   = 4
	defaultRestoreQueueSize = 10000
	overallScaleMax         = 100
	overallScaleStep        = 10
)

// unitSeparator never appears in valid display names or tags; the
// profile variant encoding depends on that.
const unitSeparator = "\x1f"

// Service implements the API dependencies for the feedback engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	newIndex  *index.Index
	hotIndex  *index.Index
	scheduler *index.Scheduler
	websites  *websiteRegistry
	writer    *persist.Writer

	// Configuration
	housekeepingPeriod       time.Duration
	featuredPageSize         int
	maxSubmissionsPerAccount int
	minVisibleAverage        int
	checkpointPath           string
	checkpointPeriod         time.Duration
	restoreWorkers           int
	restoreQueueSize         int

	// State
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithHousekeepingPeriod sets the featured index rebuild period.
func WithHousekeepingPeriod(period time.Duration) Option {
	return func(s *Service) {
		if period > 0 {
			s.housekeepingPeriod = period
		}
	}
}

// WithFeaturedPageSize sets the default featured sample size.
func WithFeaturedPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.featuredPageSize = size
		}
	}
}

// WithMaxSubmissionsPerAccount caps how many live submissions one
// account may hold.
func WithMaxSubmissionsPerAccount(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxSubmissionsPerAccount = limit
		}
	}
}

// WithMinimumVisibleAverage sets the summary suppression floor.
func WithMinimumVisibleAverage(floor int) Option {
	return func(s *Service) {
		if floor > 0 {
			s.minVisibleAverage = floor
		}
	}
}

// WithCheckpoint enables periodic checkpointing to the given path.
func WithCheckpoint(path string, period time.Duration) Option {
	return func(s *Service) {
		s.checkpointPath = path
		if period > 0 {
			s.checkpointPeriod = period
		}
	}
}

// WithRestorePool sizes the checkpoint restore worker pool.
func WithRestorePool(workers, queueSize int) Option {
	return func(s *Service) {
		if workers > 0 {
			s.restoreWorkers = workers
		}
		if queueSize > 0 {
			s.restoreQueueSize = queueSize
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		featuredPageSize: defaultFeaturedPageSize,
		checkpointPeriod: defaultCheckpointPeriod,
		restoreWorkers:   defaultRestoreWorkers,
		restoreQueueSize: defaultRestoreQueueSize,
		websites:         newWebsiteRegistry(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the store, restores any checkpoint, and launches the
// housekeeping scheduler and checkpoint writer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting feedback service")

	var storeOpts []repository.Option
	if s.maxSubmissionsPerAccount > 0 {
		storeOpts = append(storeOpts, repository.WithMaxSubmissionsPerAccount(s.maxSubmissionsPerAccount))
	}
	if s.minVisibleAverage > 0 {
		storeOpts = append(storeOpts, repository.WithMinimumVisibleAverage(s.minVisibleAverage))
	}
	s.store = repository.NewFeedbackStore(storeOpts...)

	if s.checkpointPath != "" {
		loader := persist.NewLoader(s.store,
			persist.WithWorkerCount(s.restoreWorkers),
			persist.WithQueueCapacity(s.restoreQueueSize),
			persist.WithLoaderLogger(s.logger.Named("restore")),
		)
		if _, err := loader.Restore(ctx, s.checkpointPath); err != nil {
			return fmt.Errorf("restore checkpoint: %w", err)
		}
	}

	// Both orderings tokenize display names with the same extractor, so a
	// tag filter matches identically regardless of the index queried.
	indexOpts := []index.Option{index.WithExtractor(tags.New())}
	if s.minVisibleAverage > 0 {
		indexOpts = append(indexOpts, index.WithMinimumVisibleAverage(s.minVisibleAverage))
	}
	s.newIndex = index.New(index.KindNew, indexOpts...)
	s.hotIndex = index.New(index.KindHot, indexOpts...)

	var schedOpts []index.SchedulerOption
	if s.housekeepingPeriod > 0 {
		schedOpts = append(schedOpts, index.WithPeriod(s.housekeepingPeriod))
	}
	s.scheduler = index.NewScheduler(s.store, []*index.Index{s.newIndex, s.hotIndex}, schedOpts...)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.scheduler.Start(runCtx)

	if s.checkpointPath != "" {
		s.writer = persist.NewWriter(s.store, persist.WithWriterLogger(s.logger.Named("checkpoint")))
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.writer.Run(runCtx, s.checkpointPath, s.checkpointPeriod)
		}()
	}

	s.started = true
	s.logger.Info(ctx, "feedback service started",
		logger.Int("entities", s.store.Count(ctx)),
		logger.String("checkpoint", s.checkpointPath),
	)
	return nil
}

// Stop shuts down the scheduler and the checkpoint writer. The writer
// takes one final snapshot on the way out.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping feedback service")

	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.started = false
	s.logger.Info(ctx, "feedback service stopped")
}

// AddSubmission validates and records one account's submission. The
// returned status distinguishes first-time accepts, replacements, and
// per-account cap rejections.
func (s *Service) AddSubmission(ctx context.Context, account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission) (repository.AddStatus, repository.BasicSummary, error) {
	if err := validateSubmission(account, key, profile, sub); err != nil {
		metrics.RecordSubmissionRejected()
		return 0, repository.BasicSummary{}, err
	}
	if !s.websites.Enabled(key.Website) {
		metrics.RecordSubmissionRejected()
		return 0, repository.BasicSummary{}, ErrWebsiteDisabled
	}

	status, summary := s.store.Add(ctx, account, key, profile, sub, time.Now())
	// Submission counters are recorded at this layer only; the store
	// maintains its own gauges.
	switch status {
	case repository.AddAccepted:
		metrics.RecordSubmissionAccepted()
	case repository.AddReplaced:
		metrics.RecordSubmissionReplaced()
	case repository.AddRejectedTooMany:
		metrics.RecordSubmissionRejected()
	}
	metrics.UpdateStoreEntities(s.store.Count(ctx))
	return status, summary, nil
}

// RemoveSubmission removes one account's submission and returns the
// post-removal summary. Removing a submission that does not exist
// surfaces repository.ErrNoSubmission.
func (s *Service) RemoveSubmission(ctx context.Context, account model.Account, key model.EntityKey) (repository.BasicSummary, error) {
	summary, err := s.store.Remove(ctx, account, key)
	if err != nil {
		return repository.BasicSummary{}, err
	}
	metrics.RecordSubmissionRemoved()
	metrics.UpdateStoreEntities(s.store.Count(ctx))
	return summary, nil
}

// RestoreSubmission replays one persisted record, bypassing the
// per-account cap.
func (s *Service) RestoreSubmission(ctx context.Context, account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission, at time.Time) error {
	return s.store.Restore(ctx, account, key, profile, sub, at)
}

// GetBasicSummary returns the overall summary for one entity. Unknown
// entities yield an empty summary, never an error.
func (s *Service) GetBasicSummary(ctx context.Context, key model.EntityKey, showBelowThreshold bool) repository.BasicSummary {
	start := time.Now()
	defer func() {
		metrics.RecordSummaryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()
	return s.store.BasicSummary(ctx, key, showBelowThreshold)
}

// GetDetailedSummary returns the overall histogram and per-criterion
// breakdown for one entity.
func (s *Service) GetDetailedSummary(ctx context.Context, key model.EntityKey, showBelowThreshold bool) repository.DetailedSummary {
	start := time.Now()
	defer func() {
		metrics.RecordSummaryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()
	return s.store.DetailedSummary(ctx, key, showBelowThreshold)
}

// GetFeaturedSample returns one ranked page from the requested index.
// Disabled websites are dropped from the filter before the merge.
func (s *Service) GetFeaturedSample(ctx context.Context, kind index.Kind, f index.Filter, size int) (index.Page, error) {
	start := time.Now()
	defer func() {
		metrics.RecordFeaturedQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var x *index.Index
	switch kind {
	case index.KindNew:
		x = s.newIndex
	case index.KindHot:
		x = s.hotIndex
	default:
		return index.Page{}, fmt.Errorf("%w: %q", index.ErrUnknownKind, kind)
	}

	if size <= 0 {
		size = s.featuredPageSize
	}
	f.Websites = s.websites.filterEnabled(f.Websites)
	return x.FeaturedSample(ctx, f, size), nil
}

// RunHousekeeping forces a full index rebuild cycle outside the
// schedule.
func (s *Service) RunHousekeeping(ctx context.Context) {
	s.scheduler.RunNow(ctx)
}

// SetWebsiteEnabled flips one website's availability and returns the
// previous state.
func (s *Service) SetWebsiteEnabled(ctx context.Context, website string, enabled bool) bool {
	previous := s.websites.SetEnabled(website, enabled)
	s.logger.Info(ctx, "website state changed",
		logger.String("website", website),
		logger.Bool("enabled", enabled),
		logger.Bool("previous", previous),
	)
	return previous
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"featuredPageSize": s.featuredPageSize,
	}

	if s.started {
		entities := s.store.Count(ctx)
		stats["entities"] = entities
		metrics.UpdateStoreEntities(entities)
	}
	return stats
}

// validateSubmission enforces the rating scales and the identity and
// profile encoding constraints.
func validateSubmission(account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission) error {
	if account == "" || key.Website == "" || key.Item == "" {
		return fmt.Errorf("%w: missing identity", ErrInvalidSubmission)
	}
	if sub.Overall < 0 || sub.Overall > overallScaleMax || sub.Overall%overallScaleStep != 0 {
		return fmt.Errorf("%w: overall rating %d", ErrInvalidSubmission, sub.Overall)
	}
	if strings.Contains(profile.DisplayName, unitSeparator) {
		return fmt.Errorf("%w: display name", ErrInvalidSubmission)
	}
	for _, t := range profile.Tags {
		if strings.Contains(t, unitSeparator) {
			return fmt.Errorf("%w: tag %q", ErrInvalidSubmission, t)
		}
	}

	for c, v := range sub.Ratings {
		spec, ok := model.SpecOf(c)
		if !ok {
			return fmt.Errorf("%w: unknown criterion %d", ErrInvalidSubmission, c)
		}
		if spec.Type != key.Criteria {
			return fmt.Errorf("%w: criterion %s outside family %s", ErrInvalidSubmission, spec.Name, key.Criteria)
		}
		if v < spec.ScaleMin || v > spec.ScaleMax {
			return fmt.Errorf("%w: %s rating %d", ErrInvalidSubmission, spec.Name, v)
		}
	}
	return nil
}
