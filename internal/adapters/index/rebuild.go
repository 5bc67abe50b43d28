package index

import (
	"context"
	"sync"
	"time"

	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/internal/domain/model"
	"github.com/okian/plaudit/pkg/logger"
	"github.com/okian/plaudit/pkg/metrics"
)

// Default scheduler configuration constants.
const (
	defaultRebuildPeriod = 5 * time.Minute
)

// Scheduler periodically rebuilds the featured indexes from the store.
// One cycle visits every (criteria type, index kind) pair; a failing pair
// is logged and never cancels the schedule or the remaining pairs.
type Scheduler struct {
	period  time.Duration
	store   repository.Store
	indexes []*Index
	logger  logger.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a housekeeping scheduler over the given indexes.
func NewScheduler(store repository.Store, indexes []*Index, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		period:   defaultRebuildPeriod,
		store:    store,
		indexes:  indexes,
		stopChan: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("housekeeping")
	}
	return s
}

// Start runs one immediate cycle, then schedules the periodic rebuilds.
func (s *Scheduler) Start(ctx context.Context) {
	s.runCycle(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.runCycle(ctx)
			}
		}
	}()
}

// Stop shuts down cooperatively: no further cycles are scheduled, the
// current cycle finishes, and Stop returns once the loop has exited.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

// RunNow forces a full cycle outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.runCycle(ctx)
}

func (s *Scheduler) runCycle(ctx context.Context) {
	for _, x := range s.indexes {
		total := 0
		start := time.Now()
		for _, ct := range model.CriteriaTypes() {
			total += s.rebuildPair(ctx, x, ct)
		}

		ms := float64(time.Since(start).Milliseconds())
		kind := string(x.Kind())
		metrics.RecordIndexRebuildDuration(kind, ms)
		metrics.UpdateIndexRebuildLastUnix(kind, float64(time.Now().Unix()))
		metrics.IncrementIndexRebuildCount(kind)
		metrics.UpdateIndexEntries(kind, total)
	}
}

// rebuildPair rebuilds one (criteria type, index kind) pair, containing
// any panic so the remaining pairs and future cycles still run.
func (s *Scheduler) rebuildPair(ctx context.Context, x *Index, ct model.CriteriaType) (count int) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordIndexRebuildFailure(string(x.Kind()))
			metrics.RecordErrorByComponent("housekeeping", "rebuild_panic")
			s.logger.Error(ctx, "index rebuild failed",
				logger.String("kind", string(x.Kind())),
				logger.String("criteria", ct.String()),
				logger.Any("panic", r),
			)
			count = 0
		}
	}()
	return x.RebuildCriteria(ctx, ct, s.store)
}
