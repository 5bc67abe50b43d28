package persist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/pkg/logger"
	"github.com/okian/plaudit/pkg/metrics"
)

// Default loader configuration constants.
const (
	defaultWorkerCount = 4
	maxRecordBytes     = 1 << 20
)

// Loader replays a checkpoint file into the store through a pool of
// restore workers. Corrupt lines are counted and skipped; the rest of
// the checkpoint still loads.
type Loader struct {
	store         repository.Store
	workerCount   int
	queueCapacity int
	logger        logger.Logger
}

// NewLoader creates a checkpoint loader over the given store.
func NewLoader(store repository.Store, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:         store,
		workerCount:   defaultWorkerCount,
		queueCapacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.workerCount < 1 {
		l.workerCount = runtime.NumCPU()
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("restore")
	}
	return l
}

// Restore reads the checkpoint at path and replays every record. A
// missing file is not an error; the service simply starts empty. The
// returned count is the number of records handed to the store.
func (l *Loader) Restore(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Info(ctx, "no checkpoint to restore", logger.String("path", path))
			return 0, nil
		}
		return 0, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	queue := newRecordQueue(l.queueCapacity)
	var restored int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < l.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range queue.dequeue() {
				if err := l.store.Restore(ctx, it.account, it.key, it.profile, it.sub, it.at); err != nil {
					metrics.RecordRestoreError()
					metrics.RecordErrorByComponent("persist", "restore_failed")
					l.logger.Error(ctx, "record restore failed",
						logger.String("website", it.key.Website),
						logger.String("item", it.key.Item),
						logger.Error(err),
					)
					continue
				}
				metrics.RecordRestoreRecord()
				mu.Lock()
				restored++
				mu.Unlock()
			}
		}()
	}

	scanErr := l.feed(ctx, f, queue)
	queue.close()
	wg.Wait()

	l.logger.Info(ctx, "checkpoint restored",
		logger.String("path", path),
		logger.Int("records", restored),
	)
	return restored, scanErr
}

// feed scans the checkpoint line by line and enqueues decoded records.
func (l *Loader) feed(ctx context.Context, f *os.File, queue *recordQueue) error {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		account, key, profile, sub, at, err := DecodeRecord(line)
		if err != nil {
			metrics.RecordRestoreError()
			metrics.RecordErrorByComponent("persist", "corrupt_record")
			l.logger.Warn(ctx, "skipping corrupt checkpoint line",
				logger.Int("line", lineNo),
				logger.Error(err),
			)
			continue
		}

		if err := queue.enqueue(ctx, restoreItem{
			account: account,
			key:     key,
			profile: profile,
			sub:     sub,
			at:      at,
		}); err != nil {
			return fmt.Errorf("enqueue checkpoint record: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan checkpoint: %w", err)
	}
	return nil
}
