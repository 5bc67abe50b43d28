package persist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/internal/domain/model"
	"github.com/okian/plaudit/pkg/logger"
	"github.com/okian/plaudit/pkg/metrics"
)

// Writer checkpoints the full store contents to a file, one record per
// line. Snapshots write to a temp file first and rename over the target,
// so a crash mid-write never truncates the previous checkpoint.
type Writer struct {
	store  repository.Store
	logger logger.Logger
}

// NewWriter creates a checkpoint writer over the given store.
func NewWriter(store repository.Store, opts ...WriterOption) *Writer {
	w := &Writer{store: store}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named("checkpoint")
	}
	return w
}

// Snapshot writes every live submission record to path and returns the
// number of records written. A context cancelled mid-iteration aborts the
// snapshot before the rename, leaving the previous checkpoint in place.
func (w *Writer) Snapshot(ctx context.Context, path string) (int, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	buf := bufio.NewWriter(tmp)
	written := 0
	var encodeErr error

	w.store.ForEachRecord(ctx, func(account model.Account, key model.EntityKey, rec repository.SubmissionRecord) {
		if encodeErr != nil {
			return
		}
		line, err := EncodeRecord(account, key, rec.Profile, rec.Submission, rec.Time)
		if err != nil {
			encodeErr = err
			return
		}
		if _, err := buf.Write(line); err != nil {
			encodeErr = err
			return
		}
		if err := buf.WriteByte('\n'); err != nil {
			encodeErr = err
			return
		}
		written++
	})

	// Cancellation makes ForEachRecord return early; a partial record set
	// must never replace the previous checkpoint.
	if encodeErr == nil {
		encodeErr = ctx.Err()
	}
	if encodeErr == nil {
		encodeErr = buf.Flush()
	}
	if encodeErr == nil {
		encodeErr = tmp.Sync()
	}
	if closeErr := tmp.Close(); encodeErr == nil {
		encodeErr = closeErr
	}
	if encodeErr != nil {
		metrics.RecordErrorByComponent("persist", "snapshot_failed")
		return 0, fmt.Errorf("write checkpoint: %w", encodeErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		metrics.RecordErrorByComponent("persist", "snapshot_failed")
		return 0, fmt.Errorf("publish checkpoint: %w", err)
	}

	w.logger.Info(ctx, "checkpoint written",
		logger.String("path", path),
		logger.Int("records", written),
	)
	return written, nil
}

// Run snapshots on a fixed period until ctx ends, with one final
// snapshot on the way out.
func (w *Writer) Run(ctx context.Context, path string, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := w.Snapshot(shutdownCtx, path); err != nil {
				w.logger.Error(shutdownCtx, "final checkpoint failed", logger.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			if _, err := w.Snapshot(ctx, path); err != nil {
				w.logger.Error(ctx, "periodic checkpoint failed", logger.Error(err))
			}
		}
	}
}
