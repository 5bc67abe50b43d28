package persist

import (
	"context"
	"sync"
	"time"

	"github.com/okian/plaudit/internal/domain/model"
	"github.com/okian/plaudit/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
)

// restoreItem is one decoded record in flight between the checkpoint
// reader and the restore workers.
type restoreItem struct {
	account model.Account
	key     model.EntityKey
	profile model.Profile
	sub     model.Submission
	at      time.Time
}

// recordQueue is a bounded in-memory queue between the checkpoint reader
// and the restore workers.
type recordQueue struct {
	items chan restoreItem

	mu     sync.RWMutex
	closed bool
}

func newRecordQueue(capacity int) *recordQueue {
	if capacity < 1 {
		capacity = defaultQueueCapacity
	}
	return &recordQueue{
		items: make(chan restoreItem, capacity),
	}
}

// enqueue blocks until the item is queued or ctx ends. A full queue
// applies backpressure to the reader rather than dropping records.
func (q *recordQueue) enqueue(ctx context.Context, it restoreItem) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("persist", "queue_closed")
		return ErrQueueClosed
	}

	select {
	case q.items <- it:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dequeue returns the channel workers range over. The channel closes
// when the queue closes and drains.
func (q *recordQueue) dequeue() <-chan restoreItem {
	return q.items
}

// close stops further enqueues. Queued items remain consumable.
func (q *recordQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	close(q.items)
	q.closed = true
}
