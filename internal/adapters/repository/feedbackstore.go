package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/plaudit/internal/domain/model"
	"github.com/okian/plaudit/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultMaxPerAccount     = 500
	defaultMinVisibleAverage = 30

	// accountStripes fixes the size of the account lock table. The same
	// account always hashes to the same stripe, which is all the exclusion
	// guarantee requires.
	accountStripes = 256
)

// FeedbackStore implements Store with a concurrent map of entity keys to
// aggregate nodes.
//
// Locking discipline, in acquisition order: account stripe lock, then node
// lock. The map mutex is only ever held for map lookups and unlinking,
// never across node mutation. The order is never inverted.
type FeedbackStore struct {
	mu    sync.RWMutex
	nodes map[model.EntityKey]*aggregate

	accountLocks [accountStripes]sync.Mutex

	countsMu      sync.Mutex
	accountCounts map[model.Account]int

	maxPerAccount     int
	minVisibleAverage int
}

// NewFeedbackStore constructs a feedback store with configuration options.
func NewFeedbackStore(opts ...Option) *FeedbackStore {
	s := &FeedbackStore{
		nodes:             make(map[model.EntityKey]*aggregate),
		accountCounts:     make(map[model.Account]int),
		maxPerAccount:     defaultMaxPerAccount,
		minVisibleAverage: defaultMinVisibleAverage,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *FeedbackStore) accountLock(account model.Account) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(account))
	return &s.accountLocks[h.Sum32()%accountStripes]
}

// lockLiveNode returns the node for key with its lock held, creating it if
// absent. If a racing remover emptied and unlinked the node between
// publication and lock acquisition, the stale node is discarded and the
// insert-if-absent step restarts. The loop terminates because deletion
// requires the same node lock the retry re-checks.
func (s *FeedbackStore) lockLiveNode(key model.EntityKey, at time.Time) *aggregate {
	for {
		s.mu.RLock()
		n := s.nodes[key]
		s.mu.RUnlock()

		if n == nil {
			candidate := newAggregate(key, at)
			s.mu.Lock()
			if existing, ok := s.nodes[key]; ok {
				n = existing
			} else {
				s.nodes[key] = candidate
				n = candidate
			}
			s.mu.Unlock()
		}

		n.mu.Lock()
		if !n.deleted {
			return n
		}
		n.mu.Unlock()
		metrics.RecordStoreInsertRetry()
	}
}

// unlink removes an emptied node from the map. Caller holds the node lock
// and has already set deleted, so no reader can revive it.
func (s *FeedbackStore) unlink(key model.EntityKey) {
	s.mu.Lock()
	delete(s.nodes, key)
	s.mu.Unlock()
}

// Add implements Store.Add. The account stripe is held for the whole
// operation so two concurrent requests from the same account cannot
// interleave between the mutation and the summary read-back.
func (s *FeedbackStore) Add(ctx context.Context, account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission, at time.Time) (AddStatus, BasicSummary) {
	lock := s.accountLock(account)
	lock.Lock()
	defer lock.Unlock()

	n := s.lockLiveNode(key, at)
	defer n.mu.Unlock()

	_, replacing := n.submissions[account]
	if !replacing && !s.reserveSlot(account) {
		if len(n.submissions) == 0 {
			// The candidate node never got a submission; do not leave an
			// empty live node behind.
			n.deleted = true
			s.unlink(key)
			metrics.UpdateStoreEntities(s.size())
			return AddRejectedTooMany, BasicSummary{}
		}
		return AddRejectedTooMany, n.basicSummary(s.minVisibleAverage, false)
	}

	wasEmpty := len(n.submissions) == 0
	n.apply(account, SubmissionRecord{Profile: profile, Submission: sub, Time: at})
	if wasEmpty {
		metrics.UpdateStoreEntities(s.size())
	}

	status := AddAccepted
	if replacing {
		status = AddReplaced
	}
	return status, n.basicSummary(s.minVisibleAverage, false)
}

// Remove implements Store.Remove. Setting deleted and unlinking the node
// happen under the same node lock acquisition as the mutation, so no
// reader can observe an empty-but-live node.
func (s *FeedbackStore) Remove(ctx context.Context, account model.Account, key model.EntityKey) (BasicSummary, error) {
	lock := s.accountLock(account)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	n := s.nodes[key]
	s.mu.RUnlock()
	if n == nil {
		return BasicSummary{}, ErrNoSubmission
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deleted {
		return BasicSummary{}, ErrNoSubmission
	}
	if err := n.drop(account); err != nil {
		return BasicSummary{}, err
	}
	s.releaseSlot(account)

	if len(n.submissions) == 0 {
		n.deleted = true
		s.unlink(key)
		metrics.UpdateStoreEntities(s.size())
		return BasicSummary{}, nil
	}
	return n.basicSummary(s.minVisibleAverage, false), nil
}

// Restore implements Store.Restore. Replay order is unspecified; the
// creation time converges on the earliest submission time because apply
// reconciles it downward.
func (s *FeedbackStore) Restore(ctx context.Context, account model.Account, key model.EntityKey, profile model.Profile, sub model.Submission, at time.Time) error {
	lock := s.accountLock(account)
	lock.Lock()
	defer lock.Unlock()

	n := s.lockLiveNode(key, at)
	defer n.mu.Unlock()

	wasEmpty := len(n.submissions) == 0
	replaced := n.apply(account, SubmissionRecord{Profile: profile, Submission: sub, Time: at})
	if !replaced {
		s.countsMu.Lock()
		s.accountCounts[account]++
		s.countsMu.Unlock()
	}
	if wasEmpty {
		metrics.UpdateStoreEntities(s.size())
	}
	return nil
}

// BasicSummary implements Store.BasicSummary.
func (s *FeedbackStore) BasicSummary(ctx context.Context, key model.EntityKey, showBelowThreshold bool) BasicSummary {
	s.mu.RLock()
	n := s.nodes[key]
	s.mu.RUnlock()
	if n == nil {
		return BasicSummary{}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deleted {
		return BasicSummary{}
	}
	return n.basicSummary(s.minVisibleAverage, showBelowThreshold)
}

// DetailedSummary implements Store.DetailedSummary.
func (s *FeedbackStore) DetailedSummary(ctx context.Context, key model.EntityKey, showBelowThreshold bool) DetailedSummary {
	s.mu.RLock()
	n := s.nodes[key]
	s.mu.RUnlock()
	if n == nil {
		return DetailedSummary{}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deleted {
		return DetailedSummary{}
	}
	return n.detailedSummary(s.minVisibleAverage, showBelowThreshold)
}

// ForEach implements Store.ForEach. Nodes are locked one at a time;
// entities emptied between the map snapshot and lock acquisition are
// skipped, which is acceptable staleness for a periodic rebuild.
func (s *FeedbackStore) ForEach(ctx context.Context, criteria model.CriteriaType, fn func(FeaturedStats)) {
	s.mu.RLock()
	nodes := make([]*aggregate, 0, len(s.nodes))
	for key, n := range s.nodes {
		if key.Criteria == criteria {
			nodes = append(nodes, n)
		}
	}
	s.mu.RUnlock()

	for _, n := range nodes {
		if ctx.Err() != nil {
			return
		}
		n.mu.Lock()
		stats, ok := n.featuredStats()
		n.mu.Unlock()
		if ok {
			fn(stats)
		}
	}
}

// ForEachRecord implements Store.ForEachRecord. Records are copied out
// under the node lock and handed to fn afterwards, so fn may block on I/O.
func (s *FeedbackStore) ForEachRecord(ctx context.Context, fn func(model.Account, model.EntityKey, SubmissionRecord)) {
	s.mu.RLock()
	nodes := make([]*aggregate, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	s.mu.RUnlock()

	for _, n := range nodes {
		if ctx.Err() != nil {
			return
		}
		n.mu.Lock()
		if n.deleted {
			n.mu.Unlock()
			continue
		}
		key := n.key
		records := make(map[model.Account]SubmissionRecord, len(n.submissions))
		for account, rec := range n.submissions {
			records[account] = rec
		}
		n.mu.Unlock()

		for account, rec := range records {
			fn(account, key, rec)
		}
	}
}

// Count implements Store.Count.
func (s *FeedbackStore) Count(ctx context.Context) int {
	return s.size()
}

func (s *FeedbackStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// reserveSlot claims one submission slot for the account, enforcing the
// per-account cap. Returns false when the cap is reached.
func (s *FeedbackStore) reserveSlot(account model.Account) bool {
	s.countsMu.Lock()
	defer s.countsMu.Unlock()
	if s.accountCounts[account] >= s.maxPerAccount {
		return false
	}
	s.accountCounts[account]++
	return true
}

func (s *FeedbackStore) releaseSlot(account model.Account) {
	s.countsMu.Lock()
	defer s.countsMu.Unlock()
	if s.accountCounts[account] > 1 {
		s.accountCounts[account]--
	} else {
		delete(s.accountCounts, account)
	}
}
