// Package dismissal tracks which notices the user hid during the current
// session.
package dismissal

import (
	"sort"
	"sync"

	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/notice"
)

// Backend persists the dismissed ids for one session.
type Backend interface {
	Load() ([]int64, error)
	Save(ids []int64) error
}

// Store is the session's dismissal set. The in-memory set is authoritative;
// backend failures are logged and otherwise ignored.
type Store struct {
	backend Backend
	mu      sync.RWMutex
	ids     map[int64]struct{}
}

// NewStore loads any ids already persisted for the session.
func NewStore(backend Backend) *Store {
	s := &Store{
		backend: backend,
		ids:     make(map[int64]struct{}),
	}
	s.sync()
	return s
}

// Dismiss adds id to the set and persists the whole set.
func (s *Store) Dismiss(id int64) {
	s.DismissAll(id)
}

// DismissAll dismisses several ids with a single write, as used for grouped
// status notices.
func (s *Store) DismissAll(ids ...int64) {
	s.mu.Lock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	snapshot := s.sortedLocked()
	s.mu.Unlock()

	if s.backend == nil {
		return
	}
	if err := s.backend.Save(snapshot); err != nil {
		debuglog.WithFields(debuglog.Fields{"ids": ids}).Warnf("persisting dismissals failed: %v", err)
	}
}

func (s *Store) IsDismissed(id int64) bool {
	s.sync()
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// ActiveOf returns the notices that have not been dismissed, in input order.
func (s *Store) ActiveOf(notices []notice.RawNotice) []notice.RawNotice {
	return s.Snapshot().ActiveOf(notices)
}

// Snapshot returns a copy of the current set for pure evaluation.
func (s *Store) Snapshot() notice.IDSet {
	s.sync()
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(notice.IDSet, len(s.ids))
	for id := range s.ids {
		set[id] = struct{}{}
	}
	return set
}

// IDs returns the dismissed ids in ascending order.
func (s *Store) IDs() []int64 {
	s.sync()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// sync merges whatever the backend holds into memory. It never removes ids.
func (s *Store) sync() {
	if s.backend == nil {
		return
	}
	ids, err := s.backend.Load()
	if err != nil {
		debuglog.Debugf("loading dismissals failed: %v", err)
		return
	}
	s.mu.Lock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.mu.Unlock()
}

func (s *Store) sortedLocked() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
