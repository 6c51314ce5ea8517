// Package board ties the fetched notice list, the session's dismissals and
// the selection policy together for the CLI and the TUI.
package board

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/dismissal"
	"github.com/pders01/noticeboard/internal/fetch"
	"github.com/pders01/noticeboard/internal/notice"
	"github.com/pders01/noticeboard/internal/search"
)

// Index is the search side of the board. A nil Index disables search.
type Index interface {
	search.Searcher
	search.Indexer
}

type Manager struct {
	tracker    *fetch.Tracker
	dismissals *dismissal.Store
	index      Index
	policy     notice.Policy
	now        func() time.Time
}

func NewManager(tracker *fetch.Tracker, dismissals *dismissal.Store, index Index, policy notice.Policy) *Manager {
	return &Manager{
		tracker:    tracker,
		dismissals: dismissals,
		index:      index,
		policy:     policy,
		now:        time.Now,
	}
}

// Refresh fetches the notice list and reindexes it on success.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := m.tracker.Refresh(ctx); err != nil {
		return err
	}
	if m.index != nil {
		if err := m.index.Rebuild(m.tracker.Notices()); err != nil {
			debuglog.Warnf("rebuilding search index failed: %v", err)
		}
	}
	return nil
}

// Selection evaluates what to show right now. It is cheap to call and
// is called again whenever time passes, the list changes or something is
// dismissed.
func (m *Manager) Selection() notice.Selection {
	return m.SelectionAt(m.now())
}

func (m *Manager) SelectionAt(now time.Time) notice.Selection {
	return notice.Select(m.tracker.Notices(), m.dismissals.Snapshot(), now, m.policy)
}

// Dismiss hides every notice of unit for the rest of the session.
func (m *Manager) Dismiss(unit *notice.Unit) {
	if unit == nil || len(unit.NoticeIDs) == 0 {
		return
	}
	m.dismissals.DismissAll(unit.NoticeIDs...)
}

// DismissRef dismisses the notice named by ref, see Find.
func (m *Manager) DismissRef(ref string) (notice.RawNotice, error) {
	n, ok := m.Find(ref)
	if !ok {
		return notice.RawNotice{}, fmt.Errorf("no notice %q", ref)
	}
	m.dismissals.Dismiss(n.ID)
	return n, nil
}

// IsDismissed reports whether id was dismissed in this session.
func (m *Manager) IsDismissed(id int64) bool {
	return m.dismissals.IsDismissed(id)
}

// Notices returns the full fetched list, dismissed notices included.
func (m *Manager) Notices() []notice.RawNotice {
	return m.tracker.Notices()
}

// Find looks a notice up by id, or by issue number when ref starts with '#'.
func (m *Manager) Find(ref string) (notice.RawNotice, bool) {
	ref = strings.TrimSpace(ref)
	byNumber := strings.HasPrefix(ref, "#")
	value, err := strconv.ParseInt(strings.TrimPrefix(ref, "#"), 10, 64)
	if err != nil {
		return notice.RawNotice{}, false
	}
	for _, n := range m.tracker.Notices() {
		if byNumber && int64(n.Number) == value {
			return n, true
		}
		if !byNumber && n.ID == value {
			return n, true
		}
	}
	return notice.RawNotice{}, false
}

func (m *Manager) Search(query string, limit int) ([]*search.Result, error) {
	if m.index == nil {
		return []*search.Result{}, nil
	}
	return m.index.Search(query, limit)
}

func (m *Manager) Loading() bool        { return m.tracker.Loading() }
func (m *Manager) LastError() error     { return m.tracker.LastError() }
func (m *Manager) FetchedAt() time.Time { return m.tracker.FetchedAt() }

// Close revokes any refresh in flight.
func (m *Manager) Close() {
	m.tracker.Close()
}
