package fetch

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/notice"
)

// Tracker owns the fetched notice list together with its loading and error
// state. A new Refresh cancels the one in flight; only the latest refresh
// may apply its result, and nothing is applied after Close.
type Tracker struct {
	source Source
	now    func() time.Time

	mu        sync.Mutex
	notices   []notice.RawNotice
	loading   bool
	lastErr   error
	fetchedAt time.Time
	gen       uint64
	cancel    context.CancelFunc
	closed    bool
}

func NewTracker(source Source) *Tracker {
	return &Tracker{source: source, now: time.Now}
}

// Refresh fetches a new list and replaces the current one on success. On
// failure the previous list is kept and LastError reports the cause. It
// never retries.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.cancel != nil {
		t.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	t.gen++
	gen := t.gen
	t.cancel = cancel
	t.loading = true
	t.lastErr = nil
	t.mu.Unlock()

	log := debuglog.WithFields(debuglog.Fields{"source": t.source.Name(), "gen": gen})
	log.Debugf("refresh started")

	notices, err := t.source.Fetch(fetchCtx)
	cancel()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || gen != t.gen {
		log.Debugf("refresh result dropped")
		return ErrSuperseded
	}

	t.cancel = nil
	t.loading = false

	if ctx.Err() != nil {
		log.Debugf("refresh abandoned: %v", ctx.Err())
		return ctx.Err()
	}

	if err != nil {
		t.lastErr = err
		log.Warnf("refresh failed: %v", err)
		return err
	}

	t.notices = notices
	t.fetchedAt = t.now()
	log.Infof("refresh fetched %d notices", len(notices))
	return nil
}

// Notices returns the most recently fetched list.
func (t *Tracker) Notices() []notice.RawNotice {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.notices)
}

// Loading is true only while a refresh is in flight.
func (t *Tracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// LastError is the error of the latest completed refresh, cleared when the
// next refresh starts.
func (t *Tracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

func (t *Tracker) FetchedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fetchedAt
}

// Close cancels any refresh in flight and stops future results from being
// applied.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.loading = false
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
