package board

import (
	"errors"
	"fmt"

	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/dismissal"
	"github.com/pders01/noticeboard/internal/storage"
)

// Session decides where this run keeps its dismissals.
type Session struct {
	ID string
	// Owned sessions were started by this run and end with it.
	Owned   bool
	store   *storage.Store
	Backend dismissal.Backend
}

// JoinSession attaches to the session id, creating it if needed. Without a
// store or an id the dismissals only live as long as the process.
func JoinSession(store *storage.Store, id string) (*Session, error) {
	if store == nil || id == "" {
		return &Session{Backend: &dismissal.MemoryBackend{}}, nil
	}
	s, err := store.EnsureSession(id)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:      s.ID,
		store:   store,
		Backend: dismissal.NewSessionBackend(store, s.ID),
	}, nil
}

// StartSession begins a session owned by this run.
func StartSession(store *storage.Store) (*Session, error) {
	if store == nil {
		return &Session{Owned: true, Backend: &dismissal.MemoryBackend{}}, nil
	}
	s, err := store.StartSession()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:      s.ID,
		Owned:   true,
		store:   store,
		Backend: dismissal.NewSessionBackend(store, s.ID),
	}, nil
}

// Persistent reports whether dismissals outlive the process.
func (s *Session) Persistent() bool {
	return s.store != nil && s.ID != ""
}

// End discards an owned session's dismissals. Joined sessions are left for
// their owner.
func (s *Session) End() error {
	if !s.Owned || !s.Persistent() {
		return nil
	}
	err := s.store.EndSession(s.ID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		debuglog.Debugf("session %s already ended", s.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	debuglog.Infof("session %s ended", s.ID)
	return nil
}
