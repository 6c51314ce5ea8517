package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	sessionsBucket = []byte("sessions")
	metaBucket     = []byte("metadata")
)

// ErrSessionNotFound is returned when a session has ended or never started.
var ErrSessionNotFound = errors.New("session not found")

// Store is a session-scoped key/value store. Every session owns one nested
// bucket; ending the session drops it with everything it holds.
type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{sessionsBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession creates a session with a fresh id.
func (s *Store) StartSession() (*Session, error) {
	return s.EnsureSession(uuid.New().String())
}

// EnsureSession returns the session with the given id, creating it if needed.
func (s *Store) EnsureSession(id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	var session Session
	err := s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.Bucket(sessionsBucket).CreateBucketIfNotExists([]byte(id)); err != nil {
			return err
		}

		meta := tx.Bucket(metaBucket)
		if data := meta.Get([]byte(id)); data != nil {
			return json.Unmarshal(data, &session)
		}

		session = Session{ID: id, StartedAt: time.Now()}
		data, err := json.Marshal(session)
		if err != nil {
			return err
		}
		return meta.Put([]byte(id), data)
	})
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	return &session, nil
}

// EndSession discards everything stored for the session.
func (s *Store) EndSession(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b.Bucket([]byte(id)) == nil {
			return ErrSessionNotFound
		}
		if err := b.DeleteBucket([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Delete([]byte(id))
	})
}

// Sessions lists live sessions, oldest first.
func (s *Store) Sessions() ([]*Session, error) {
	var sessions []*Session
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).ForEach(func(_ []byte, v []byte) error {
			var session Session
			if err := json.Unmarshal(v, &session); err != nil {
				return nil
			}
			sessions = append(sessions, &session)
			return nil
		})
	})
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions, err
}

// Get returns the value for key in the session, or nil if it was never set.
func (s *Store) Get(sessionID, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket).Bucket([]byte(sessionID))
		if b == nil {
			return ErrSessionNotFound
		}
		if data := b.Get([]byte(key)); data != nil {
			value = append([]byte(nil), data...)
		}
		return nil
	})
	return value, err
}

// Put stores value under key in the session.
func (s *Store) Put(sessionID, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket).Bucket([]byte(sessionID))
		if b == nil {
			return ErrSessionNotFound
		}
		return b.Put([]byte(key), value)
	})
}
