package dismissal

import (
	"encoding/json"
	"fmt"
	"sync"
)

// StorageKey is the session key holding the JSON list of dismissed ids.
const StorageKey = "dismissed_notices"

// SessionKV is the subset of a session-scoped key/value store the
// dismissal backend needs.
type SessionKV interface {
	Get(sessionID, key string) ([]byte, error)
	Put(sessionID, key string, value []byte) error
}

// SessionBackend stores the ids as a JSON array under StorageKey.
type SessionBackend struct {
	kv        SessionKV
	sessionID string
}

func NewSessionBackend(kv SessionKV, sessionID string) *SessionBackend {
	return &SessionBackend{kv: kv, sessionID: sessionID}
}

func (b *SessionBackend) Load() ([]int64, error) {
	data, err := b.kv.Get(b.sessionID, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("reading dismissals: %w", err)
	}
	return decodeIDs(data)
}

func (b *SessionBackend) Save(ids []int64) error {
	data, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	if err := b.kv.Put(b.sessionID, StorageKey, data); err != nil {
		return fmt.Errorf("writing dismissals: %w", err)
	}
	return nil
}

// MemoryBackend keeps the encoded list in memory. Useful for tests and for
// runs that should forget everything on exit.
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
	// Fail makes every Save return an error.
	Fail bool
}

func (b *MemoryBackend) Load() ([]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return decodeIDs(b.data)
}

func (b *MemoryBackend) Save(ids []int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail {
		return fmt.Errorf("storage unavailable")
	}
	data, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	b.data = data
	return nil
}

func encodeIDs(ids []int64) ([]byte, error) {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding dismissals: %w", err)
	}
	return data, nil
}

func decodeIDs(data []byte) ([]int64, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decoding dismissals: %w", err)
	}
	return ids, nil
}
