package dismissal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/noticeboard/internal/notice"
	"github.com/pders01/noticeboard/internal/storage"
)

func TestStore_DismissIsIdempotent(t *testing.T) {
	backend := &MemoryBackend{}
	store := NewStore(backend)

	store.Dismiss(7)
	once := store.IDs()
	store.Dismiss(7)

	assert.Equal(t, once, store.IDs())
	assert.Equal(t, []int64{7}, store.IDs())
	assert.True(t, store.IsDismissed(7))
	assert.False(t, store.IsDismissed(8))
}

func TestStore_ActiveOfNeverReturnsDismissed(t *testing.T) {
	store := NewStore(&MemoryBackend{})
	notices := []notice.RawNotice{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	store.DismissAll(2, 4)

	active := store.ActiveOf(notices)
	require.Len(t, active, 2)
	assert.Equal(t, int64(1), active[0].ID)
	assert.Equal(t, int64(3), active[1].ID)
	for _, n := range active {
		assert.False(t, store.IsDismissed(n.ID))
	}
}

func TestStore_ReloadSeesDismissal(t *testing.T) {
	backend := &MemoryBackend{}
	first := NewStore(backend)
	first.Dismiss(42)

	// A page reload creates a new store over the same session backend.
	second := NewStore(backend)
	assert.True(t, second.IsDismissed(42))
}

func TestStore_QueriesPickUpOtherWriters(t *testing.T) {
	backend := &MemoryBackend{}
	a := NewStore(backend)
	b := NewStore(backend)

	a.Dismiss(1)
	assert.True(t, b.IsDismissed(1))
}

func TestStore_SaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	backend := &MemoryBackend{Fail: true}
	store := NewStore(backend)

	store.Dismiss(9)

	assert.True(t, store.IsDismissed(9))
	persisted, err := backend.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestStore_NilBackend(t *testing.T) {
	store := NewStore(nil)
	store.Dismiss(3)
	assert.True(t, store.IsDismissed(3))
	assert.True(t, store.Snapshot().Has(3))
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore(&MemoryBackend{})
	store.Dismiss(1)

	snap := store.Snapshot()
	store.Dismiss(2)

	assert.True(t, snap.Has(1))
	assert.False(t, snap.Has(2))
}

func TestSessionBackend_RoundTrip(t *testing.T) {
	kv, err := storage.NewStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer kv.Close()

	session, err := kv.StartSession()
	require.NoError(t, err)

	backend := NewSessionBackend(kv, session.ID)
	store := NewStore(backend)
	for _, id := range []int64{30, 10, 20} {
		store.Dismiss(id)
	}

	ids, err := backend.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{10, 20, 30}, ids)

	raw, err := kv.Get(session.ID, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, "[10,20,30]", string(raw))

	reloaded := NewStore(NewSessionBackend(kv, session.ID))
	assert.ElementsMatch(t, []int64{10, 20, 30}, reloaded.IDs())
}

func TestSessionBackend_EndedSession(t *testing.T) {
	kv, err := storage.NewStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer kv.Close()

	session, err := kv.StartSession()
	require.NoError(t, err)

	store := NewStore(NewSessionBackend(kv, session.ID))
	store.Dismiss(5)
	require.NoError(t, kv.EndSession(session.ID))

	// Writes after the session ended fail silently; memory still wins.
	store.Dismiss(6)
	assert.True(t, store.IsDismissed(5))
	assert.True(t, store.IsDismissed(6))

	_, err = NewSessionBackend(kv, session.ID).Load()
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestDecodeIDs(t *testing.T) {
	ids, err := decodeIDs(nil)
	assert.NoError(t, err)
	assert.Nil(t, ids)

	_, err = decodeIDs([]byte("not json"))
	assert.Error(t, err)

	data, err := encodeIDs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
