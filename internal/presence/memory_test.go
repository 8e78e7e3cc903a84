package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoval-dev/peercall/internal/domain"
)

func recvSnap(t *testing.T, ch <-chan domain.Snapshot) domain.Snapshot {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "snapshot channel closed unexpectedly")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestMemoryStore_WatchDeliversInitialSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, domain.PresenceRecord{UserID: "alice", UserName: "Alice"}))

	ch, err := store.Watch(ctx)
	require.NoError(t, err)

	snap := recvSnap(t, ch)
	assert.Len(t, snap, 1)
	assert.Equal(t, "Alice", snap["alice"].UserName)
}

func TestMemoryStore_PutThenRemove(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore()
	ch, err := store.Watch(ctx)
	require.NoError(t, err)

	assert.Empty(t, recvSnap(t, ch))

	require.NoError(t, store.Put(ctx, domain.PresenceRecord{UserID: "bob", UserName: "Bob"}))
	snap := recvSnap(t, ch)
	assert.Contains(t, snap, "bob")

	require.NoError(t, store.Remove(ctx, "bob"))
	snap = recvSnap(t, ch)
	assert.NotContains(t, snap, "bob")
}

func TestMemoryStore_RemoveAbsentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Remove(ctx, "ghost"))
	require.NoError(t, store.Remove(ctx, "ghost"))
}

func TestMemoryStore_LaggingWatcherGetsLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore()
	ch, err := store.Watch(ctx)
	require.NoError(t, err)

	// do not read; buffer fills and older snapshots are replaced
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Put(ctx, domain.PresenceRecord{UserID: "u", UserName: "User", LastSeen: time.Unix(int64(i), 0)}))
	}
	require.NoError(t, store.Remove(ctx, "u"))

	snap := recvSnap(t, ch)
	assert.NotContains(t, snap, "u", "latest snapshot must win over dropped intermediates")
}

func TestMemoryStore_WatchClosedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	store := NewMemoryStore()
	ch, err := store.Watch(ctx)
	require.NoError(t, err)
	recvSnap(t, ch)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel must be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
