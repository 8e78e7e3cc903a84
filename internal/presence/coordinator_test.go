package presence

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoval-dev/peercall/internal/domain"
	"github.com/mkoval-dev/peercall/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func startCoordinator(t *testing.T, store Store, self domain.UserIdentity) (*Coordinator, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	c := NewCoordinator(store, self, testLogger())
	require.NoError(t, c.Start(ctx))
	return c, cancel
}

func subscribeChan(c *Coordinator) (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 16)
	unsub := c.Subscribe(func(s domain.Snapshot) { ch <- s })
	return ch, unsub
}

func TestSubscribe_EmptyCollectionDeliversEmptyMapNotError(t *testing.T) {
	c, _ := startCoordinator(t, NewMemoryStore(), domain.UserIdentity{UserID: "alice", UserName: "Alice"})

	ch, unsub := subscribeChan(c)
	defer unsub()

	snap := recvSnap(t, ch)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestGoOnlineThenOffline_ViewFollows(t *testing.T) {
	store := NewMemoryStore()
	c, _ := startCoordinator(t, store, domain.UserIdentity{UserID: "alice", UserName: "Alice"})

	ch, unsub := subscribeChan(c)
	defer unsub()
	recvSnap(t, ch) // initial

	ctx := context.Background()
	require.NoError(t, c.GoOnline(ctx))

	snap := recvSnap(t, ch)
	require.Contains(t, snap, "alice")
	assert.Equal(t, "Alice", snap["alice"].UserName)
	assert.False(t, snap["alice"].LastSeen.IsZero())

	require.NoError(t, c.GoOffline(ctx))
	snap = recvSnap(t, ch)
	assert.NotContains(t, snap, "alice", "a snapshot taken after GoOffline must not contain the user")
}

func TestGoOffline_Idempotent(t *testing.T) {
	c, _ := startCoordinator(t, NewMemoryStore(), domain.UserIdentity{UserID: "alice", UserName: "Alice"})

	ctx := context.Background()
	require.NoError(t, c.GoOffline(ctx))
	require.NoError(t, c.GoOffline(ctx))
}

func TestSnapshotRedelivery_IsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	c, _ := startCoordinator(t, store, domain.UserIdentity{UserID: "alice", UserName: "Alice"})

	ch, unsub := subscribeChan(c)
	defer unsub()
	recvSnap(t, ch)

	ctx := context.Background()
	rec := domain.PresenceRecord{UserID: "bob", UserName: "Bob", LastSeen: time.Unix(100, 0)}

	require.NoError(t, store.Put(ctx, rec))
	first := recvSnap(t, ch)

	// identical write redelivers the same snapshot; the derived view must
	// not change
	require.NoError(t, store.Put(ctx, rec))
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(first, c.Snapshot())
	}, 2*time.Second, 10*time.Millisecond)

	for {
		select {
		case snap := <-ch:
			assert.Equal(t, first, snap)
		default:
			return
		}
	}
}

func TestUnsubscribe_StopsDeliveryAndIsReentrant(t *testing.T) {
	store := NewMemoryStore()
	c, _ := startCoordinator(t, store, domain.UserIdentity{UserID: "alice", UserName: "Alice"})

	ch, unsub := subscribeChan(c)
	recvSnap(t, ch)

	unsub()
	unsub() // must be safe to call again

	require.NoError(t, store.Put(context.Background(), domain.PresenceRecord{UserID: "bob", UserName: "Bob"}))

	select {
	case snap := <-ch:
		t.Fatalf("callback fired after unsubscribe: %v", snap)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribe_LateSubscriberGetsCurrentView(t *testing.T) {
	store := NewMemoryStore()
	c, _ := startCoordinator(t, store, domain.UserIdentity{UserID: "alice", UserName: "Alice"})

	require.NoError(t, c.GoOnline(context.Background()))

	// wait until the coordinator has observed the write
	require.Eventually(t, func() bool {
		_, ok := c.Snapshot()["alice"]
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	ch, unsub := subscribeChan(c)
	defer unsub()

	snap := recvSnap(t, ch)
	assert.Contains(t, snap, "alice")
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	c, _ := startCoordinator(t, store, domain.UserIdentity{UserID: "alice", UserName: "Alice"})

	require.NoError(t, c.GoOnline(context.Background()))
	require.Eventually(t, func() bool {
		return len(c.Snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	snap := c.Snapshot()
	delete(snap, "alice")
	assert.Len(t, c.Snapshot(), 1, "mutating a returned snapshot must not affect the view")
}
