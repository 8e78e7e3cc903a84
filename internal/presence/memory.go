package presence

import (
	"context"
	"sync"

	"github.com/mkoval-dev/peercall/internal/domain"
)

// MemoryStore is an in-process Store used by tests and offline development.
// It has no lease expiry: records live until removed.
type MemoryStore struct {
	mu       sync.Mutex
	records  domain.Snapshot
	watchers map[int]chan domain.Snapshot
	nextID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  domain.Snapshot{},
		watchers: make(map[int]chan domain.Snapshot),
	}
}

func (m *MemoryStore) Put(ctx context.Context, rec domain.PresenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.UserID] = rec
	m.broadcastLocked()
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userID)
	m.broadcastLocked()
	return nil
}

func (m *MemoryStore) Watch(ctx context.Context) (<-chan domain.Snapshot, error) {
	m.mu.Lock()
	ch := make(chan domain.Snapshot, 1)
	ch <- m.records.Clone()
	id := m.nextID
	m.nextID++
	m.watchers[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, id)
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}

// broadcastLocked pushes the current snapshot to every watcher, replacing an
// undelivered older snapshot if the watcher lags (latest wins).
func (m *MemoryStore) broadcastLocked() {
	snap := m.records.Clone()
	for _, ch := range m.watchers {
		sendLatest(ch, snap)
	}
}

func sendLatest(ch chan domain.Snapshot, snap domain.Snapshot) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
