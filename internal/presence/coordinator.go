package presence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkoval-dev/peercall/internal/domain"
	"github.com/mkoval-dev/peercall/internal/logging"
)

// SnapshotFunc receives the full current mapping of userID to PresenceRecord
// every time the collection changes. An empty map means nobody is online.
// Every invocation is a full replacement of the subscriber's local view.
type SnapshotFunc func(domain.Snapshot)

type subscriber struct {
	mu     sync.Mutex
	closed bool
	fn     SnapshotFunc
}

// Coordinator maintains the local view of who is online. It is bound to one
// session identity and only ever writes or removes that identity's record:
// per-key single-writer ownership is enforced here, not assumed.
type Coordinator struct {
	store  Store
	self   domain.UserIdentity
	logger logging.Logger

	mu      sync.Mutex
	current domain.Snapshot
	subs    map[int]*subscriber
	nextID  int
}

func NewCoordinator(store Store, self domain.UserIdentity, logger logging.Logger) *Coordinator {
	return &Coordinator{
		store:   store,
		self:    self,
		logger:  logger.With("user_id", self.UserID),
		current: domain.Snapshot{},
		subs:    make(map[int]*subscriber),
	}
}

// Start begins consuming store snapshots and fanning them out to subscribers.
// It returns once the subscription is established; delivery continues until
// ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) error {
	ch, err := c.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("presence watch: %w", err)
	}

	go func() {
		for snap := range ch {
			c.deliver(snap)
		}
		c.logger.Debug(ctx, "presence watch closed")
	}()

	return nil
}

// GoOnline publishes this session's presence record with the current time.
// Overwrites any pre-existing record for the same ID.
func (c *Coordinator) GoOnline(ctx context.Context) error {
	rec := domain.PresenceRecord{
		UserID:   c.self.UserID,
		UserName: c.self.UserName,
		LastSeen: time.Now(),
	}
	if err := c.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("go online: %w", err)
	}
	c.logger.Info(ctx, "went online")
	return nil
}

// GoOffline retracts this session's presence record. Must be invoked on
// graceful session end; idempotent when the record is already gone.
func (c *Coordinator) GoOffline(ctx context.Context) error {
	if err := c.store.Remove(ctx, c.self.UserID); err != nil {
		return fmt.Errorf("go offline: %w", err)
	}
	c.logger.Info(ctx, "went offline")
	return nil
}

// Subscribe registers fn to be invoked with a full snapshot on every change.
// If a snapshot has already been delivered, fn immediately receives the
// current view. The returned unsubscribe func stops delivery before it
// returns and is safe to call any number of times.
func (c *Coordinator) Subscribe(fn SnapshotFunc) (unsubscribe func()) {
	sub := &subscriber{fn: fn}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = sub
	initial := c.current.Clone()
	c.mu.Unlock()

	sub.mu.Lock()
	sub.fn(initial)
	sub.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			// taking the subscriber lock guarantees no in-flight callback
			// survives past this point
			sub.mu.Lock()
			sub.closed = true
			sub.mu.Unlock()

			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Snapshot returns a copy of the most recently delivered view.
func (c *Coordinator) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

func (c *Coordinator) deliver(snap domain.Snapshot) {
	c.mu.Lock()
	c.current = snap
	targets := make([]*subscriber, 0, len(c.subs))
	for _, s := range c.subs {
		targets = append(targets, s)
	}
	c.mu.Unlock()

	for _, s := range targets {
		s.mu.Lock()
		if !s.closed {
			s.fn(snap.Clone())
		}
		s.mu.Unlock()
	}
}
