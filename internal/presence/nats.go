package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mkoval-dev/peercall/internal/domain"
	"github.com/mkoval-dev/peercall/internal/logging"
)

// NatsStore backs the presence collection with a NATS JetStream key-value
// bucket. The connection-bound lease is rendered as a bucket TTL plus a
// per-key heartbeat refresher owned by this adapter: while the process is
// alive the refresher keeps re-putting the record, and when the process dies
// the record expires after the TTL.
type NatsStore struct {
	kv     nats.KeyValue
	ttl    time.Duration
	logger logging.Logger

	mu         sync.Mutex
	heartbeats map[string]chan struct{}
}

// NewNatsStore binds to (or creates) the presence bucket.
func NewNatsStore(nc *nats.Conn, bucket string, ttl time.Duration, logger logging.Logger) (*NatsStore, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: bucket,
			TTL:    ttl,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("presence bucket %q: %w", bucket, err)
	}

	return &NatsStore{
		kv:         kv,
		ttl:        ttl,
		logger:     logger,
		heartbeats: make(map[string]chan struct{}),
	}, nil
}

func (s *NatsStore) Put(ctx context.Context, rec domain.PresenceRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal presence record: %w", err)
	}
	if _, err := s.kv.Put(rec.UserID, data); err != nil {
		return fmt.Errorf("presence put: %w", err)
	}
	s.startHeartbeat(rec)
	return nil
}

func (s *NatsStore) Remove(ctx context.Context, userID string) error {
	s.stopHeartbeat(userID)
	err := s.kv.Delete(userID)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("presence remove: %w", err)
	}
	return nil
}

// Close stops every heartbeat refresher. Records then expire via the TTL.
func (s *NatsStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, stop := range s.heartbeats {
		close(stop)
		delete(s.heartbeats, key)
	}
}

func (s *NatsStore) Watch(ctx context.Context) (<-chan domain.Snapshot, error) {
	watcher, err := s.kv.WatchAll(nats.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("presence watch: %w", err)
	}

	out := make(chan domain.Snapshot, 1)

	go func() {
		defer close(out)
		defer func() { _ = watcher.Stop() }()

		view := domain.Snapshot{}
		replaying := true

		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-watcher.Updates():
				if !ok {
					return
				}
				if entry == nil {
					// end of initial replay: the first full snapshot
					replaying = false
					sendLatest(out, view.Clone())
					continue
				}
				s.apply(view, entry)
				if !replaying {
					sendLatest(out, view.Clone())
				}
			}
		}
	}()

	return out, nil
}

func (s *NatsStore) apply(view domain.Snapshot, entry nats.KeyValueEntry) {
	switch entry.Operation() {
	case nats.KeyValuePut:
		var rec domain.PresenceRecord
		if err := json.Unmarshal(entry.Value(), &rec); err != nil {
			s.logger.Warn(context.Background(), "malformed presence record", "key", entry.Key(), "error", err)
			return
		}
		view[entry.Key()] = rec
	case nats.KeyValueDelete, nats.KeyValuePurge:
		delete(view, entry.Key())
	}
}

// startHeartbeat (re)starts the lease refresher for a record. The refresher
// re-puts the record at a third of the TTL so a healthy client never expires.
func (s *NatsStore) startHeartbeat(rec domain.PresenceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stop, ok := s.heartbeats[rec.UserID]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	s.heartbeats[rec.UserID] = stop

	go func() {
		ticker := time.NewTicker(s.ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				rec.LastSeen = time.Now()
				data, err := json.Marshal(rec)
				if err != nil {
					continue
				}
				if _, err := s.kv.Put(rec.UserID, data); err != nil {
					s.logger.Warn(context.Background(), "presence heartbeat failed", "user_id", rec.UserID, "error", err)
				}
			}
		}
	}()
}

func (s *NatsStore) stopHeartbeat(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.heartbeats[userID]; ok {
		close(stop)
		delete(s.heartbeats, userID)
	}
}
