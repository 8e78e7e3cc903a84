package domain

import "time"

// PresenceRecord marks a user as currently reachable for calls. A record is
// connection-scoped: it exists while the owning session's lease is alive and
// is expired by the store once heartbeats stop. At most one record per userID
// exists at any time; presence carries no richer busy/available state.
type PresenceRecord struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	LastSeen time.Time `json:"last_seen"`
}

// Snapshot is a full replacement view of everyone online, keyed by userID.
// Successive snapshots carry no ordering guarantee beyond "reflects store
// state at delivery time"; subscribers must not patch incrementally.
type Snapshot map[string]PresenceRecord

// Clone returns an independent copy so subscribers can retain a snapshot
// without racing later deliveries.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
