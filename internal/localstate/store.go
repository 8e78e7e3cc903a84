package localstate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkoval-dev/peercall/internal/domain"
)

const (
	keyUserID   = "identity.user_id"
	keyUserName = "identity.user_name"
)

// Store keeps small key/value metadata in the local database. The cached
// identity lives here.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// SaveIdentity caches the signed-in identity for later resume.
func (s *Store) SaveIdentity(ctx context.Context, id domain.UserIdentity) error {
	if err := s.set(ctx, keyUserID, []byte(id.UserID)); err != nil {
		return err
	}
	return s.set(ctx, keyUserName, []byte(id.UserName))
}

// LoadIdentity returns the cached identity, or nil when none is stored.
func (s *Store) LoadIdentity(ctx context.Context) (*domain.UserIdentity, error) {
	userID, err := s.get(ctx, keyUserID)
	if err != nil {
		return nil, err
	}
	if len(userID) == 0 {
		return nil, nil
	}

	userName, err := s.get(ctx, keyUserName)
	if err != nil {
		return nil, err
	}

	return &domain.UserIdentity{UserID: string(userID), UserName: string(userName)}, nil
}

// ClearIdentity wipes the cached identity, e.g. on logout.
func (s *Store) ClearIdentity(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?)`, keyUserID, keyUserName)
	if err != nil {
		return fmt.Errorf("failed to clear cached identity: %w", err)
	}
	return nil
}
