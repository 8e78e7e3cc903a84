package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkoval-dev/peercall/internal/common"
	"github.com/mkoval-dev/peercall/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	query :=
		`SELECT user_id, user_name, avatar_url, registered_at FROM profiles
		 WHERE user_id = $1
		 `

	p := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&p.UserID, &p.UserName, &p.AvatarURL, &p.RegisteredAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return p, nil
}

// Create relies on ON CONFLICT DO NOTHING so concurrent signups for the same
// userID cannot both succeed: the loser sees no returned row.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	query :=
		`INSERT INTO profiles (user_id, user_name, avatar_url)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING registered_at
		 `

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.UserName, p.AvatarURL).
		Scan(&p.RegisteredAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorUserIDTaken
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return p, nil
}
