package calls

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkoval-dev/peercall/internal/domain"
)

const historyLimit = 50

type PostgresAttemptRepository struct {
	db *sql.DB
}

func NewPostgresAttemptRepository(db *sql.DB) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{db: db}
}

func (r *PostgresAttemptRepository) Append(ctx context.Context, a *domain.CallAttempt) (*domain.CallAttempt, error) {
	query :=
		`INSERT INTO call_attempts (id, caller_id, caller_name, callee_id, call_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING started_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.CallerID, a.CallerName, a.CalleeID, string(a.CallType)).Scan(&a.StartedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return a, nil
}

func (r *PostgresAttemptRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM call_attempts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresAttemptRepository) ListByCaller(ctx context.Context, callerID string) ([]domain.CallAttempt, error) {
	query :=
		`SELECT id, caller_id, caller_name, callee_id, call_type, started_at, ended_at
		 FROM call_attempts
		 WHERE caller_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, callerID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []domain.CallAttempt
	for rows.Next() {
		var a domain.CallAttempt
		var callType string
		if err := rows.Scan(&a.ID, &a.CallerID, &a.CallerName, &a.CalleeID, &callType, &a.StartedAt, &a.EndedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call attempt: %w", err)
		}
		a.CallType = domain.CallType(callType)
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call attempts: %w", err)
	}

	return result, nil
}
