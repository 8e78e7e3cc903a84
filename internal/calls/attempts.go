package calls

import (
	"context"

	"github.com/mkoval-dev/peercall/internal/domain"
)

// AttemptRepository is the append-only audit log of dispatched invitations.
// Each append creates a new uniquely-identified entry, so writers need no
// coordination. Delete exists solely as the compensating action for a failed
// dispatch.
type AttemptRepository interface {
	// Append stores the attempt, stamping StartedAt with server time.
	Append(ctx context.Context, a *domain.CallAttempt) (*domain.CallAttempt, error)

	// Delete removes an attempt by ID. Idempotent.
	Delete(ctx context.Context, id string) error

	// ListByCaller returns the caller's attempts, most recent first.
	ListByCaller(ctx context.Context, callerID string) ([]domain.CallAttempt, error)
}
