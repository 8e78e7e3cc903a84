// Package profile implements the profile-store operations: signup with
// uniqueness enforcement and optional avatar upload, login validation, and
// avatar lookup.
package profile

import (
	"context"

	"github.com/mkoval-dev/peercall/internal/domain"
)

// Repository is the profile-store contract.
type Repository interface {
	// Exists reports whether a profile with the given userID is registered.
	Exists(ctx context.Context, userID string) (bool, error)

	// Get returns the profile or common.ErrorNotFound.
	Get(ctx context.Context, userID string) (*domain.Profile, error)

	// Create inserts the profile only if the userID is absent, stamping
	// RegisteredAt with server time. Returns common.ErrorUserIDTaken when
	// the key already exists (conditional put, not read-then-write).
	Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
}
