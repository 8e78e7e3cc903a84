// Package calls implements the call-invitation coordination layer: target
// validation, invitation dispatch through the external call engine, and the
// append-only call-attempt audit log.
package calls

import (
	"context"
	"time"

	"github.com/mkoval-dev/peercall/internal/domain"
)

// Invitation is a request asking one user to join a voice or video session.
type Invitation struct {
	CallerID   string          `json:"caller_id"`
	CallerName string          `json:"caller_name"`
	CalleeID   string          `json:"callee_id"`
	CalleeName string          `json:"callee_name"`
	Type       domain.CallType `json:"call_type"`
	Timeout    time.Duration   `json:"timeout"`
}

// Engine is the external call-engine contract. SendInvitation resolves once
// the engine acknowledges the dispatch within the invitation's ring/ack
// timeout; it does not wait for the callee to answer, and there is no
// client-side cancel for an invitation already in flight.
type Engine interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}
