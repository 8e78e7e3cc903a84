package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CallType distinguishes voice from video invitations.
type CallType string

const (
	CallTypeVoice CallType = "voice"
	CallTypeVideo CallType = "video"
)

// ParseCallType maps user input to a CallType.
func ParseCallType(s string) (CallType, error) {
	switch CallType(s) {
	case CallTypeVoice, CallTypeVideo:
		return CallType(s), nil
	default:
		return "", fmt.Errorf("unknown call type %q", s)
	}
}

// CallAttempt is an audit-log entry recording that an invitation was
// dispatched, independent of whether it was answered. EndedAt is kept for
// forward compatibility but is never populated: no call-teardown hook exists
// in the engine contract.
type CallAttempt struct {
	ID         string
	CallerID   string
	CallerName string
	CalleeID   string
	CallType   CallType
	StartedAt  time.Time
	EndedAt    *time.Time
}

// NewCallAttempt builds an attempt with a fresh ID. StartedAt is left zero;
// the repository stamps it with server time on append.
func NewCallAttempt(caller UserIdentity, calleeID string, t CallType) *CallAttempt {
	return &CallAttempt{
		ID:         uuid.New().String(),
		CallerID:   caller.UserID,
		CallerName: caller.UserName,
		CalleeID:   calleeID,
		CallType:   t,
	}
}
