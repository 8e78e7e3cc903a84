package calls

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mkoval-dev/peercall/internal/common"
	"github.com/mkoval-dev/peercall/internal/domain"
	"github.com/mkoval-dev/peercall/internal/logging"
)

// Coordinator validates call targets, dispatches invitations through the
// engine and records each dispatched attempt in the audit log. One
// coordinator serves one caller; a second Invite while one is in flight for
// that caller is rejected.
type Coordinator struct {
	engine   Engine
	attempts AttemptRepository
	self     domain.UserIdentity
	timeout  time.Duration
	logger   logging.Logger

	inFlight atomic.Bool
}

func NewCoordinator(engine Engine, attempts AttemptRepository, self domain.UserIdentity, timeout time.Duration, logger logging.Logger) *Coordinator {
	return &Coordinator{
		engine:   engine,
		attempts: attempts,
		self:     self,
		timeout:  timeout,
		logger:   logger.With("caller_id", self.UserID),
	}
}

// Invite asks calleeID to join a call of the given type.
//
// Validation is local and synchronous, in order: empty or whitespace-only
// target, calling yourself, a call already in flight. Only then does the
// coordinator touch the network: the attempt is appended to the audit log,
// the invitation is dispatched with a bounded wait, and on dispatch failure
// the attempt is deleted again so log and dispatch cannot drift apart.
//
// Success means the engine acknowledged the dispatch; the callee has not
// necessarily answered.
func (c *Coordinator) Invite(ctx context.Context, calleeID, calleeName string, callType domain.CallType) (*domain.CallAttempt, error) {
	calleeID = strings.TrimSpace(calleeID)
	if calleeID == "" {
		return nil, common.ErrorInvalidTarget
	}
	if calleeID == c.self.UserID {
		return nil, common.ErrorSelfCall
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, common.ErrorCallAlreadyInFlight
	}
	defer c.inFlight.Store(false)

	if calleeName == "" {
		calleeName = calleeID
	}

	attempt := domain.NewCallAttempt(c.self, calleeID, callType)
	attempt, err := c.attempts.Append(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("recording call attempt: %w", err)
	}

	inv := Invitation{
		CallerID:   c.self.UserID,
		CallerName: c.self.UserName,
		CalleeID:   calleeID,
		CalleeName: calleeName,
		Type:       callType,
		Timeout:    c.timeout,
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.engine.SendInvitation(dispatchCtx, inv); err != nil {
		if delErr := c.attempts.Delete(ctx, attempt.ID); delErr != nil {
			c.logger.Error(ctx, "failed to compensate call attempt", "attempt_id", attempt.ID, "error", delErr)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInvitationDispatchFailed, err)
	}

	c.logger.Info(ctx, "invitation dispatched",
		"callee_id", calleeID, "call_type", string(callType), "attempt_id", attempt.ID)
	return attempt, nil
}

// History returns this caller's recorded attempts, most recent first.
func (c *Coordinator) History(ctx context.Context) ([]domain.CallAttempt, error) {
	return c.attempts.ListByCaller(ctx, c.self.UserID)
}
