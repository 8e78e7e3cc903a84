package cli

import (
	"context"
	"fmt"

	"github.com/mkoval-dev/peercall/internal/common"
	"github.com/mkoval-dev/peercall/internal/domain"
)

// Call invites calleeID to a call. callType defaults to voice when empty.
func (a *App) Call(ctx context.Context, calleeID, callType string) error {
	co := a.callCoordinator()
	if co == nil {
		fmt.Println(userMessage(common.ErrorNotAuthenticated))
		return common.ErrorNotAuthenticated
	}

	if callType == "" {
		callType = string(domain.CallTypeVoice)
	}
	ct, err := domain.ParseCallType(callType)
	if err != nil {
		fmt.Println("Call type must be voice or video.")
		return err
	}

	// the display name comes from presence when the callee is visible there
	calleeName := ""
	if rec, ok := a.currentSnapshot()[calleeID]; ok {
		calleeName = rec.UserName
	}

	attempt, err := co.Invite(ctx, calleeID, calleeName, ct)
	if err != nil {
		fmt.Println(userMessage(err))
		return err
	}

	fmt.Printf("Invited %s to a %s call.\n", attempt.CalleeID, attempt.CallType)
	return nil
}

// History prints this caller's dispatched invitations, most recent first.
func (a *App) History(ctx context.Context) error {
	co := a.callCoordinator()
	if co == nil {
		fmt.Println(userMessage(common.ErrorNotAuthenticated))
		return common.ErrorNotAuthenticated
	}

	attempts, err := co.History(ctx)
	if err != nil {
		fmt.Println(userMessage(err))
		return err
	}

	if len(attempts) == 0 {
		fmt.Println("No calls yet.")
		return nil
	}

	for _, at := range attempts {
		fmt.Printf("  %s  %s -> %s  %s\n",
			at.StartedAt.Format("2006-01-02 15:04:05"), at.CallerID, at.CalleeID, at.CallType)
	}
	return nil
}
