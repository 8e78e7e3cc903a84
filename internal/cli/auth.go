package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mkoval-dev/peercall/internal/common"
)

// getSimpleText is an indirection used to facilitate testing. It points to
// the interactive input helper and can be swapped in tests.
var getSimpleText = GetSimpleText

// userMessage converts a failure into the single line shown to the user.
// Nothing here is allowed to crash the session.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return "Invalid input: " + err.Error()
	case errors.Is(err, common.ErrorUserIDTaken):
		return "This userID is already taken, pick another one."
	case errors.Is(err, common.ErrorNotFound):
		return "Account not found."
	case errors.Is(err, common.ErrorAvatarUpload):
		return "Avatar upload failed, try again."
	case errors.Is(err, common.ErrorInvalidTarget):
		return "Enter the userID of the person to call."
	case errors.Is(err, common.ErrorSelfCall):
		return "You cannot call yourself."
	case errors.Is(err, common.ErrorCallAlreadyInFlight):
		return "A call is already in progress, wait for it to finish."
	case errors.Is(err, common.ErrorInvitationDispatchFailed):
		return "Could not reach the callee, try again."
	case errors.Is(err, common.ErrorNotAuthenticated):
		return "Log in first."
	default:
		return "Something went wrong, try again."
	}
}

// Signup prompts for a userID, a display name and an optional avatar image
// and registers a new account. On success the session is authenticated and
// the client goes online.
func (a *App) Signup(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Choose a userID", os.Stdout)
	if err != nil {
		return err
	}
	userName, err := getSimpleText(a.reader, "Choose a display name", os.Stdout)
	if err != nil {
		return err
	}
	avatarPath, err := getSimpleText(a.reader, "Path to an avatar image (leave empty to skip)", os.Stdout)
	if err != nil {
		return err
	}

	var avatarData []byte
	if avatarPath != "" {
		avatarData, err = os.ReadFile(avatarPath)
		if err != nil {
			fmt.Println("Cannot read that file, signing up without an avatar.")
			avatarData = nil
		}
	}

	if err := a.session.Signup(ctx, userID, userName, avatarData, avatarPath); err != nil {
		fmt.Println(userMessage(err))
		return err
	}

	if err := a.startSession(ctx); err != nil {
		a.logger.Warn(ctx, "going online after signup failed", "error", err)
	}

	fmt.Println("Welcome,", userName + "!")
	return nil
}

// Login prompts for credentials and authenticates against the profile store.
func (a *App) Login(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter your userID", os.Stdout)
	if err != nil {
		return err
	}
	userName, err := getSimpleText(a.reader, "Enter your display name", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, userID, userName); err != nil {
		fmt.Println(userMessage(err))
		return err
	}

	if err := a.startSession(ctx); err != nil {
		a.logger.Warn(ctx, "going online after login failed", "error", err)
	}

	fmt.Println("Welcome back,", userName + "!")
	return nil
}

// Logout goes offline, discards the engine and clears the cached identity.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Println(userMessage(err))
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// Whoami prints the authenticated identity.
func (a *App) Whoami(ctx context.Context) error {
	id, err := a.session.Identity()
	if err != nil {
		fmt.Println(userMessage(err))
		return err
	}
	fmt.Printf("%s (%s)\n", id.UserName, id.UserID)
	return nil
}
