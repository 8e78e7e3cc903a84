// Package common defines shared constants and sentinel errors used across
// peercall components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors surfaced to the user without retry.
	ErrorValidation  = errors.New("validation error")
	ErrorUserIDTaken = errors.New("user id already taken")

	// Auth errors (invalid or malformed token).
	ErrorInvalidToken = errors.New("invalid token")

	// Call-invitation errors.
	ErrorInvalidTarget            = errors.New("invalid call target")
	ErrorSelfCall                 = errors.New("self call not allowed")
	ErrorCallAlreadyInFlight      = errors.New("call already in flight")
	ErrorInvitationDispatchFailed = errors.New("invitation dispatch failed")

	// Avatar errors.
	ErrorAvatarUpload = errors.New("avatar upload failed")

	// Session errors.
	ErrorNotAuthenticated = errors.New("not authenticated")
)
