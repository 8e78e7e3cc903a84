// Package domain holds the core data types of peercall: identities, profiles,
// presence records and call attempts. Types here carry no behavior beyond
// validation and parsing; storage and transport live in the adapter packages.
package domain

import (
	"strings"
	"time"

	"github.com/mkoval-dev/peercall/internal/common"
)

// UserIdentity is the (userID, userName) pair a session runs under.
// Created at signup and immutable thereafter; there is no rename flow.
type UserIdentity struct {
	UserID   string
	UserName string
}

// Validate reports ErrorValidation when either field is empty or
// whitespace-only.
func (u UserIdentity) Validate() error {
	if strings.TrimSpace(u.UserID) == "" || strings.TrimSpace(u.UserName) == "" {
		return common.ErrorValidation
	}
	return nil
}

// Profile is the registered record of a user. AvatarURL is nil when the user
// skipped the avatar upload; readers must render a placeholder in that case.
type Profile struct {
	UserID       string
	UserName     string
	AvatarURL    *string
	RegisteredAt time.Time
}
