// Package domain defines the user account domain model. Users own credentials;
// the profile actions operate on the authenticated credential's owner.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/actiongate/actiongate/internal/errors"
)

// User represents an account that owns API credentials.
// PasswordHash holds the Argon2id hash, never the plain password.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserEmailTaken indicates another user already uses the email address.
	ErrUserEmailTaken = errors.Wrap(errors.ErrConflict, "user email already taken")

	// ErrWrongPassword indicates the supplied current password did not match
	// the stored hash during a password change.
	ErrWrongPassword = errors.Wrap(errors.ErrInvalidInput, "current password is incorrect")
)
