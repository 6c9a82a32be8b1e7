package domain

import (
	"github.com/actiongate/actiongate/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrCredentialNotFound indicates a credential with the specified ID was not found.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "credential not found")

	// ErrCredentialNameTaken indicates another credential already uses the requested name.
	ErrCredentialNameTaken = errors.Wrap(errors.ErrConflict, "credential name already in use")

	// ErrInvalidCredentials is the generic authentication failure returned for
	// unknown, expired, and revoked credentials alike, so callers cannot probe
	// which of those applied.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")
)
