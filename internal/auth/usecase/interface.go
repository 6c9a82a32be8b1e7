// Package usecase defines business logic interfaces for credential management
// and bearer token authentication.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
)

// CredentialRepository defines persistence operations for API credentials.
// Implementations must support transaction-aware operations via context propagation.
type CredentialRepository interface {
	// Create stores a new credential in the repository.
	Create(ctx context.Context, credential *authDomain.Credential) error

	// Update modifies an existing credential in the repository.
	Update(ctx context.Context, credential *authDomain.Credential) error

	// Get retrieves a credential by ID. Returns ErrCredentialNotFound if not found.
	Get(ctx context.Context, credentialID uuid.UUID) (*authDomain.Credential, error)

	// GetByName retrieves a credential by its unique name. Returns
	// ErrCredentialNotFound if not found.
	GetByName(ctx context.Context, name string) (*authDomain.Credential, error)

	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Credential, error)

	// List retrieves credentials ordered by ID descending with pagination support.
	List(ctx context.Context, offset, limit int) ([]*authDomain.Credential, error)

	// Count returns the total number of stored credentials.
	Count(ctx context.Context) (int64, error)

	// TouchLastUsed updates only the last-used timestamp of a credential.
	TouchLastUsed(ctx context.Context, credentialID uuid.UUID, usedAt time.Time) error
}

// UsageRecorder accepts credential usage notifications for asynchronous
// persistence. Implementations must never block the caller.
type UsageRecorder interface {
	Record(credentialID uuid.UUID)
}

// CredentialUseCase defines business logic operations for managing API credentials.
// It orchestrates the credential lifecycle including token generation, capability
// grants, and soft revocation while maintaining audit history.
type CredentialUseCase interface {
	// Create generates a new credential with a cryptographically secure bearer token.
	// The token is hashed with SHA-256 before storage; the plain text is never persisted.
	//
	// Returns the created credential and the plain text token. The plain token is
	// only returned once and should be securely transmitted to the caller. The
	// hashed version is stored in the database for future authentication.
	//
	// Credential names are unique. Returns ErrCredentialNameTaken if another
	// credential already uses the requested name.
	//
	// Security Note: The returned PlainToken must be transmitted securely (e.g., over TLS)
	// and never logged or stored by the caller. It should only be displayed once
	// during initial issuance.
	Create(
		ctx context.Context,
		createCredentialInput *authDomain.CreateCredentialInput,
	) (*authDomain.CreateCredentialOutput, error)

	// Update modifies an existing credential's configuration including name, active
	// status, capabilities, and expiry. The credential ID and token hash remain
	// unchanged; a credential's bearer token cannot be rotated in place.
	//
	// Returns ErrCredentialNotFound if the specified credential doesn't exist.
	Update(ctx context.Context, credentialID uuid.UUID, updateCredentialInput *authDomain.UpdateCredentialInput) error

	// Get retrieves a credential by ID including its token hash and capabilities.
	// The returned Credential contains the token hash, never the plain text token.
	//
	// Returns ErrCredentialNotFound if the specified credential doesn't exist.
	Get(ctx context.Context, credentialID uuid.UUID) (*authDomain.Credential, error)

	// List retrieves credentials ordered by ID descending with pagination support,
	// along with the total number of stored credentials.
	List(ctx context.Context, offset, limit int) ([]*authDomain.Credential, int64, error)

	// Revoke performs a soft delete by setting IsActive to false, preventing
	// authentication while preserving the credential record for audit purposes.
	// The credential's data remains in the database but the credential cannot
	// authenticate until reactivated via Update.
	//
	// Returns ErrCredentialNotFound if the specified credential doesn't exist.
	Revoke(ctx context.Context, credentialID uuid.UUID) error
}

type AuthenticateUseCase interface {
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.Credential, error)
}
