// Package usecase implements business logic orchestration for credential
// management and bearer token authentication.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	authService "github.com/actiongate/actiongate/internal/auth/service"
	"github.com/actiongate/actiongate/internal/config"
	"github.com/actiongate/actiongate/internal/database"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// credentialUseCase implements CredentialUseCase for managing API credentials.
type credentialUseCase struct {
	config         *config.Config
	txManager      database.TxManager
	credentialRepo CredentialRepository
	tokenService   authService.TokenService
}

// Create generates and persists a new Credential with a random bearer token.
// Returns the created credential and plain text token. The plain token is only
// returned once and must be securely stored by the caller. The SHA-256 hash is
// stored in the database.
func (c *credentialUseCase) Create(
	ctx context.Context,
	createCredentialInput *authDomain.CreateCredentialInput,
) (*authDomain.CreateCredentialOutput, error) {
	// Generate a secure random bearer token
	plainToken, tokenHash, err := c.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	// Create the credential entity with expiration from config
	now := time.Now().UTC()
	credential := &authDomain.Credential{
		ID:           uuid.Must(uuid.NewV7()),
		UserID:       createCredentialInput.UserID,
		TokenHash:    tokenHash,
		Name:         createCredentialInput.Name,
		Capabilities: createCredentialInput.Capabilities,
		IsActive:     true,
		ExpiresAt:    c.expiresAt(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := credential.Validate(); err != nil {
		return nil, err
	}

	// Check name uniqueness and persist within a transaction
	err = c.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := c.credentialRepo.GetByName(ctx, credential.Name); err == nil {
			return authDomain.ErrCredentialNameTaken
		} else if !apperrors.Is(err, authDomain.ErrCredentialNotFound) {
			return err
		}
		return c.credentialRepo.Create(ctx, credential)
	})
	if err != nil {
		return nil, err
	}

	// Return the credential and plain token
	return &authDomain.CreateCredentialOutput{
		Credential: credential,
		PlainToken: plainToken,
	}, nil
}

// expiresAt computes the credential expiry from config.
// A zero AuthTokenExpiration means credentials never expire.
func (c *credentialUseCase) expiresAt(now time.Time) *time.Time {
	if c.config.AuthTokenExpiration <= 0 {
		return nil
	}
	expiry := now.Add(c.config.AuthTokenExpiration)
	return &expiry
}

// Update modifies an existing credential's configuration.
// Only Name, Capabilities, IsActive, and ExpiresAt can be updated. The
// credential ID and token hash remain unchanged.
func (c *credentialUseCase) Update(
	ctx context.Context,
	credentialID uuid.UUID,
	updateCredentialInput *authDomain.UpdateCredentialInput,
) error {
	return c.txManager.WithTx(ctx, func(ctx context.Context) error {
		// Get the existing credential
		credential, err := c.credentialRepo.Get(ctx, credentialID)
		if err != nil {
			return err
		}

		// Renaming must not collide with another credential
		if updateCredentialInput.Name != credential.Name {
			if existing, err := c.credentialRepo.GetByName(ctx, updateCredentialInput.Name); err == nil && existing.ID != credentialID {
				return authDomain.ErrCredentialNameTaken
			} else if err != nil && !apperrors.Is(err, authDomain.ErrCredentialNotFound) {
				return err
			}
		}

		// Update mutable fields
		credential.Name = updateCredentialInput.Name
		credential.Capabilities = updateCredentialInput.Capabilities
		credential.IsActive = updateCredentialInput.IsActive
		credential.ExpiresAt = updateCredentialInput.ExpiresAt
		credential.UpdatedAt = time.Now().UTC()

		if err := credential.Validate(); err != nil {
			return err
		}

		// Persist the updated credential
		return c.credentialRepo.Update(ctx, credential)
	})
}

// Get retrieves a credential by ID.
// Returns ErrCredentialNotFound if the credential doesn't exist.
func (c *credentialUseCase) Get(ctx context.Context, credentialID uuid.UUID) (*authDomain.Credential, error) {
	return c.credentialRepo.Get(ctx, credentialID)
}

// List retrieves credentials ordered by ID descending with pagination support,
// along with the total credential count. Returns an empty slice if no
// credentials are found.
func (c *credentialUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.Credential, int64, error) {
	credentials, err := c.credentialRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := c.credentialRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return credentials, total, nil
}

// Revoke performs a soft delete on a credential by setting IsActive to false.
// This prevents the credential from authenticating while preserving audit history.
func (c *credentialUseCase) Revoke(ctx context.Context, credentialID uuid.UUID) error {
	// Get the existing credential
	credential, err := c.credentialRepo.Get(ctx, credentialID)
	if err != nil {
		return err
	}

	// Soft delete by deactivating
	credential.IsActive = false
	credential.UpdatedAt = time.Now().UTC()

	// Persist the updated credential
	return c.credentialRepo.Update(ctx, credential)
}

// NewCredentialUseCase creates a new CredentialUseCase with the provided dependencies.
func NewCredentialUseCase(
	config *config.Config,
	txManager database.TxManager,
	credentialRepo CredentialRepository,
	tokenService authService.TokenService,
) CredentialUseCase {
	return &credentialUseCase{
		config:         config,
		txManager:      txManager,
		credentialRepo: credentialRepo,
		tokenService:   tokenService,
	}
}
