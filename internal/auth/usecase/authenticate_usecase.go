package usecase

import (
	"context"
	"errors"
	"time"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	"github.com/actiongate/actiongate/internal/config"
)

// authenticateUseCase implements AuthenticateUseCase for bearer token authentication.
type authenticateUseCase struct {
	credentialRepo      CredentialRepository
	usageRecorder       UsageRecorder
	defaultCapabilities []authDomain.Capability
}

// Authenticate validates a bearer token hash and returns the associated credential.
//
// This method:
// 1. Retrieves the credential by the SHA-256 hash of the presented token
// 2. Validates the credential is active and not expired
// 3. Applies the configured default capabilities when none were granted explicitly
// 4. Records credential usage for asynchronous last-used tracking
//
// Security Notes:
//   - Returns ErrInvalidCredentials for credential not found, expired, or revoked
//     to prevent enumeration attacks and information leakage
//   - All time comparisons use UTC to prevent timezone issues
//   - Usage recording never blocks or fails the authentication path
func (a *authenticateUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Credential, error) {
	// Get the credential by token hash
	credential, err := a.credentialRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		// If credential not found, return generic error to prevent enumeration
		if errors.Is(err, authDomain.ErrCredentialNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	// Check the credential is active and not expired
	if !credential.IsUsable(time.Now().UTC()) {
		return nil, authDomain.ErrInvalidCredentials
	}

	// Apply configured default capabilities when none were granted explicitly
	credential.Capabilities = credential.EffectiveCapabilities(a.defaultCapabilities)

	// Record usage for asynchronous last-used tracking
	if a.usageRecorder != nil {
		a.usageRecorder.Record(credential.ID)
	}

	// Return the authenticated credential
	return credential, nil
}

// NewAuthenticateUseCase creates a new AuthenticateUseCase with the provided
// dependencies. The usageRecorder may be nil, in which case last-used tracking
// is disabled. Returns an error if the configured default capability list
// cannot be parsed.
func NewAuthenticateUseCase(
	config *config.Config,
	credentialRepo CredentialRepository,
	usageRecorder UsageRecorder,
) (AuthenticateUseCase, error) {
	defaultCapabilities, err := authDomain.ParseCapabilities(config.AuthDefaultCapabilities)
	if err != nil {
		return nil, err
	}

	return &authenticateUseCase{
		credentialRepo:      credentialRepo,
		usageRecorder:       usageRecorder,
		defaultCapabilities: defaultCapabilities,
	}, nil
}
