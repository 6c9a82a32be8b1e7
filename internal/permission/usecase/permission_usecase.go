package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	"github.com/actiongate/actiongate/internal/database"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
)

// permissionUseCase implements both Resolver and OverrideUseCase on the same
// override table. The dispatcher consumes the Resolver side; the permissions.*
// actions and the CLI consume the OverrideUseCase side.
type permissionUseCase struct {
	txManager    database.TxManager
	overrideRepo OverrideRepository
}

// RequiredCapabilities returns the action's effective capability requirement.
// An active override replaces the declared defaults wholesale; an inactive or
// absent override leaves them in force. The override table is consulted on
// every call so capability changes take effect without restarts.
func (p *permissionUseCase) RequiredCapabilities(
	ctx context.Context,
	actionType string,
	declared []authDomain.Capability,
) ([]authDomain.Capability, error) {
	override, err := p.overrideRepo.GetByActionType(ctx, actionType)
	if err != nil {
		if apperrors.Is(err, permissionDomain.ErrOverrideNotFound) {
			return declared, nil
		}
		return nil, err
	}

	if !override.IsActive {
		return declared, nil
	}

	return override.Capabilities, nil
}

// Authorize checks the credential against the action's effective requirement.
// An empty effective requirement admits any authenticated credential.
func (p *permissionUseCase) Authorize(
	ctx context.Context,
	credential *authDomain.Credential,
	actionType string,
	declared []authDomain.Capability,
) (*permissionDomain.Decision, error) {
	required, err := p.RequiredCapabilities(ctx, actionType, declared)
	if err != nil {
		return nil, err
	}

	missing := credential.MissingCapabilities(required)

	return &permissionDomain.Decision{
		Allowed:  len(missing) == 0,
		Required: required,
		Missing:  missing,
	}, nil
}

// Set creates or replaces the override for an action. The write is an upsert:
// a second Set for the same action type replaces the previous override's
// capability list, active flag, and description while keeping its identity.
func (p *permissionUseCase) Set(
	ctx context.Context,
	setOverrideInput *permissionDomain.SetOverrideInput,
) (*permissionDomain.Override, error) {
	now := time.Now().UTC()
	override := &permissionDomain.Override{
		ID:           uuid.Must(uuid.NewV7()),
		ActionType:   setOverrideInput.ActionType,
		Capabilities: setOverrideInput.Capabilities,
		IsActive:     setOverrideInput.IsActive,
		Description:  setOverrideInput.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := override.Validate(); err != nil {
		return nil, err
	}

	// Replace-or-create within a transaction so concurrent Sets for the same
	// action cannot race past the unique action type constraint
	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		existing, err := p.overrideRepo.GetByActionType(ctx, override.ActionType)
		if err != nil {
			if apperrors.Is(err, permissionDomain.ErrOverrideNotFound) {
				return p.overrideRepo.Create(ctx, override)
			}
			return err
		}

		// Keep the existing row's identity and creation time
		override.ID = existing.ID
		override.CreatedAt = existing.CreatedAt
		return p.overrideRepo.Update(ctx, override)
	})
	if err != nil {
		return nil, err
	}

	return override, nil
}

// Get retrieves the override for an action.
// Returns ErrOverrideNotFound if no override exists for the action.
func (p *permissionUseCase) Get(ctx context.Context, actionType string) (*permissionDomain.Override, error) {
	return p.overrideRepo.GetByActionType(ctx, actionType)
}

// Delete removes the override for an action, reverting the action to its
// declared capability defaults on the next dispatch.
// Returns ErrOverrideNotFound if no override exists for the action.
func (p *permissionUseCase) Delete(ctx context.Context, actionType string) error {
	return p.overrideRepo.Delete(ctx, actionType)
}

// List retrieves overrides ordered by action type with pagination support,
// along with the total override count. Returns an empty slice if no overrides
// are found.
func (p *permissionUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*permissionDomain.Override, int64, error) {
	overrides, err := p.overrideRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := p.overrideRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return overrides, total, nil
}

// NewPermissionUseCase creates the combined Resolver and OverrideUseCase
// implementation backed by the given override repository.
func NewPermissionUseCase(txManager database.TxManager, overrideRepo OverrideRepository) PermissionUseCase {
	return &permissionUseCase{
		txManager:    txManager,
		overrideRepo: overrideRepo,
	}
}
