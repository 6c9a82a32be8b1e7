// Package usecase implements permission resolution and override management.
//
// Resolution answers "which capabilities does this action require right now":
// the persisted override table takes precedence over the capability defaults
// an action declares, so operators can tighten, relax, or open an action
// without redeploying. Management is the admin surface for that table.
package usecase

import (
	"context"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
)

// OverrideRepository defines persistence operations for permission overrides.
// Implementations must support transaction-aware operations via context propagation.
type OverrideRepository interface {
	// Create stores a new override in the repository.
	Create(ctx context.Context, override *permissionDomain.Override) error

	// Update modifies an existing override in the repository.
	Update(ctx context.Context, override *permissionDomain.Override) error

	// GetByActionType retrieves the override for an action. Returns
	// ErrOverrideNotFound if no override exists for the action.
	GetByActionType(ctx context.Context, actionType string) (*permissionDomain.Override, error)

	// Delete removes the override for an action. Returns ErrOverrideNotFound
	// if no override exists for the action.
	Delete(ctx context.Context, actionType string) error

	// List retrieves overrides ordered by action type with pagination support.
	List(ctx context.Context, offset, limit int) ([]*permissionDomain.Override, error)

	// Count returns the total number of stored overrides.
	Count(ctx context.Context) (int64, error)
}

// Resolver answers authorization questions during request dispatch.
// It is the read path of the permission system: every authenticated request
// passes through Authorize exactly once before its handler runs.
type Resolver interface {
	// RequiredCapabilities returns the capabilities an action requires,
	// applying any active persisted override on top of the declared defaults.
	// An inactive or absent override leaves the declared set in force.
	RequiredCapabilities(ctx context.Context, actionType string, declared []authDomain.Capability) ([]authDomain.Capability, error)

	// Authorize checks the credential's granted capabilities against the
	// action's effective requirement and returns the full decision: whether
	// access is allowed, what was required, and what the credential lacked.
	//
	// A lookup failure fails closed; the caller must treat an error as a
	// denial, never as an allow.
	Authorize(ctx context.Context, credential *authDomain.Credential, actionType string, declared []authDomain.Capability) (*permissionDomain.Decision, error)
}

// OverrideUseCase defines the management operations for permission overrides.
// This is the admin surface behind the permissions.* actions and the CLI.
type OverrideUseCase interface {
	// Set creates or replaces the override for an action. The capability list
	// is replaced wholesale, never merged with the previous value. Returns
	// the stored override.
	Set(ctx context.Context, setOverrideInput *permissionDomain.SetOverrideInput) (*permissionDomain.Override, error)

	// Get retrieves the override for an action. Returns ErrOverrideNotFound
	// if no override exists for the action.
	Get(ctx context.Context, actionType string) (*permissionDomain.Override, error)

	// Delete removes the override for an action, reverting the action to its
	// declared capability defaults. Returns ErrOverrideNotFound if no
	// override exists for the action.
	Delete(ctx context.Context, actionType string) error

	// List retrieves overrides ordered by action type with pagination
	// support, along with the total override count.
	List(ctx context.Context, offset, limit int) ([]*permissionDomain.Override, int64, error)
}

// PermissionUseCase combines the dispatch-time read path with the admin
// management surface. Both operate on the same override table.
type PermissionUseCase interface {
	Resolver
	OverrideUseCase
}
