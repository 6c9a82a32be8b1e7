// Package domain defines the permission override domain model. An override
// replaces an action's declared required-capability list at runtime without
// touching the action descriptor; deleting it reverts to the declared
// defaults.
package domain

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	"github.com/actiongate/actiongate/internal/errors"
	appvalidation "github.com/actiongate/actiongate/internal/validation"
)

// Override replaces the declared required capabilities of one action.
// Keyed by action type; at most one override exists per action. An inactive
// override is kept for audit purposes but has no effect on authorization.
type Override struct {
	ID           uuid.UUID               // Unique identifier (UUIDv7)
	ActionType   string                  // Action identifier the override applies to
	Capabilities []authDomain.Capability // Replacement required-capability list
	IsActive     bool                    // Whether the override is applied
	Description  string                  // Operator note explaining the override
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks override fields before persistence.
func (o *Override) Validate() error {
	err := validation.ValidateStruct(o,
		validation.Field(&o.ActionType,
			validation.Required,
			appvalidation.ActionType,
		),
		validation.Field(&o.Capabilities, validation.Each(validation.By(capabilityRule))),
		validation.Field(&o.Description, validation.Length(0, 1024)),
	)
	return appvalidation.WrapValidationError(err)
}

// capabilityRule validates a single Capability value inside a slice.
func capabilityRule(value interface{}) error {
	capability, ok := value.(authDomain.Capability)
	if !ok {
		return validation.NewError("validation_capability", "must be a capability")
	}
	if !capability.IsValid() {
		return validation.NewError("validation_capability_unknown", "unknown capability: "+string(capability))
	}
	return nil
}

// SetOverrideInput contains the parameters for creating or replacing an
// override.
type SetOverrideInput struct {
	ActionType   string
	Capabilities []authDomain.Capability
	IsActive     bool
	Description  string
}

// Decision is the outcome of an authorization check. Missing lists the
// required capabilities the credential does not hold; it is empty when the
// decision allows.
type Decision struct {
	Allowed  bool
	Required []authDomain.Capability
	Missing  []authDomain.Capability
}

// Domain-specific errors for permission operations.
var (
	// ErrOverrideNotFound indicates no override exists for the action type.
	ErrOverrideNotFound = errors.Wrap(errors.ErrNotFound, "permission override not found")
)
