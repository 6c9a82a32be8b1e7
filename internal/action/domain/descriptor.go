// Package domain defines the action dispatch domain model: the descriptor an
// action registers under, the handler contract every action implements, and
// the per-call request context the dispatcher owns.
package domain

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	appvalidation "github.com/actiongate/actiongate/internal/validation"
)

// Descriptor is the registry's record of one action: its identifier, the
// capabilities it requires, its parameter and example documentation, and the
// handler that executes it. Descriptors are immutable once registered; the
// registry rebuilds them wholesale instead of mutating them in place.
type Descriptor struct {
	ActionType           string                  // Unique dotted identifier (e.g. "system.ping")
	Version              string                  // Semantic version of the action contract
	Description          string                  // Human-readable behavior summary
	Enabled              bool                    // Disabled actions dispatch as if unregistered
	RequiredCapabilities []authDomain.Capability // Declared defaults; empty admits any authenticated caller
	Parameters           []ParameterDoc          // Parameter documentation
	Examples             []Example               // Request/response examples
	Handler              Handler                 // Executable implementation
}

// ParameterDoc documents one parameter an action accepts.
type ParameterDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // JSON type: "string", "integer", "boolean", "array", "object"
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Example is one documented request/response pair for an action.
type Example struct {
	Name     string         `json:"name"`
	Request  map[string]any `json:"request"`            // Example request body including action_type
	Response map[string]any `json:"response,omitempty"` // Example success data
}

// Validate checks that the descriptor is registrable: a well-formed action
// type and an executable handler. Documentation completeness is checked by
// the docs generator, not here.
func (d *Descriptor) Validate() error {
	err := validation.ValidateStruct(d,
		validation.Field(&d.ActionType,
			validation.Required,
			appvalidation.ActionType,
		),
	)
	if err != nil {
		return appvalidation.WrapValidationError(err)
	}
	if d.Handler == nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "action %q has no handler", d.ActionType)
	}
	return nil
}
