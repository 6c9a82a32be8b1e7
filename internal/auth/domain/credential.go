package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	appvalidation "github.com/actiongate/actiongate/internal/validation"
)

// Credential represents an API principal: the bearer of a token, identified by
// the one-way hash of that token. The plain token is never stored. A credential
// carries a granted capability set and belongs to a user account.
type Credential struct {
	ID           uuid.UUID    // Unique identifier (UUIDv7)
	UserID       uuid.UUID    // Owning user account
	TokenHash    string       // SHA-256 hex hash of the bearer token (globally unique)
	Name         string       // Human-readable credential name (unique)
	Capabilities []Capability // Capabilities granted to this credential
	IsActive     bool         // Whether the credential can authenticate
	ExpiresAt    *time.Time   // Expiration; nil means the credential never expires
	LastUsedAt   *time.Time   // Last successful authentication (best effort)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired reports whether the credential expired before the given time.
// Credentials without an expiration never expire.
func (c *Credential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// IsUsable reports whether the credential can authenticate at the given time.
// A credential is usable only while active and unexpired.
func (c *Credential) IsUsable(now time.Time) bool {
	return c.IsActive && !c.IsExpired(now)
}

// HasCapability reports whether the credential was granted the capability.
func (c *Credential) HasCapability(capability Capability) bool {
	return slices.Contains(c.Capabilities, capability)
}

// MissingCapabilities returns the subset of required capabilities the
// credential does not hold, preserving the required order. An empty result
// means the credential satisfies all of them.
func (c *Credential) MissingCapabilities(required []Capability) []Capability {
	var missing []Capability
	for _, capability := range required {
		if !c.HasCapability(capability) {
			missing = append(missing, capability)
		}
	}
	return missing
}

// EffectiveCapabilities returns the credential's declared capability set, or
// the given defaults when no capabilities were declared.
func (c *Credential) EffectiveCapabilities(defaults []Capability) []Capability {
	if len(c.Capabilities) > 0 {
		return c.Capabilities
	}
	return defaults
}

// Validate checks credential fields before persistence.
func (c *Credential) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.TokenHash, validation.Required, appvalidation.NoWhitespace),
		validation.Field(&c.Name,
			validation.Required,
			appvalidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&c.Capabilities, validation.Each(validation.By(capabilityRule))),
	)
	return appvalidation.WrapValidationError(err)
}

// capabilityRule validates a single Capability value inside a slice.
func capabilityRule(value interface{}) error {
	capability, ok := value.(Capability)
	if !ok {
		return validation.NewError("validation_capability", "must be a capability")
	}
	if !capability.IsValid() {
		return validation.NewError("validation_capability_unknown", "unknown capability: "+string(capability))
	}
	return nil
}

// CreateCredentialInput contains the parameters for creating a new credential.
// The bearer token is generated automatically and cannot be supplied by the
// caller; its expiration comes from server configuration.
type CreateCredentialInput struct {
	UserID       uuid.UUID    // Owning user account
	Name         string       // Human-readable name for identifying the credential
	Capabilities []Capability // Granted capabilities; empty means the configured default set
}

// CreateCredentialOutput contains the result of creating a credential.
// SECURITY: The PlainToken is only returned once and must be securely
// transmitted to the caller. It will never be retrievable again.
type CreateCredentialOutput struct {
	Credential *Credential
	PlainToken string
}

// UpdateCredentialInput contains the mutable fields for updating a credential.
// The credential ID and token hash cannot be modified through updates.
type UpdateCredentialInput struct {
	Name         string
	Capabilities []Capability
	IsActive     bool
	ExpiresAt    *time.Time
}
