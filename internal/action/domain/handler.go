package domain

import (
	"context"
	"encoding/json"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
)

// Handler is the contract every action implements. The registry shares one
// instance across concurrent requests, so implementations must be safe for
// concurrent use: all configuration is fixed at construction and never
// mutated afterwards. Per-call state lives on the Request, never on the
// handler.
type Handler interface {
	// Describe returns the action's self-description. The registry completes
	// the returned descriptor with the handler reference, the required
	// capabilities, and the enabled flag before recording it.
	Describe() Descriptor

	// Validate checks the raw request parameters before Execute runs. The
	// returned error may be a validation.Errors map, which the dispatcher
	// renders as a per-field detail map.
	Validate(params json.RawMessage) error

	// Execute runs the action. The request carries the raw parameters and
	// the authenticated credential. Returning *Envelope controls the success
	// message and pagination block; any other value is rendered as a bare
	// success envelope.
	Execute(ctx context.Context, request *Request) (any, error)

	// RequiredCapabilities returns the action's declared capability
	// requirement. An empty list admits any authenticated credential.
	RequiredCapabilities() []authDomain.Capability
}
