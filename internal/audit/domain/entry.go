// Package domain defines the audit trail domain model. Every dispatch,
// successful or not, produces one Entry; entries are append-only and may be
// HMAC-signed so later tampering is detectable.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrSignatureInvalid indicates an audit entry signature failed verification,
// meaning the entry was altered after it was recorded.
var ErrSignatureInvalid = errors.New("audit entry signature is invalid")

// Outcome classifies how a dispatch concluded. Successful dispatches record
// OutcomeSuccess; failed dispatches record the lowercased error code of the
// response envelope (e.g. "forbidden", "validation_error").
type Outcome string

// OutcomeSuccess marks a dispatch that reached its handler and succeeded.
const OutcomeSuccess Outcome = "success"

// FailureOutcome converts an envelope error code into its audit outcome form.
func FailureOutcome(errorCode string) Outcome {
	return Outcome(strings.ToLower(errorCode))
}

// Entry records a single dispatch through the action endpoint: who asked for
// what, how it ended, and how long it took. The signature covers every field
// except ID so stored entries cannot be silently rewritten.
type Entry struct {
	ID           uuid.UUID
	RequestID    string         // Request id header value, generated or client-supplied
	CredentialID *uuid.UUID     // Authenticated credential; nil when auth never succeeded
	ActionType   string         // Requested action; may be empty or unresolvable for early failures
	Outcome      Outcome        // How the dispatch concluded
	DurationMS   int64          // Wall time of the dispatch in milliseconds
	Metadata     map[string]any // Optional context (missing capabilities, error code)
	Signature    []byte         // HMAC-SHA256 over the canonical entry; nil when signing is disabled
	CreatedAt    time.Time
}

// IsSigned reports whether the entry carries a signature. Entries recorded
// while no signing key was configured are unsigned and skipped by verification.
func (e *Entry) IsSigned() bool {
	return len(e.Signature) > 0
}
