// Package service provides cryptographic signing for audit entries.
package service

import (
	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
)

// EntrySigner generates and verifies tamper-evident signatures for audit
// entries. Implementations must be deterministic: signing the same entry
// twice yields the same signature.
type EntrySigner interface {
	// Sign computes the signature over the entry's canonical form.
	// The entry's Signature field is ignored as input.
	Sign(entry *auditDomain.Entry) ([]byte, error)

	// Verify recomputes the entry's signature and compares it with the stored
	// one. Returns ErrSignatureInvalid if they differ.
	Verify(entry *auditDomain.Entry) error
}
