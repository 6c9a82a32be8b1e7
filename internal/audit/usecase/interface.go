// Package usecase implements the audit trail: recording dispatch outcomes,
// listing them for review, retention cleanup, and batch signature
// verification.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
)

// EntryRepository defines persistence operations for audit entries.
// Entries are append-only; there is no update operation.
type EntryRepository interface {
	// Create stores a new audit entry.
	Create(ctx context.Context, entry *auditDomain.Entry) error

	// List retrieves entries ordered by created_at descending with pagination
	// and optional inclusive time filters (nil means no bound).
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.Entry, error)

	// Count returns the number of entries matching the optional time filters.
	Count(ctx context.Context, createdAtFrom, createdAtTo *time.Time) (int64, error)

	// DeleteOlderThan removes entries created before the given timestamp.
	// When dryRun is true only the count is returned, nothing is deleted.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// RecordInput carries one dispatch outcome into the audit trail.
type RecordInput struct {
	RequestID    string
	CredentialID *uuid.UUID
	ActionType   string
	Outcome      auditDomain.Outcome
	DurationMS   int64
	Metadata     map[string]any
}

// VerificationReport summarizes a batch signature verification run.
// Unsigned entries (recorded while no signing key was configured) are counted
// separately and never fail the run.
type VerificationReport struct {
	TotalChecked   int64
	SignedCount    int64
	UnsignedCount  int64
	ValidCount     int64
	InvalidCount   int64
	InvalidEntries []uuid.UUID
}

// EntryUseCase defines the audit trail operations.
type EntryUseCase interface {
	// Record appends one dispatch outcome to the audit trail, signing it when
	// a signing key is configured. Generates the entry's identity and
	// timestamp.
	Record(ctx context.Context, recordInput *RecordInput) error

	// List retrieves entries ordered by created_at descending (newest first)
	// with pagination and optional inclusive time filters, along with the
	// total count of matching entries.
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.Entry, int64, error)

	// DeleteOlderThan removes entries older than the given number of days.
	// When dryRun is true, reports how many entries would be removed without
	// deleting anything.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)

	// VerifyBatch checks the signature of every entry created inside the
	// given time range and reports the results. Requires a configured signing
	// key. Invalid signatures are reported, never repaired.
	VerifyBatch(ctx context.Context, startTime, endTime time.Time) (*VerificationReport, error)
}
