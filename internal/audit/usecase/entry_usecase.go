package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
	auditService "github.com/actiongate/actiongate/internal/audit/service"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	"github.com/actiongate/actiongate/internal/httputil"
)

// verifyBatchSize is how many entries one verification page loads.
const verifyBatchSize = 500

// entryUseCase implements EntryUseCase. A nil signer records unsigned
// entries; verification then refuses to run until a key is configured.
type entryUseCase struct {
	entryRepo EntryRepository
	signer    auditService.EntrySigner
}

// Record appends one dispatch outcome to the audit trail. Generates a UUIDv7
// identity and UTC timestamp, redacts sensitive metadata keys, signs the
// entry when a signing key is configured, and persists it. Redaction happens
// before signing so verification covers what is actually stored.
func (e *entryUseCase) Record(ctx context.Context, recordInput *RecordInput) error {
	entry := &auditDomain.Entry{
		ID:           uuid.Must(uuid.NewV7()),
		RequestID:    recordInput.RequestID,
		CredentialID: recordInput.CredentialID,
		ActionType:   recordInput.ActionType,
		Outcome:      recordInput.Outcome,
		DurationMS:   recordInput.DurationMS,
		Metadata:     httputil.Redact(recordInput.Metadata),
		// Microsecond precision matches the timestamp columns, so the entry in
		// hand equals the entry a later verification reads back.
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	if e.signer != nil {
		signature, err := e.signer.Sign(entry)
		if err != nil {
			return apperrors.Wrap(err, "failed to sign audit entry")
		}
		entry.Signature = signature
	}

	if err := e.entryRepo.Create(ctx, entry); err != nil {
		return apperrors.Wrap(err, "failed to record audit entry")
	}

	return nil
}

// List retrieves entries ordered by created_at descending with pagination and
// optional inclusive time filters, along with the total count of matching
// entries. Returns an empty slice if no entries match.
func (e *entryUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, int64, error) {
	entries, err := e.entryRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list audit entries")
	}

	total, err := e.entryRepo.Count(ctx, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count audit entries")
	}

	return entries, total, nil
}

// DeleteOlderThan removes entries older than the given number of days.
// When dryRun is true, reports the count without deleting.
func (e *entryUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must not be negative")
	}

	olderThan := time.Now().UTC().AddDate(0, 0, -days)

	count, err := e.entryRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit entries")
	}

	return count, nil
}

// VerifyBatch checks the signature of every entry created inside the given
// time range, paging through the repository until the range is exhausted.
// Unsigned entries are counted but never fail the run.
func (e *entryUseCase) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*VerificationReport, error) {
	if e.signer == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "audit signing key is not configured")
	}

	report := &VerificationReport{
		InvalidEntries: []uuid.UUID{},
	}

	offset := 0
	for {
		entries, err := e.entryRepo.List(ctx, offset, verifyBatchSize, &startTime, &endTime)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to load audit entries for verification")
		}

		for _, entry := range entries {
			report.TotalChecked++

			if !entry.IsSigned() {
				report.UnsignedCount++
				continue
			}

			report.SignedCount++
			if err := e.signer.Verify(entry); err != nil {
				if apperrors.Is(err, auditDomain.ErrSignatureInvalid) {
					report.InvalidCount++
					report.InvalidEntries = append(report.InvalidEntries, entry.ID)
					continue
				}
				return nil, apperrors.Wrap(err, "failed to verify audit entry signature")
			}
			report.ValidCount++
		}

		if len(entries) < verifyBatchSize {
			break
		}
		offset += verifyBatchSize
	}

	return report, nil
}

// NewEntryUseCase creates a new EntryUseCase. The signer may be nil, in which
// case entries are recorded unsigned and VerifyBatch is unavailable.
func NewEntryUseCase(entryRepo EntryRepository, signer auditService.EntrySigner) EntryUseCase {
	return &entryUseCase{
		entryRepo: entryRepo,
		signer:    signer,
	}
}
