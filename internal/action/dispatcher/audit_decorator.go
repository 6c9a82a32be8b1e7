package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
	auditUseCase "github.com/actiongate/actiongate/internal/audit/usecase"
)

// dispatcherWithAudit wraps a Dispatcher and records every dispatch outcome
// in the audit trail. Recording failures are logged and swallowed; the
// client's response never depends on the audit write.
type dispatcherWithAudit struct {
	next   Dispatcher
	audit  auditUseCase.EntryUseCase
	logger *slog.Logger
}

func (d *dispatcherWithAudit) Dispatch(ctx context.Context, request *actionDomain.Request) *Result {
	result := d.next.Dispatch(ctx, request)

	outcome := auditDomain.OutcomeSuccess
	if result.ErrorCode != "" {
		outcome = auditDomain.FailureOutcome(result.ErrorCode)
	}

	var credentialID *uuid.UUID
	if request.Credential != nil {
		credentialID = &request.Credential.ID
	}

	var durationMS int64
	if !request.StartedAt.IsZero() {
		durationMS = time.Since(request.StartedAt).Milliseconds()
	}

	recordInput := &auditUseCase.RecordInput{
		RequestID:    request.RequestID,
		CredentialID: credentialID,
		ActionType:   result.ActionType,
		Outcome:      outcome,
		DurationMS:   durationMS,
		Metadata:     result.Metadata,
	}

	// The entry must be written even when the request context is already
	// canceled; the dispatch outcome happened either way.
	if err := d.audit.Record(context.WithoutCancel(ctx), recordInput); err != nil {
		d.logger.Error("failed to record audit entry",
			slog.String("request_id", request.RequestID),
			slog.String("action_type", result.ActionType),
			slog.String("outcome", string(outcome)),
			slog.Any("error", err),
		)
	}

	return result
}

// NewDispatcherWithAudit wraps a Dispatcher with audit trail recording.
func NewDispatcherWithAudit(next Dispatcher, audit auditUseCase.EntryUseCase, logger *slog.Logger) Dispatcher {
	return &dispatcherWithAudit{
		next:   next,
		audit:  audit,
		logger: logger,
	}
}
