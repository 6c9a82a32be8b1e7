package handlers

import (
	"context"
	"encoding/json"
	"time"

	validation "github.com/jellydator/validation"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
	auditUseCase "github.com/actiongate/actiongate/internal/audit/usecase"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// auditEntryResponse is the API view of one audit entry. The signature is
// reported as a presence flag only; raw signature bytes stay server-side.
type auditEntryResponse struct {
	ID           string         `json:"id"`
	RequestID    string         `json:"request_id"`
	CredentialID *string        `json:"credential_id,omitempty"`
	ActionType   string         `json:"action_type,omitempty"`
	Outcome      string         `json:"outcome"`
	DurationMS   int64          `json:"duration_ms"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Signed       bool           `json:"signed"`
	CreatedAt    time.Time      `json:"created_at"`
}

func mapAuditEntry(entry *auditDomain.Entry) auditEntryResponse {
	response := auditEntryResponse{
		ID:         entry.ID.String(),
		RequestID:  entry.RequestID,
		ActionType: entry.ActionType,
		Outcome:    string(entry.Outcome),
		DurationMS: entry.DurationMS,
		Metadata:   entry.Metadata,
		Signed:     entry.IsSigned(),
		CreatedAt:  entry.CreatedAt,
	}
	if entry.CredentialID != nil {
		id := entry.CredentialID.String()
		response.CredentialID = &id
	}
	return response
}

type auditListParams struct {
	pageParams
	CreatedAtFrom string `json:"created_at_from"`
	CreatedAtTo   string `json:"created_at_to"`
}

func (p auditListParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CreatedAtFrom,
			validation.Date(time.RFC3339).Error("must be an RFC3339 timestamp (e.g. 2026-02-01T00:00:00Z)"),
		),
		validation.Field(&p.CreatedAtTo,
			validation.Date(time.RFC3339).Error("must be an RFC3339 timestamp (e.g. 2026-02-14T23:59:59Z)"),
		),
	)
}

// bounds parses the optional time filters. Both boundaries are inclusive and
// normalized to UTC; nil means unbounded on that side.
func (p auditListParams) bounds() (from, to *time.Time, err error) {
	if p.CreatedAtFrom != "" {
		parsed, err := time.Parse(time.RFC3339, p.CreatedAtFrom)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, "created_at_from must be an RFC3339 timestamp")
		}
		utc := parsed.UTC()
		from = &utc
	}
	if p.CreatedAtTo != "" {
		parsed, err := time.Parse(time.RFC3339, p.CreatedAtTo)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, "created_at_to must be an RFC3339 timestamp")
		}
		utc := parsed.UTC()
		to = &utc
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, "created_at_from must be before or equal to created_at_to")
	}
	return from, to, nil
}

// auditListHandler pages through the audit trail, newest first.
type auditListHandler struct {
	audit auditUseCase.EntryUseCase
}

func (h *auditListHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "audit.list",
		Version:     "1.0.0",
		Description: "Lists audit entries newest first, optionally bounded by an inclusive created_at range.",
		Parameters: append([]actionDomain.ParameterDoc{
			{Name: "created_at_from", Type: "string", Description: "inclusive lower bound, RFC3339"},
			{Name: "created_at_to", Type: "string", Description: "inclusive upper bound, RFC3339"},
		}, pageParameterDocs...),
		Examples: []actionDomain.Example{{
			Name: "one day of entries",
			Request: map[string]any{
				"action_type":     "audit.list",
				"created_at_from": "2026-02-01T00:00:00Z",
				"created_at_to":   "2026-02-01T23:59:59Z",
			},
		}},
	}
}

func (h *auditListHandler) Validate(params json.RawMessage) error {
	var p auditListParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	return p.Validate()
}

func (h *auditListHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p auditListParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}
	page, perPage, offset := p.window()

	from, to, err := p.bounds()
	if err != nil {
		return nil, err
	}

	entries, total, err := h.audit.List(ctx, offset, perPage, from, to)
	if err != nil {
		return nil, err
	}

	items := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, mapAuditEntry(entry))
	}

	return &actionDomain.Envelope{
		Data:       items,
		Pagination: &actionDomain.PageInfo{Page: page, PerPage: perPage, Total: total},
	}, nil
}

func (h *auditListHandler) RequiredCapabilities() []authDomain.Capability {
	return adminOnly
}

func newAuditListHandler(audit auditUseCase.EntryUseCase) *auditListHandler {
	return &auditListHandler{audit: audit}
}
