package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	appvalidation "github.com/actiongate/actiongate/internal/validation"
)

// credentialResponse is the API view of a credential. The token hash is
// deliberately absent: no read path ever returns token material.
type credentialResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Capabilities []string   `json:"capabilities"`
	IsActive     bool       `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func mapCredential(credential *authDomain.Credential) credentialResponse {
	return credentialResponse{
		ID:           credential.ID.String(),
		UserID:       credential.UserID.String(),
		Name:         credential.Name,
		Capabilities: capabilityValues(credential.Capabilities),
		IsActive:     credential.IsActive,
		ExpiresAt:    credential.ExpiresAt,
		LastUsedAt:   credential.LastUsedAt,
		CreatedAt:    credential.CreatedAt,
		UpdatedAt:    credential.UpdatedAt,
	}
}

// createdCredentialResponse extends the credential view with the plain
// token. Returned exactly once, at issuance.
type createdCredentialResponse struct {
	credentialResponse
	Token string `json:"token"`
}

type credentialListHandler struct {
	credentials authUseCase.CredentialUseCase
}

func (h *credentialListHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "credentials.list",
		Version:     "1.0.0",
		Description: "Lists credentials, newest first. Token hashes are never included.",
		Parameters:  pageParameterDocs,
		Examples: []actionDomain.Example{{
			Name:    "first page",
			Request: map[string]any{"action_type": "credentials.list", "page": 1, "per_page": 50},
		}},
	}
}

func (h *credentialListHandler) Validate(params json.RawMessage) error {
	var p pageParams
	return decodeParams(params, &p)
}

func (h *credentialListHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p pageParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}
	page, perPage, offset := p.window()

	credentials, total, err := h.credentials.List(ctx, offset, perPage)
	if err != nil {
		return nil, err
	}

	items := make([]credentialResponse, 0, len(credentials))
	for _, credential := range credentials {
		items = append(items, mapCredential(credential))
	}

	return &actionDomain.Envelope{
		Data:       items,
		Pagination: &actionDomain.PageInfo{Page: page, PerPage: perPage, Total: total},
	}, nil
}

func (h *credentialListHandler) RequiredCapabilities() []authDomain.Capability {
	return adminOnly
}

type createCredentialParams struct {
	UserID       string   `json:"user_id"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

func (p createCredentialParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.UserID,
			validation.Required.Error("user_id is required"),
			uuidParam,
		),
		validation.Field(&p.Name,
			validation.Required.Error("name is required"),
			appvalidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&p.Capabilities,
			validation.Each(validation.In(capabilityNames...).Error("must be one of read, write, delete, admin")),
		),
	)
}

type credentialCreateHandler struct {
	credentials authUseCase.CredentialUseCase
}

func (h *credentialCreateHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "credentials.create",
		Version:     "1.0.0",
		Description: "Issues a credential for a user. The plain bearer token appears in this response once and is never retrievable again.",
		Parameters: []actionDomain.ParameterDoc{
			{Name: "user_id", Type: "string", Required: true, Description: "owning user account id"},
			{Name: "name", Type: "string", Required: true, Description: "unique credential name"},
			{Name: "capabilities", Type: "array", Description: "granted capabilities; empty means the configured default set"},
		},
		Examples: []actionDomain.Example{{
			Name: "read-only credential",
			Request: map[string]any{
				"action_type":  "credentials.create",
				"user_id":      "018f2b3a-0000-7000-8000-000000000000",
				"name":         "ci-reader",
				"capabilities": []string{"read"},
			},
		}},
	}
}

func (h *credentialCreateHandler) Validate(params json.RawMessage) error {
	var p createCredentialParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	return p.Validate()
}

func (h *credentialCreateHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p createCredentialParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "user_id must be a valid UUID")
	}

	output, err := h.credentials.Create(ctx, &authDomain.CreateCredentialInput{
		UserID:       userID,
		Name:         p.Name,
		Capabilities: toCapabilities(p.Capabilities),
	})
	if err != nil {
		return nil, err
	}

	return &actionDomain.Envelope{
		Data: createdCredentialResponse{
			credentialResponse: mapCredential(output.Credential),
			Token:              output.PlainToken,
		},
		Message: "credential created; the token is shown only this once",
	}, nil
}

func (h *credentialCreateHandler) RequiredCapabilities() []authDomain.Capability {
	return adminOnly
}

type revokeCredentialParams struct {
	CredentialID string `json:"credential_id"`
}

func (p revokeCredentialParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CredentialID,
			validation.Required.Error("credential_id is required"),
			uuidParam,
		),
	)
}

type credentialRevokeHandler struct {
	credentials authUseCase.CredentialUseCase
}

func (h *credentialRevokeHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "credentials.revoke",
		Version:     "1.0.0",
		Description: "Deactivates a credential. The record is kept for audit history.",
		Parameters: []actionDomain.ParameterDoc{
			{Name: "credential_id", Type: "string", Required: true, Description: "credential to revoke"},
		},
		Examples: []actionDomain.Example{{
			Name: "revoke",
			Request: map[string]any{
				"action_type":   "credentials.revoke",
				"credential_id": "018f2b3a-0000-7000-8000-000000000000",
			},
		}},
	}
}

func (h *credentialRevokeHandler) Validate(params json.RawMessage) error {
	var p revokeCredentialParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	return p.Validate()
}

func (h *credentialRevokeHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p revokeCredentialParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}

	credentialID, err := uuid.Parse(p.CredentialID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "credential_id must be a valid UUID")
	}

	if err := h.credentials.Revoke(ctx, credentialID); err != nil {
		return nil, err
	}

	return &actionDomain.Envelope{
		Data:    map[string]any{"credential_id": p.CredentialID, "revoked": true},
		Message: "credential revoked",
	}, nil
}

func (h *credentialRevokeHandler) RequiredCapabilities() []authDomain.Capability {
	return adminOnly
}

func newCredentialListHandler(credentials authUseCase.CredentialUseCase) *credentialListHandler {
	return &credentialListHandler{credentials: credentials}
}

func newCredentialCreateHandler(credentials authUseCase.CredentialUseCase) *credentialCreateHandler {
	return &credentialCreateHandler{credentials: credentials}
}

func newCredentialRevokeHandler(credentials authUseCase.CredentialUseCase) *credentialRevokeHandler {
	return &credentialRevokeHandler{credentials: credentials}
}
