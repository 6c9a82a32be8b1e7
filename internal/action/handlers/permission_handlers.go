package handlers

import (
	"context"
	"encoding/json"
	"time"

	validation "github.com/jellydator/validation"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
	permissionUseCase "github.com/actiongate/actiongate/internal/permission/usecase"
	appvalidation "github.com/actiongate/actiongate/internal/validation"
)

// overrideResponse is the API view of a permission override.
type overrideResponse struct {
	ID           string    `json:"id"`
	ActionType   string    `json:"action_type"`
	Capabilities []string  `json:"capabilities"`
	IsActive     bool      `json:"is_active"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func mapOverride(override *permissionDomain.Override) overrideResponse {
	return overrideResponse{
		ID:           override.ID.String(),
		ActionType:   override.ActionType,
		Capabilities: capabilityValues(override.Capabilities),
		IsActive:     override.IsActive,
		Description:  override.Description,
		CreatedAt:    override.CreatedAt,
		UpdatedAt:    override.UpdatedAt,
	}
}

type overrideListHandler struct {
	overrides permissionUseCase.OverrideUseCase
}

func (h *overrideListHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "permissions.list",
		Version:     "1.0.0",
		Description: "Lists permission overrides ordered by action type.",
		Parameters:  pageParameterDocs,
		Examples: []actionDomain.Example{{
			Name:    "first page",
			Request: map[string]any{"action_type": "permissions.list", "page": 1, "per_page": 50},
		}},
	}
}

func (h *overrideListHandler) Validate(params json.RawMessage) error {
	var p pageParams
	return decodeParams(params, &p)
}

func (h *overrideListHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p pageParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}
	page, perPage, offset := p.window()

	overrides, total, err := h.overrides.List(ctx, offset, perPage)
	if err != nil {
		return nil, err
	}

	items := make([]overrideResponse, 0, len(overrides))
	for _, override := range overrides {
		items = append(items, mapOverride(override))
	}

	return &actionDomain.Envelope{
		Data:       items,
		Pagination: &actionDomain.PageInfo{Page: page, PerPage: perPage, Total: total},
	}, nil
}

func (h *overrideListHandler) RequiredCapabilities() []authDomain.Capability {
	return adminOnly
}

type setOverrideParams struct {
	TargetActionType string   `json:"target_action_type"`
	Capabilities     []string `json:"capabilities"`
	IsActive         *bool    `json:"is_active"`
	Description      string   `json:"description"`
}

func (p setOverrideParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.TargetActionType,
			validation.Required.Error("target_action_type is required"),
			appvalidation.ActionType,
		),
		validation.Field(&p.Capabilities,
			validation.Each(validation.In(capabilityNames...).Error("must be one of read, write, delete, admin")),
		),
		validation.Field(&p.Description,
			validation.Length(0, 1024).Error("description must be at most 1024 characters"),
		),
	)
}

// overrideSetHandler creates or replaces the override for an action. The
// capability list replaces the previous value wholesale; an omitted is_active
// defaults to true so setting an override activates it.
type overrideSetHandler struct {
	overrides permissionUseCase.OverrideUseCase
}

func (h *overrideSetHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "permissions.set",
		Version:     "1.0.0",
		Description: "Creates or replaces the permission override for an action. The override's capability list supersedes the action's declared defaults while it is active.",
		Parameters: []actionDomain.ParameterDoc{
			{Name: "target_action_type", Type: "string", Required: true, Description: "action the override applies to"},
			{Name: "capabilities", Type: "array", Description: "replacement required-capability list; empty makes the action public to any authenticated caller"},
			{Name: "is_active", Type: "boolean", Description: "whether the override is applied, default true"},
			{Name: "description", Type: "string", Description: "operator note explaining the override"},
		},
		Examples: []actionDomain.Example{{
			Name: "lock down credential issuance",
			Request: map[string]any{
				"action_type":        "permissions.set",
				"target_action_type": "credentials.create",
				"capabilities":       []string{"admin"},
				"description":        "restrict issuance during incident review",
			},
		}},
	}
}

func (h *overrideSetHandler) Validate(params json.RawMessage) error {
	var p setOverrideParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	return p.Validate()
}

func (h *overrideSetHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p setOverrideParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}

	isActive := true
	if p.IsActive != nil {
		isActive = *p.IsActive
	}

	override, err := h.overrides.Set(ctx, &permissionDomain.SetOverrideInput{
		ActionType:   p.TargetActionType,
		Capabilities: toCapabilities(p.Capabilities),
		IsActive:     isActive,
		Description:  p.Description,
	})
	if err != nil {
		return nil, err
	}

	return &actionDomain.Envelope{
		Data:    mapOverride(override),
		Message: "permission override set",
	}, nil
}

func (h *overrideSetHandler) RequiredCapabilities() []authDomain.Capability {
	return adminOnly
}

type deleteOverrideParams struct {
	TargetActionType string `json:"target_action_type"`
}

func (p deleteOverrideParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.TargetActionType,
			validation.Required.Error("target_action_type is required"),
			appvalidation.ActionType,
		),
	)
}

type overrideDeleteHandler struct {
	overrides permissionUseCase.OverrideUseCase
}

func (h *overrideDeleteHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "permissions.delete",
		Version:     "1.0.0",
		Description: "Deletes the permission override for an action, reverting it to its declared capability defaults.",
		Parameters: []actionDomain.ParameterDoc{
			{Name: "target_action_type", Type: "string", Required: true, Description: "action whose override is removed"},
		},
		Examples: []actionDomain.Example{{
			Name: "revert to defaults",
			Request: map[string]any{
				"action_type":        "permissions.delete",
				"target_action_type": "credentials.create",
			},
		}},
	}
}

func (h *overrideDeleteHandler) Validate(params json.RawMessage) error {
	var p deleteOverrideParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	return p.Validate()
}

func (h *overrideDeleteHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p deleteOverrideParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}

	if err := h.overrides.Delete(ctx, p.TargetActionType); err != nil {
		return nil, err
	}

	return &actionDomain.Envelope{
		Data:    map[string]any{"target_action_type": p.TargetActionType, "deleted": true},
		Message: "permission override deleted; declared defaults apply again",
	}, nil
}

func (h *overrideDeleteHandler) RequiredCapabilities() []authDomain.Capability {
	return adminOnly
}

func newOverrideListHandler(overrides permissionUseCase.OverrideUseCase) *overrideListHandler {
	return &overrideListHandler{overrides: overrides}
}

func newOverrideSetHandler(overrides permissionUseCase.OverrideUseCase) *overrideSetHandler {
	return &overrideSetHandler{overrides: overrides}
}

func newOverrideDeleteHandler(overrides permissionUseCase.OverrideUseCase) *overrideDeleteHandler {
	return &overrideDeleteHandler{overrides: overrides}
}
