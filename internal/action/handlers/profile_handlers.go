package handlers

import (
	"context"
	"encoding/json"
	"time"

	validation "github.com/jellydator/validation"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	userDomain "github.com/actiongate/actiongate/internal/user/domain"
	userUseCase "github.com/actiongate/actiongate/internal/user/usecase"
	appvalidation "github.com/actiongate/actiongate/internal/validation"
)

// profileResponse is the owner account view returned by profile actions.
// The password hash never leaves the domain.
type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func mapUserToProfile(user *userDomain.User) profileResponse {
	return profileResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// profileGetHandler returns the calling credential's owner profile. No
// capability requirement: every authenticated caller may see its own account.
type profileGetHandler struct {
	users userUseCase.UserUseCase
}

func (h *profileGetHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "profile.get",
		Version:     "1.0.0",
		Description: "Returns the authenticated credential's owner profile.",
		Examples: []actionDomain.Example{{
			Name:    "own profile",
			Request: map[string]any{"action_type": "profile.get"},
		}},
	}
}

func (h *profileGetHandler) Validate(params json.RawMessage) error {
	return nil
}

func (h *profileGetHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	user, err := h.users.Get(ctx, request.Credential.UserID)
	if err != nil {
		return nil, err
	}
	return mapUserToProfile(user), nil
}

func (h *profileGetHandler) RequiredCapabilities() []authDomain.Capability {
	return nil
}

type updateProfileParams struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p updateProfileParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name,
			validation.Required.Error("name is required"),
			appvalidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&p.Email,
			validation.Required.Error("email is required"),
			appvalidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
	)
}

type profileUpdateHandler struct {
	users userUseCase.UserUseCase
}

func (h *profileUpdateHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "profile.update",
		Version:     "1.0.0",
		Description: "Updates the owner account's display name and email address.",
		Parameters: []actionDomain.ParameterDoc{
			{Name: "name", Type: "string", Required: true, Description: "display name, 1-255 characters"},
			{Name: "email", Type: "string", Required: true, Description: "email address"},
		},
		Examples: []actionDomain.Example{{
			Name:    "rename",
			Request: map[string]any{"action_type": "profile.update", "name": "Ada", "email": "ada@example.com"},
		}},
	}
}

func (h *profileUpdateHandler) Validate(params json.RawMessage) error {
	var p updateProfileParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	return p.Validate()
}

func (h *profileUpdateHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p updateProfileParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}

	user, err := h.users.UpdateProfile(ctx, request.Credential.UserID, userUseCase.UpdateProfileInput{
		Name:  p.Name,
		Email: p.Email,
	})
	if err != nil {
		return nil, err
	}

	return &actionDomain.Envelope{
		Data:    mapUserToProfile(user),
		Message: "profile updated",
	}, nil
}

func (h *profileUpdateHandler) RequiredCapabilities() []authDomain.Capability {
	return nil
}

type changePasswordParams struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (p changePasswordParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentPassword,
			validation.Required.Error("current_password is required"),
		),
		validation.Field(&p.NewPassword,
			validation.Required.Error("new_password is required"),
			validation.Length(8, 128).Error("new_password must be between 8 and 128 characters"),
			appvalidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
}

type changePasswordHandler struct {
	users userUseCase.UserUseCase
}

func (h *changePasswordHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "profile.change_password",
		Version:     "1.0.0",
		Description: "Verifies the current password and replaces it with a new one.",
		Parameters: []actionDomain.ParameterDoc{
			{Name: "current_password", Type: "string", Required: true, Description: "password currently on the account"},
			{Name: "new_password", Type: "string", Required: true, Description: "replacement password, 8-128 characters with mixed case, number, and symbol"},
		},
		Examples: []actionDomain.Example{{
			Name:    "rotate",
			Request: map[string]any{"action_type": "profile.change_password", "current_password": "...", "new_password": "..."},
		}},
	}
}

func (h *changePasswordHandler) Validate(params json.RawMessage) error {
	var p changePasswordParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	return p.Validate()
}

func (h *changePasswordHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p changePasswordParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}

	err := h.users.ChangePassword(ctx, request.Credential.UserID, userUseCase.ChangePasswordInput{
		CurrentPassword: p.CurrentPassword,
		NewPassword:     p.NewPassword,
	})
	if err != nil {
		return nil, err
	}

	return &actionDomain.Envelope{
		Data:    map[string]any{"changed": true},
		Message: "password changed",
	}, nil
}

func (h *changePasswordHandler) RequiredCapabilities() []authDomain.Capability {
	return nil
}

func newProfileGetHandler(users userUseCase.UserUseCase) *profileGetHandler {
	return &profileGetHandler{users: users}
}

func newProfileUpdateHandler(users userUseCase.UserUseCase) *profileUpdateHandler {
	return &profileUpdateHandler{users: users}
}

func newChangePasswordHandler(users userUseCase.UserUseCase) *changePasswordHandler {
	return &changePasswordHandler{users: users}
}
