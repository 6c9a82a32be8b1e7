package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
)

func storedOverride(actionType string, capabilities ...authDomain.Capability) *permissionDomain.Override {
	now := time.Now().UTC()
	return &permissionDomain.Override{
		ID:           uuid.Must(uuid.NewV7()),
		ActionType:   actionType,
		Capabilities: capabilities,
		IsActive:     true,
		Description:  "test override",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestOverrideListHandler(t *testing.T) {
	t.Run("Success_Paginated", func(t *testing.T) {
		override := storedOverride("credentials.create", authDomain.AdminCapability)

		mockOverrides := new(mockOverrideUseCase)
		mockOverrides.On("List", mock.Anything, 0, 50).
			Return([]*permissionDomain.Override{override}, int64(1), nil)

		handler := newOverrideListHandler(mockOverrides)
		data, err := handler.Execute(context.Background(),
			execRequest(testCredential(authDomain.AdminCapability), `{"action_type":"permissions.list"}`))
		require.NoError(t, err)

		envelope, ok := data.(*actionDomain.Envelope)
		require.True(t, ok)
		require.NotNil(t, envelope.Pagination)
		assert.Equal(t, int64(1), envelope.Pagination.Total)

		items, ok := envelope.Data.([]overrideResponse)
		require.True(t, ok)
		require.Len(t, items, 1)
		assert.Equal(t, "credentials.create", items[0].ActionType)
		assert.Equal(t, []string{"admin"}, items[0].Capabilities)

		mockOverrides.AssertExpectations(t)
	})
}

func TestOverrideSetHandler(t *testing.T) {
	t.Run("Success_ActiveByDefault", func(t *testing.T) {
		override := storedOverride("credentials.create", authDomain.AdminCapability)

		mockOverrides := new(mockOverrideUseCase)
		mockOverrides.On("Set", mock.Anything, &permissionDomain.SetOverrideInput{
			ActionType:   "credentials.create",
			Capabilities: []authDomain.Capability{authDomain.AdminCapability},
			IsActive:     true,
			Description:  "incident lockdown",
		}).Return(override, nil)

		handler := newOverrideSetHandler(mockOverrides)
		data, err := handler.Execute(context.Background(), execRequest(testCredential(authDomain.AdminCapability),
			`{"action_type":"permissions.set","target_action_type":"credentials.create","capabilities":["admin"],"description":"incident lockdown"}`))
		require.NoError(t, err)

		envelope, ok := data.(*actionDomain.Envelope)
		require.True(t, ok)
		assert.Equal(t, "permission override set", envelope.Message)
		assert.Equal(t, "credentials.create", envelope.Data.(overrideResponse).ActionType)

		mockOverrides.AssertExpectations(t)
	})

	t.Run("Success_ExplicitlyInactive", func(t *testing.T) {
		override := storedOverride("audit.list")
		override.IsActive = false

		mockOverrides := new(mockOverrideUseCase)
		mockOverrides.On("Set", mock.Anything, mock.MatchedBy(func(input *permissionDomain.SetOverrideInput) bool {
			return input.ActionType == "audit.list" && !input.IsActive
		})).Return(override, nil)

		handler := newOverrideSetHandler(mockOverrides)
		_, err := handler.Execute(context.Background(), execRequest(testCredential(authDomain.AdminCapability),
			`{"action_type":"permissions.set","target_action_type":"audit.list","is_active":false}`))
		require.NoError(t, err)

		mockOverrides.AssertExpectations(t)
	})

	t.Run("Error_MissingTarget", func(t *testing.T) {
		handler := newOverrideSetHandler(new(mockOverrideUseCase))

		err := handler.Validate([]byte(`{"capabilities":["admin"]}`))
		require.Error(t, err)

		var fieldErrors validation.Errors
		require.ErrorAs(t, err, &fieldErrors)
		assert.Contains(t, fieldErrors, "target_action_type")
	})

	t.Run("Error_MalformedTarget", func(t *testing.T) {
		handler := newOverrideSetHandler(new(mockOverrideUseCase))

		err := handler.Validate([]byte(`{"target_action_type":"Not.An.Identifier!"}`))
		require.Error(t, err)

		var fieldErrors validation.Errors
		require.ErrorAs(t, err, &fieldErrors)
		assert.Contains(t, fieldErrors, "target_action_type")
	})

	t.Run("Error_UnknownCapability", func(t *testing.T) {
		handler := newOverrideSetHandler(new(mockOverrideUseCase))

		err := handler.Validate([]byte(`{"target_action_type":"audit.list","capabilities":["superuser"]}`))
		require.Error(t, err)

		var fieldErrors validation.Errors
		require.ErrorAs(t, err, &fieldErrors)
		assert.Contains(t, fieldErrors, "capabilities")
	})
}

func TestOverrideDeleteHandler(t *testing.T) {
	t.Run("Success_Deletes", func(t *testing.T) {
		mockOverrides := new(mockOverrideUseCase)
		mockOverrides.On("Delete", mock.Anything, "credentials.create").Return(nil)

		handler := newOverrideDeleteHandler(mockOverrides)
		data, err := handler.Execute(context.Background(), execRequest(testCredential(authDomain.AdminCapability),
			`{"action_type":"permissions.delete","target_action_type":"credentials.create"}`))
		require.NoError(t, err)

		envelope, ok := data.(*actionDomain.Envelope)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"target_action_type": "credentials.create", "deleted": true}, envelope.Data)

		mockOverrides.AssertExpectations(t)
	})

	t.Run("Error_NoOverrideExists", func(t *testing.T) {
		mockOverrides := new(mockOverrideUseCase)
		mockOverrides.On("Delete", mock.Anything, "system.ping").Return(permissionDomain.ErrOverrideNotFound)

		handler := newOverrideDeleteHandler(mockOverrides)
		_, err := handler.Execute(context.Background(), execRequest(testCredential(authDomain.AdminCapability),
			`{"action_type":"permissions.delete","target_action_type":"system.ping"}`))
		assert.ErrorIs(t, err, permissionDomain.ErrOverrideNotFound)
	})

	t.Run("Error_MissingTarget", func(t *testing.T) {
		handler := newOverrideDeleteHandler(new(mockOverrideUseCase))

		err := handler.Validate([]byte(`{}`))
		require.Error(t, err)

		var fieldErrors validation.Errors
		require.ErrorAs(t, err, &fieldErrors)
		assert.Contains(t, fieldErrors, "target_action_type")
	})
}
