package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
)

func TestRunGetOverride(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	override := &permissionDomain.Override{
		ID:           uuid.Must(uuid.NewV7()),
		ActionType:   "users.create",
		Capabilities: []authDomain.Capability{authDomain.AdminCapability},
		IsActive:     true,
		Description:  "locked down during incident review",
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC),
	}

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &mockOverrideUseCase{}
		mockUseCase.On("Get", ctx, "users.create").Return(override, nil)

		var out bytes.Buffer
		err := RunGetOverride(ctx, mockUseCase, logger, &out, "users.create", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Override for users.create")
		require.Contains(t, out.String(), "Status: active")
		require.Contains(t, out.String(), "locked down during incident review")
		require.Contains(t, out.String(), "2026-03-02T11:30:00Z")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &mockOverrideUseCase{}
		mockUseCase.On("Get", ctx, "users.create").Return(override, nil)

		var out bytes.Buffer
		err := RunGetOverride(ctx, mockUseCase, logger, &out, "users.create", "json")
		require.NoError(t, err)
		require.Contains(t, out.String(), `"action_type": "users.create"`)
		require.Contains(t, out.String(), `"is_active": true`)
		require.Contains(t, out.String(), `"created_at": "2026-03-01T10:00:00Z"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("not-found", func(t *testing.T) {
		mockUseCase := &mockOverrideUseCase{}
		mockUseCase.On("Get", ctx, "unknown.action").Return(nil, permissionDomain.ErrOverrideNotFound)

		err := RunGetOverride(ctx, mockUseCase, logger, &bytes.Buffer{}, "unknown.action", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to get override")
	})
}
