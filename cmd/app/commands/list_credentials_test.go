package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
)

func TestRunListCredentials(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	credentials := []*authDomain.Credential{
		{
			ID:           uuid.New(),
			UserID:       uuid.New(),
			Name:         "ci-deploy",
			Capabilities: []authDomain.Capability{authDomain.ReadCapability, authDomain.WriteCapability},
			IsActive:     true,
			ExpiresAt:    &expiry,
			CreatedAt:    time.Now().UTC(),
		},
		{
			ID:           uuid.New(),
			UserID:       uuid.New(),
			Name:         "revoked-bot",
			Capabilities: []authDomain.Capability{authDomain.ReadCapability},
			IsActive:     false,
			CreatedAt:    time.Now().UTC(),
		},
	}

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("List", ctx, 0, 50).Return(credentials, int64(2), nil)

		var out bytes.Buffer
		err := RunListCredentials(ctx, mockUseCase, logger, &out, 1, 50, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "ci-deploy")
		require.Contains(t, out.String(), "Status: active")
		require.Contains(t, out.String(), "Status: revoked")
		require.Contains(t, out.String(), "Expires: 2026-03-01 12:00:00")
		require.NotContains(t, out.String(), "token")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("List", ctx, 50, 50).Return(credentials, int64(102), nil)

		var out bytes.Buffer
		err := RunListCredentials(ctx, mockUseCase, logger, &out, 2, 50, "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(2), result["page"])
		require.Equal(t, float64(102), result["total"])
		rows := result["credentials"].([]any)
		require.Len(t, rows, 2)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("List", ctx, 0, 50).Return([]*authDomain.Credential{}, int64(0), nil)

		var out bytes.Buffer
		err := RunListCredentials(ctx, mockUseCase, logger, &out, 1, 50, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "No credentials found")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("normalizes-page-params", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("List", ctx, 0, 50).Return([]*authDomain.Credential{}, int64(0), nil)

		var out bytes.Buffer
		err := RunListCredentials(ctx, mockUseCase, logger, &out, -5, 0, "text")
		require.NoError(t, err)
		mockUseCase.AssertExpectations(t)
	})
}
