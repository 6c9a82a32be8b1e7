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
)

func TestRunGetCredential(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	credentialID := uuid.Must(uuid.NewV7())
	lastUsed := time.Date(2026, 4, 10, 9, 15, 0, 0, time.UTC)
	credential := &authDomain.Credential{
		ID:           credentialID,
		UserID:       uuid.Must(uuid.NewV7()),
		TokenHash:    "deadbeef",
		Name:         "ci-deployer",
		Capabilities: []authDomain.Capability{authDomain.ReadCapability, authDomain.WriteCapability},
		IsActive:     true,
		LastUsedAt:   &lastUsed,
		CreatedAt:    time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
	}

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("Get", ctx, credentialID).Return(credential, nil)

		var out bytes.Buffer
		err := RunGetCredential(ctx, mockUseCase, logger, &out, credentialID.String(), "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Credential ci-deployer")
		require.Contains(t, out.String(), "Status: active")
		require.Contains(t, out.String(), "Expires At: never")
		require.Contains(t, out.String(), "Last Used: 2026-04-10 09:15:00")
		require.NotContains(t, out.String(), "deadbeef", "token hash must never be printed")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("Get", ctx, credentialID).Return(credential, nil)

		var out bytes.Buffer
		err := RunGetCredential(ctx, mockUseCase, logger, &out, credentialID.String(), "json")
		require.NoError(t, err)
		require.Contains(t, out.String(), `"name": "ci-deployer"`)
		require.Contains(t, out.String(), `"last_used_at": "2026-04-10T09:15:00Z"`)
		require.NotContains(t, out.String(), "deadbeef", "token hash must never be printed")
		require.NotContains(t, out.String(), "token_hash")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-id", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}

		err := RunGetCredential(ctx, mockUseCase, logger, &bytes.Buffer{}, "not-a-uuid", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid credential id")
		mockUseCase.AssertNotCalled(t, "Get")
	})

	t.Run("not-found", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("Get", ctx, credentialID).Return(nil, authDomain.ErrCredentialNotFound)

		err := RunGetCredential(ctx, mockUseCase, logger, &bytes.Buffer{}, credentialID.String(), "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to get credential")
	})
}
