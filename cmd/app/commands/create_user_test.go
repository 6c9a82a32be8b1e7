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

	userDomain "github.com/actiongate/actiongate/internal/user/domain"
	userUseCase "github.com/actiongate/actiongate/internal/user/usecase"
)

func TestRunCreateUser(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	userID := uuid.New()

	user := &userDomain.User{
		ID:        userID,
		Name:      "Alice Operator",
		Email:     "alice@example.com",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &mockUserUseCase{}
		mockUseCase.On("Create", ctx, userUseCase.CreateUserInput{
			Name:     "Alice Operator",
			Email:    "alice@example.com",
			Password: "s3cret-pass",
		}).Return(user, nil)

		var out bytes.Buffer
		io := IOTuple{Reader: nil, Writer: &out}

		err := RunCreateUser(ctx, mockUseCase, logger, io, "Alice Operator", "alice@example.com", "s3cret-pass", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "User created successfully!")
		require.Contains(t, out.String(), userID.String())
		require.Contains(t, out.String(), "alice@example.com")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &mockUserUseCase{}
		mockUseCase.On("Create", ctx, userUseCase.CreateUserInput{
			Name:     "Alice Operator",
			Email:    "alice@example.com",
			Password: "s3cret-pass",
		}).Return(user, nil)

		var out bytes.Buffer
		io := IOTuple{Reader: nil, Writer: &out}

		err := RunCreateUser(ctx, mockUseCase, logger, io, "Alice Operator", "alice@example.com", "s3cret-pass", "json")
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, userID.String(), result["user_id"])
		require.Equal(t, "alice@example.com", result["email"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("interactive-password", func(t *testing.T) {
		mockUseCase := &mockUserUseCase{}
		mockUseCase.On("Create", ctx, userUseCase.CreateUserInput{
			Name:     "Alice Operator",
			Email:    "alice@example.com",
			Password: "prompted-pass",
		}).Return(user, nil)

		var out bytes.Buffer
		io := IOTuple{
			Reader: bytes.NewBufferString("prompted-pass\n"),
			Writer: &out,
		}

		err := RunCreateUser(ctx, mockUseCase, logger, io, "Alice Operator", "alice@example.com", "", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Enter password: ")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty-interactive-password", func(t *testing.T) {
		mockUseCase := &mockUserUseCase{}

		var out bytes.Buffer
		io := IOTuple{
			Reader: bytes.NewBufferString("\n"),
			Writer: &out,
		}

		err := RunCreateUser(ctx, mockUseCase, logger, io, "Alice Operator", "alice@example.com", "", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "password cannot be empty")
	})
}
