package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// createTestOverride creates an Override instance for testing.
func createTestOverride(actionType string) *Override {
	now := time.Now().UTC()
	return &Override{
		ID:           uuid.Must(uuid.NewV7()),
		ActionType:   actionType,
		Capabilities: []authDomain.Capability{authDomain.AdminCapability},
		IsActive:     true,
		Description:  "locked down during incident review",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestOverride_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Override)
		wantErr bool
	}{
		{
			name:    "Success_ValidOverride",
			mutate:  func(o *Override) {},
			wantErr: false,
		},
		{
			name:    "Success_EmptyCapabilities_MakesActionPublic",
			mutate:  func(o *Override) { o.Capabilities = nil },
			wantErr: false,
		},
		{
			name:    "Success_EmptyDescription",
			mutate:  func(o *Override) { o.Description = "" },
			wantErr: false,
		},
		{
			name:    "Error_MissingActionType",
			mutate:  func(o *Override) { o.ActionType = "" },
			wantErr: true,
		},
		{
			name:    "Error_MalformedActionType",
			mutate:  func(o *Override) { o.ActionType = "Not-An-Action" },
			wantErr: true,
		},
		{
			name:    "Error_UnknownCapability",
			mutate:  func(o *Override) { o.Capabilities = []authDomain.Capability{"superuser"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override := createTestOverride("system.ping")
			tt.mutate(override)

			err := override.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
