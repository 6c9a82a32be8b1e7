package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
)

// RunGetCredential prints one credential's metadata: owner, capabilities,
// status, expiry, and last use. The token hash never appears in the output.
//
// Requirements: Database must be migrated and accessible.
func RunGetCredential(
	ctx context.Context,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	id string,
	format string,
) error {
	credentialID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid credential id: %w", err)
	}

	credential, err := credentials.Get(ctx, credentialID)
	if err != nil {
		return fmt.Errorf("failed to get credential: %w", err)
	}

	if format == "json" {
		outputCredentialDetailJSON(credential, writer)
	} else {
		outputCredentialDetailText(credential, writer)
	}

	logger.Info("credential retrieved",
		slog.String("credential_id", credential.ID.String()),
		slog.String("name", credential.Name),
	)

	return nil
}

// outputCredentialDetailText outputs the credential in human-readable text format.
func outputCredentialDetailText(credential *authDomain.Credential, writer io.Writer) {
	status := "active"
	if !credential.IsActive {
		status = "revoked"
	}

	_, _ = fmt.Fprintf(writer, "Credential %s\n", credential.Name)
	_, _ = fmt.Fprintf(writer, "  ID: %s\n", credential.ID.String())
	_, _ = fmt.Fprintf(writer, "  User ID: %s\n", credential.UserID.String())
	_, _ = fmt.Fprintf(writer, "  Capabilities: %s\n", capabilityList(credential.Capabilities))
	_, _ = fmt.Fprintf(writer, "  Status: %s\n", status)
	if credential.ExpiresAt != nil {
		_, _ = fmt.Fprintf(writer, "  Expires At: %s\n", credential.ExpiresAt.Format("2006-01-02 15:04:05"))
	} else {
		_, _ = fmt.Fprintln(writer, "  Expires At: never")
	}
	if credential.LastUsedAt != nil {
		_, _ = fmt.Fprintf(writer, "  Last Used: %s\n", credential.LastUsedAt.Format("2006-01-02 15:04:05"))
	} else {
		_, _ = fmt.Fprintln(writer, "  Last Used: never")
	}
	_, _ = fmt.Fprintf(writer, "  Created: %s\n", credential.CreatedAt.Format(time.RFC3339))
}

// outputCredentialDetailJSON outputs the credential in JSON format for machine consumption.
func outputCredentialDetailJSON(credential *authDomain.Credential, writer io.Writer) {
	result := map[string]any{
		"id":           credential.ID.String(),
		"user_id":      credential.UserID.String(),
		"name":         credential.Name,
		"capabilities": capabilityStrings(credential.Capabilities),
		"is_active":    credential.IsActive,
		"created_at":   credential.CreatedAt.Format(time.RFC3339),
	}
	if credential.ExpiresAt != nil {
		result["expires_at"] = credential.ExpiresAt.Format(time.RFC3339)
	}
	if credential.LastUsedAt != nil {
		result["last_used_at"] = credential.LastUsedAt.Format(time.RFC3339)
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
