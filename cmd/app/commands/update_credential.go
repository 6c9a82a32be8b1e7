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

// RunUpdateCredential updates an existing credential's name, capabilities,
// active status, and expiry. The mutable fields are replaced wholesale; the
// credential's token cannot be rotated in place. An empty expiry argument
// clears any expiration.
//
// Requirements: Database must be migrated and accessible.
func RunUpdateCredential(
	ctx context.Context,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	id, name, capabilities string,
	active bool,
	expiresAt string,
	format string,
) error {
	credentialID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid credential id: %w", err)
	}

	logger.Info("updating credential", slog.String("credential_id", credentialID.String()))

	parsedCapabilities, err := authDomain.ParseCapabilities(capabilities)
	if err != nil {
		return fmt.Errorf("invalid capabilities: %w", err)
	}

	var expiry *time.Time
	if expiresAt != "" {
		parsed, err := parseDate(expiresAt)
		if err != nil {
			return fmt.Errorf("invalid expiry: %w", err)
		}
		expiry = &parsed
	}

	input := &authDomain.UpdateCredentialInput{
		Name:         name,
		Capabilities: parsedCapabilities,
		IsActive:     active,
		ExpiresAt:    expiry,
	}

	if err := credentials.Update(ctx, credentialID, input); err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	if format == "json" {
		outputUpdateCredentialJSON(credentialID, input, writer)
	} else {
		outputUpdateCredentialText(credentialID, input, writer)
	}

	logger.Info("credential updated successfully",
		slog.String("credential_id", credentialID.String()),
		slog.String("name", name),
		slog.Bool("is_active", active),
	)

	return nil
}

// outputUpdateCredentialText outputs the result in human-readable text format.
func outputUpdateCredentialText(credentialID uuid.UUID, input *authDomain.UpdateCredentialInput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nCredential updated successfully!")
	_, _ = fmt.Fprintf(writer, "Credential ID: %s\n", credentialID.String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", input.Name)
	_, _ = fmt.Fprintf(writer, "Capabilities: %s\n", capabilityList(input.Capabilities))
	_, _ = fmt.Fprintf(writer, "Active: %t\n", input.IsActive)
	if input.ExpiresAt != nil {
		_, _ = fmt.Fprintf(writer, "Expires At: %s\n", input.ExpiresAt.Format("2006-01-02 15:04:05"))
	} else {
		_, _ = fmt.Fprintln(writer, "Expires At: never")
	}
}

// outputUpdateCredentialJSON outputs the result in JSON format for machine consumption.
func outputUpdateCredentialJSON(credentialID uuid.UUID, input *authDomain.UpdateCredentialInput, writer io.Writer) {
	result := map[string]any{
		"credential_id": credentialID.String(),
		"name":          input.Name,
		"capabilities":  capabilityStrings(input.Capabilities),
		"is_active":     input.IsActive,
	}
	if input.ExpiresAt != nil {
		result["expires_at"] = input.ExpiresAt.Format(time.RFC3339)
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
