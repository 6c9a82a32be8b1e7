package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
)

// RunCreateCredential issues a new bearer credential for a user account.
// An empty capabilities argument grants the configured default set. Outputs
// the credential ID and plain token in either text or JSON format.
//
// SECURITY: The plain token is printed exactly once and is not recoverable
// afterwards; only its hash is stored.
//
// Requirements: Database must be migrated and accessible.
func RunCreateCredential(
	ctx context.Context,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID, name, capabilities string,
	format string,
) error {
	logger.Info("creating new credential", slog.String("name", name))

	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	parsedCapabilities, err := authDomain.ParseCapabilities(capabilities)
	if err != nil {
		return fmt.Errorf("invalid capabilities: %w", err)
	}

	output, err := credentials.Create(ctx, &authDomain.CreateCredentialInput{
		UserID:       ownerID,
		Name:         name,
		Capabilities: parsedCapabilities,
	})
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	if format == "json" {
		outputCredentialJSON(output, writer)
	} else {
		outputCredentialText(output, writer)
	}

	logger.Info("credential created successfully",
		slog.String("credential_id", output.Credential.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputCredentialText outputs the result in human-readable text format.
func outputCredentialText(output *authDomain.CreateCredentialOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nCredential created successfully!")
	_, _ = fmt.Fprintf(writer, "Credential ID: %s\n", output.Credential.ID.String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", output.Credential.Name)
	_, _ = fmt.Fprintf(writer, "Capabilities: %s\n", capabilityList(output.Credential.Capabilities))
	_, _ = fmt.Fprintf(writer, "Token: %s\n", output.PlainToken)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The token is shown only once. Store it securely.")
}

// outputCredentialJSON outputs the result in JSON format for machine consumption.
func outputCredentialJSON(output *authDomain.CreateCredentialOutput, writer io.Writer) {
	result := map[string]any{
		"credential_id": output.Credential.ID.String(),
		"name":          output.Credential.Name,
		"capabilities":  capabilityStrings(output.Credential.Capabilities),
		"token":         output.PlainToken,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
