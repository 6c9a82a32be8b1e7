package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
)

// RunRevokeCredential deactivates a credential so it can no longer
// authenticate. The revocation is a soft delete; the record stays for audit
// correlation.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeCredential(
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

	logger.Info("revoking credential", slog.String("credential_id", credentialID.String()))

	if err := credentials.Revoke(ctx, credentialID); err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}

	if format == "json" {
		result := map[string]any{
			"credential_id": credentialID.String(),
			"revoked":       true,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		} else {
			_, _ = fmt.Fprintln(writer, string(jsonBytes))
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Credential %s revoked\n", credentialID.String())
	}

	logger.Info("credential revoked successfully",
		slog.String("credential_id", credentialID.String()),
	)

	return nil
}
