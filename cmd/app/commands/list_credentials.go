package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
	"github.com/actiongate/actiongate/internal/httputil"
)

// RunListCredentials lists credentials with pagination. Token hashes are
// never printed.
//
// Requirements: Database must be migrated and accessible.
func RunListCredentials(
	ctx context.Context,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	page, perPage int,
	format string,
) error {
	page, perPage = httputil.NormalizePageParams(page, perPage)
	offset := httputil.OffsetForPage(page, perPage)

	items, total, err := credentials.List(ctx, offset, perPage)
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}

	if format == "json" {
		outputCredentialListJSON(items, page, perPage, total, writer)
	} else {
		outputCredentialListText(items, page, perPage, total, writer)
	}

	logger.Info("credentials listed",
		slog.Int("page", page),
		slog.Int("per_page", perPage),
		slog.Int64("total", total),
	)

	return nil
}

// outputCredentialListText outputs the result in human-readable text format.
func outputCredentialListText(items []*authDomain.Credential, page, perPage int, total int64, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Credentials (page %d, %d per page, %d total)\n\n", page, perPage, total)

	if len(items) == 0 {
		_, _ = fmt.Fprintln(writer, "No credentials found")
		return
	}

	for _, credential := range items {
		status := "active"
		if !credential.IsActive {
			status = "revoked"
		}

		expiry := "never"
		if credential.ExpiresAt != nil {
			expiry = credential.ExpiresAt.Format("2006-01-02 15:04:05")
		}

		_, _ = fmt.Fprintf(writer, "%s\n", credential.ID.String())
		_, _ = fmt.Fprintf(writer, "  Name: %s\n", credential.Name)
		_, _ = fmt.Fprintf(writer, "  Capabilities: %s\n", capabilityList(credential.Capabilities))
		_, _ = fmt.Fprintf(writer, "  Status: %s\n", status)
		_, _ = fmt.Fprintf(writer, "  Expires: %s\n", expiry)
	}
}

// outputCredentialListJSON outputs the result in JSON format for machine consumption.
func outputCredentialListJSON(items []*authDomain.Credential, page, perPage int, total int64, writer io.Writer) {
	type credentialRow struct {
		ID           string   `json:"id"`
		UserID       string   `json:"user_id"`
		Name         string   `json:"name"`
		Capabilities []string `json:"capabilities"`
		IsActive     bool     `json:"is_active"`
		ExpiresAt    *string  `json:"expires_at,omitempty"`
		CreatedAt    string   `json:"created_at"`
	}

	rows := make([]credentialRow, 0, len(items))
	for _, credential := range items {
		row := credentialRow{
			ID:           credential.ID.String(),
			UserID:       credential.UserID.String(),
			Name:         credential.Name,
			Capabilities: capabilityStrings(credential.Capabilities),
			IsActive:     credential.IsActive,
			CreatedAt:    credential.CreatedAt.Format(time.RFC3339),
		}
		if credential.ExpiresAt != nil {
			expiry := credential.ExpiresAt.Format(time.RFC3339)
			row.ExpiresAt = &expiry
		}
		rows = append(rows, row)
	}

	result := map[string]any{
		"credentials": rows,
		"page":        page,
		"per_page":    perPage,
		"total":       total,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
