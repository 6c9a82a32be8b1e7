package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
	permissionUseCase "github.com/actiongate/actiongate/internal/permission/usecase"
)

// RunGetOverride prints the permission override for a single action,
// including the timestamps the list view omits.
//
// Requirements: Database must be migrated and accessible.
func RunGetOverride(
	ctx context.Context,
	overrides permissionUseCase.OverrideUseCase,
	logger *slog.Logger,
	writer io.Writer,
	actionType string,
	format string,
) error {
	override, err := overrides.Get(ctx, actionType)
	if err != nil {
		return fmt.Errorf("failed to get override: %w", err)
	}

	if format == "json" {
		outputOverrideDetailJSON(override, writer)
	} else {
		outputOverrideDetailText(override, writer)
	}

	logger.Info("override retrieved",
		slog.String("action_type", override.ActionType),
		slog.Bool("is_active", override.IsActive),
	)

	return nil
}

// outputOverrideDetailText outputs the override in human-readable text format.
func outputOverrideDetailText(override *permissionDomain.Override, writer io.Writer) {
	status := "active"
	if !override.IsActive {
		status = "inactive"
	}

	_, _ = fmt.Fprintf(writer, "Override for %s\n", override.ActionType)
	_, _ = fmt.Fprintf(writer, "  Capabilities: %s\n", capabilityList(override.Capabilities))
	_, _ = fmt.Fprintf(writer, "  Status: %s\n", status)
	if override.Description != "" {
		_, _ = fmt.Fprintf(writer, "  Description: %s\n", override.Description)
	}
	_, _ = fmt.Fprintf(writer, "  Created: %s\n", override.CreatedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "  Updated: %s\n", override.UpdatedAt.Format(time.RFC3339))
}

// outputOverrideDetailJSON outputs the override in JSON format for machine consumption.
func outputOverrideDetailJSON(override *permissionDomain.Override, writer io.Writer) {
	result := map[string]any{
		"action_type":  override.ActionType,
		"capabilities": capabilityStrings(override.Capabilities),
		"is_active":    override.IsActive,
		"description":  override.Description,
		"created_at":   override.CreatedAt.Format(time.RFC3339),
		"updated_at":   override.UpdatedAt.Format(time.RFC3339),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
