package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	permissionUseCase "github.com/actiongate/actiongate/internal/permission/usecase"
)

// RunDeleteOverride removes the permission override for an action, reverting
// the action to its declared capability defaults.
//
// Requirements: Database must be migrated and accessible.
func RunDeleteOverride(
	ctx context.Context,
	overrides permissionUseCase.OverrideUseCase,
	logger *slog.Logger,
	writer io.Writer,
	actionType string,
	format string,
) error {
	logger.Info("deleting permission override", slog.String("action_type", actionType))

	if err := overrides.Delete(ctx, actionType); err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}

	if format == "json" {
		result := map[string]any{
			"action_type": actionType,
			"deleted":     true,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		} else {
			_, _ = fmt.Fprintln(writer, string(jsonBytes))
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Override for %s deleted; action reverts to its declared capabilities\n", actionType)
	}

	logger.Info("override deleted successfully", slog.String("action_type", actionType))

	return nil
}
