package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
	permissionUseCase "github.com/actiongate/actiongate/internal/permission/usecase"
)

// RunSetOverride creates or replaces the permission override for an action.
// The capability list replaces the action's declared requirement wholesale
// while the override is active; an empty list opens the action to any
// authenticated caller.
//
// Requirements: Database must be migrated and accessible.
func RunSetOverride(
	ctx context.Context,
	overrides permissionUseCase.OverrideUseCase,
	logger *slog.Logger,
	writer io.Writer,
	actionType, capabilities string,
	active bool,
	description string,
	format string,
) error {
	logger.Info("setting permission override", slog.String("action_type", actionType))

	parsedCapabilities, err := authDomain.ParseCapabilities(capabilities)
	if err != nil {
		return fmt.Errorf("invalid capabilities: %w", err)
	}

	override, err := overrides.Set(ctx, &permissionDomain.SetOverrideInput{
		ActionType:   actionType,
		Capabilities: parsedCapabilities,
		IsActive:     active,
		Description:  description,
	})
	if err != nil {
		return fmt.Errorf("failed to set override: %w", err)
	}

	if format == "json" {
		outputOverrideJSON(override, writer)
	} else {
		outputOverrideText(override, writer)
	}

	logger.Info("override set successfully",
		slog.String("action_type", override.ActionType),
		slog.Bool("is_active", override.IsActive),
	)

	return nil
}

// outputOverrideText outputs the override in human-readable text format.
func outputOverrideText(override *permissionDomain.Override, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nOverride set successfully!")
	_, _ = fmt.Fprintf(writer, "Action Type: %s\n", override.ActionType)
	_, _ = fmt.Fprintf(writer, "Capabilities: %s\n", capabilityList(override.Capabilities))
	_, _ = fmt.Fprintf(writer, "Active: %t\n", override.IsActive)
	if override.Description != "" {
		_, _ = fmt.Fprintf(writer, "Description: %s\n", override.Description)
	}
}

// outputOverrideJSON outputs the override in JSON format for machine consumption.
func outputOverrideJSON(override *permissionDomain.Override, writer io.Writer) {
	result := map[string]any{
		"action_type":  override.ActionType,
		"capabilities": capabilityStrings(override.Capabilities),
		"is_active":    override.IsActive,
		"description":  override.Description,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
