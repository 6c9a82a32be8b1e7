package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/actiongate/actiongate/internal/httputil"
	permissionDomain "github.com/actiongate/actiongate/internal/permission/domain"
	permissionUseCase "github.com/actiongate/actiongate/internal/permission/usecase"
)

// RunListOverrides lists permission overrides with pagination.
//
// Requirements: Database must be migrated and accessible.
func RunListOverrides(
	ctx context.Context,
	overrides permissionUseCase.OverrideUseCase,
	logger *slog.Logger,
	writer io.Writer,
	page, perPage int,
	format string,
) error {
	page, perPage = httputil.NormalizePageParams(page, perPage)
	offset := httputil.OffsetForPage(page, perPage)

	items, total, err := overrides.List(ctx, offset, perPage)
	if err != nil {
		return fmt.Errorf("failed to list overrides: %w", err)
	}

	if format == "json" {
		outputOverrideListJSON(items, page, perPage, total, writer)
	} else {
		outputOverrideListText(items, page, perPage, total, writer)
	}

	logger.Info("overrides listed",
		slog.Int("page", page),
		slog.Int("per_page", perPage),
		slog.Int64("total", total),
	)

	return nil
}

// outputOverrideListText outputs the result in human-readable text format.
func outputOverrideListText(items []*permissionDomain.Override, page, perPage int, total int64, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Permission overrides (page %d, %d per page, %d total)\n\n", page, perPage, total)

	if len(items) == 0 {
		_, _ = fmt.Fprintln(writer, "No overrides found")
		return
	}

	for _, override := range items {
		status := "active"
		if !override.IsActive {
			status = "inactive"
		}

		_, _ = fmt.Fprintf(writer, "%s\n", override.ActionType)
		_, _ = fmt.Fprintf(writer, "  Capabilities: %s\n", capabilityList(override.Capabilities))
		_, _ = fmt.Fprintf(writer, "  Status: %s\n", status)
		if override.Description != "" {
			_, _ = fmt.Fprintf(writer, "  Description: %s\n", override.Description)
		}
	}
}

// outputOverrideListJSON outputs the result in JSON format for machine consumption.
func outputOverrideListJSON(items []*permissionDomain.Override, page, perPage int, total int64, writer io.Writer) {
	type overrideRow struct {
		ActionType   string   `json:"action_type"`
		Capabilities []string `json:"capabilities"`
		IsActive     bool     `json:"is_active"`
		Description  string   `json:"description,omitempty"`
		UpdatedAt    string   `json:"updated_at"`
	}

	rows := make([]overrideRow, 0, len(items))
	for _, override := range items {
		rows = append(rows, overrideRow{
			ActionType:   override.ActionType,
			Capabilities: capabilityStrings(override.Capabilities),
			IsActive:     override.IsActive,
			Description:  override.Description,
			UpdatedAt:    override.UpdatedAt.Format(time.RFC3339),
		})
	}

	result := map[string]any{
		"overrides": rows,
		"page":      page,
		"per_page":  perPage,
		"total":     total,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
