package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/actiongate/actiongate/internal/action/docs"
	"github.com/actiongate/actiongate/internal/action/handlers"
	"github.com/actiongate/actiongate/internal/action/registry"
)

// RunValidateDocs checks documentation completeness for the action catalog
// and reports findings per action. With an action type it checks only that
// action. The command returns an error when any error-severity finding
// exists, so a release pipeline can gate on the exit status; warnings alone
// leave it clean.
//
// Like export-docs, the catalog is built from the compiled-in manifest and
// handlers only self-describe; no database access is needed.
func RunValidateDocs(
	logger *slog.Logger,
	writer io.Writer,
	version, disabledActions string,
	actionType string,
	format string,
) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	logger.Info("validating action documentation",
		slog.String("action_type", actionType),
		slog.String("format", format),
	)

	var disabled []string
	if disabledActions != "" {
		disabled = strings.Split(disabledActions, ",")
	}

	actionRegistry := registry.New(registry.Config{DisabledActions: disabled})
	actionRegistry.SetManifest(handlers.Manifest(handlers.Dependencies{
		Version:   version,
		StartedAt: time.Now().UTC(),
	}))

	generator := docs.NewGenerator(actionRegistry, docs.Info{
		Title:       "Action Gateway",
		Version:     version,
		Description: "Single-endpoint action dispatch API",
	})

	document, err := generator.Generate()
	if err != nil {
		return fmt.Errorf("failed to build documentation: %w", err)
	}

	var targets []string
	var generationErrors []string
	if actionType != "" {
		targets = []string{actionType}
	} else {
		targets = make([]string, 0, len(document.Actions))
		for name := range document.Actions {
			targets = append(targets, name)
		}
		slices.Sort(targets)
		generationErrors = document.Errors
	}

	findings := make(map[string][]docs.Issue, len(targets))
	errorCount := len(generationErrors)
	warningCount := 0
	for _, target := range targets {
		issues, err := generator.Validate(target)
		if err != nil {
			return fmt.Errorf("failed to validate documentation: %w", err)
		}
		findings[target] = issues
		for _, issue := range issues {
			if issue.Severity == docs.SeverityError {
				errorCount++
			} else {
				warningCount++
			}
		}
	}

	if format == "json" {
		outputDocsValidationJSON(targets, findings, generationErrors, errorCount, warningCount, writer)
	} else {
		outputDocsValidationText(targets, findings, generationErrors, errorCount, warningCount, writer)
	}

	logger.Info("documentation validated",
		slog.Int("checked", len(targets)),
		slog.Int("errors", errorCount),
		slog.Int("warnings", warningCount),
	)

	if errorCount > 0 {
		return fmt.Errorf("documentation validation failed: %d errors", errorCount)
	}

	return nil
}

// outputDocsValidationText outputs the findings in human-readable text format.
func outputDocsValidationText(
	targets []string,
	findings map[string][]docs.Issue,
	generationErrors []string,
	errorCount, warningCount int,
	writer io.Writer,
) {
	_, _ = fmt.Fprintf(writer, "Documentation check (%d actions, %d errors, %d warnings)\n\n", len(targets), errorCount, warningCount)

	for _, target := range targets {
		issues := findings[target]
		if len(issues) == 0 {
			_, _ = fmt.Fprintf(writer, "%s: ok\n", target)
			continue
		}

		_, _ = fmt.Fprintf(writer, "%s\n", target)
		for _, issue := range issues {
			_, _ = fmt.Fprintf(writer, "  %s: %s\n", issue.Severity, issue.Message)
		}
	}

	if len(generationErrors) > 0 {
		_, _ = fmt.Fprintln(writer, "\nFailed to describe:")
		for _, message := range generationErrors {
			_, _ = fmt.Fprintf(writer, "  %s\n", message)
		}
	}
}

// outputDocsValidationJSON outputs the findings in JSON format for machine consumption.
func outputDocsValidationJSON(
	targets []string,
	findings map[string][]docs.Issue,
	generationErrors []string,
	errorCount, warningCount int,
	writer io.Writer,
) {
	actions := make(map[string][]docs.Issue, len(findings))
	for target, issues := range findings {
		if issues == nil {
			issues = []docs.Issue{}
		}
		actions[target] = issues
	}

	result := map[string]any{
		"actions":  actions,
		"checked":  len(targets),
		"errors":   errorCount,
		"warnings": warningCount,
	}
	if len(generationErrors) > 0 {
		result["generation_errors"] = generationErrors
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
