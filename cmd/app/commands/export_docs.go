package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/actiongate/actiongate/internal/action/docs"
	"github.com/actiongate/actiongate/internal/action/handlers"
	"github.com/actiongate/actiongate/internal/action/registry"
)

// RunExportDocs renders the OpenAPI description of the built-in action set to
// the writer in JSON or YAML. The catalog is built from the compiled-in
// manifest, so no database access is needed; handlers are constructed only to
// self-describe, never executed.
func RunExportDocs(
	logger *slog.Logger,
	writer io.Writer,
	version, disabledActions string,
	format string,
) error {
	logger.Info("exporting action documentation",
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

	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = generator.ExportOpenAPIYAML()
	case "json":
		data, err = generator.ExportOpenAPI()
	default:
		return fmt.Errorf("invalid format: %s (valid options: json, yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to export documentation: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write documentation: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, _ = fmt.Fprintln(writer)
	}

	return nil
}
