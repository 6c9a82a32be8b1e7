package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunExportDocs(t *testing.T) {
	logger := slog.Default()

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		err := RunExportDocs(logger, &out, "1.2.3", "", "json")
		require.NoError(t, err)

		var document map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &document))
		require.Equal(t, "3.0.3", document["openapi"])

		info := document["info"].(map[string]any)
		require.Equal(t, "Action Gateway", info["title"])
		require.Equal(t, "1.2.3", info["version"])

		paths := document["paths"].(map[string]any)
		require.Contains(t, paths, "/v1/actions")
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		err := RunExportDocs(logger, &out, "1.2.3", "", "yaml")
		require.NoError(t, err)
		require.Contains(t, out.String(), "openapi: 3.0.3")
		require.Contains(t, out.String(), "/v1/actions")
	})

	t.Run("catalog-covers-disabled-actions", func(t *testing.T) {
		var out bytes.Buffer
		err := RunExportDocs(logger, &out, "1.2.3", "system.ping", "json")
		require.NoError(t, err)
		// The enum describes the catalog, not the current gating.
		require.Contains(t, out.String(), "system.ping")
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunExportDocs(logger, &bytes.Buffer{}, "1.2.3", "", "xml")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
	})
}
