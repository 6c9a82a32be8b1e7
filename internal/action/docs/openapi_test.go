package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
)

func openAPIGenerator() (*Generator, *stubLister) {
	lister := &stubLister{descriptors: []*actionDomain.Descriptor{
		docDescriptor("system.ping", true, describedHandler("system.ping", "liveness probe")),
		docDescriptor("credentials.create", true, describedHandler("credentials.create", "issue a credential")),
		docDescriptor("audit.list", false, describedHandler("audit.list", "list audit entries")),
	}}
	info := testInfo()
	info.ServerURL = "https://gate.example.com"
	return NewGenerator(lister, info), lister
}

func exportedJSON(t *testing.T, generator *Generator) map[string]any {
	t.Helper()
	raw, err := generator.ExportOpenAPI()
	require.NoError(t, err)

	var document map[string]any
	require.NoError(t, json.Unmarshal(raw, &document))
	return document
}

func dig(t *testing.T, document map[string]any, path ...string) any {
	t.Helper()
	var current any = document
	for _, key := range path {
		object, ok := current.(map[string]any)
		require.True(t, ok, "expected object before key %q", key)
		current, ok = object[key]
		require.True(t, ok, "missing key %q", key)
	}
	return current
}

func TestGenerator_ExportOpenAPI(t *testing.T) {
	t.Run("Success_DocumentShape", func(t *testing.T) {
		generator, _ := openAPIGenerator()
		document := exportedJSON(t, generator)

		assert.Equal(t, "3.0.3", document["openapi"])
		assert.Equal(t, "actiongate", dig(t, document, "info", "title"))
		assert.Equal(t, "1.2.3", dig(t, document, "info", "version"))

		paths, ok := document["paths"].(map[string]any)
		require.True(t, ok)
		require.Len(t, paths, 1)
		assert.Equal(t, "dispatchAction", dig(t, document, "paths", "/v1/actions", "post", "operationId"))

		assert.Equal(t, "http", dig(t, document, "components", "securitySchemes", "bearerAuth", "type"))
		assert.Equal(t, "bearer", dig(t, document, "components", "securitySchemes", "bearerAuth", "scheme"))

		servers, ok := document["servers"].([]any)
		require.True(t, ok)
		require.Len(t, servers, 1)
	})

	t.Run("Success_EnumMatchesCatalogIncludingDisabled", func(t *testing.T) {
		generator, _ := openAPIGenerator()
		document := exportedJSON(t, generator)

		enum := dig(t, document, "components", "schemas", "ActionRequest", "properties", "action_type", "enum")
		assert.Equal(t, []any{"audit.list", "credentials.create", "system.ping"}, enum)
	})

	t.Run("Success_PerActionRequestExamples", func(t *testing.T) {
		generator, _ := openAPIGenerator()
		document := exportedJSON(t, generator)

		examples, ok := dig(t, document, "paths", "/v1/actions", "post", "requestBody", "content", "application/json", "examples").(map[string]any)
		require.True(t, ok)
		require.Len(t, examples, 3)

		value := dig(t, document, "paths", "/v1/actions", "post", "requestBody", "content", "application/json", "examples", "system.ping", "value")
		assert.Equal(t, map[string]any{"action_type": "system.ping", "path": "/x"}, value)
	})

	t.Run("Success_ErrorCodeEnumComplete", func(t *testing.T) {
		generator, _ := openAPIGenerator()
		document := exportedJSON(t, generator)

		enum, ok := dig(t, document, "components", "schemas", "ErrorResponse", "properties", "error_code", "enum").([]any)
		require.True(t, ok)
		assert.Len(t, enum, 8)
		assert.Contains(t, enum, "VALIDATION_ERROR")
		assert.Contains(t, enum, "UNAUTHORIZED")
		assert.Contains(t, enum, "FORBIDDEN")
		assert.Contains(t, enum, "ACTION_NOT_FOUND")
		assert.Contains(t, enum, "NOT_FOUND")
		assert.Contains(t, enum, "METHOD_NOT_ALLOWED")
		assert.Contains(t, enum, "RATE_LIMIT_EXCEEDED")
		assert.Contains(t, enum, "INTERNAL_SERVER_ERROR")
	})

	t.Run("Success_ResponsesCoverErrorTaxonomy", func(t *testing.T) {
		generator, _ := openAPIGenerator()
		document := exportedJSON(t, generator)

		responses, ok := dig(t, document, "paths", "/v1/actions", "post", "responses").(map[string]any)
		require.True(t, ok)
		for _, status := range []string{"200", "401", "403", "404", "405", "422", "429", "500"} {
			assert.Contains(t, responses, status)
		}
	})
}

func TestGenerator_ExportOpenAPIYAML(t *testing.T) {
	t.Run("Success_RendersSameDocument", func(t *testing.T) {
		generator, _ := openAPIGenerator()

		raw, err := generator.ExportOpenAPIYAML()
		require.NoError(t, err)

		var document map[string]any
		require.NoError(t, yaml.Unmarshal(raw, &document))

		assert.Equal(t, "3.0.3", document["openapi"])
		assert.Equal(t, "dispatchAction", dig(t, document, "paths", "/v1/actions", "post", "operationId"))

		enum, ok := dig(t, document, "components", "schemas", "ActionRequest", "properties", "action_type", "enum").([]any)
		require.True(t, ok)
		assert.Equal(t, []any{"audit.list", "credentials.create", "system.ping"}, enum)
	})
}
