package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actiongate/actiongate/internal/action/docs"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
)

func testDocument() *docs.Document {
	return &docs.Document{
		Info: docs.Info{Title: "Action Gateway", Version: "1.0.0"},
		Actions: map[string]*docs.ActionDoc{
			"system.ping": {ActionType: "system.ping", Description: "pong", Enabled: true},
		},
		Statistics:  docs.Statistics{TotalActions: 1, EnabledActions: 1},
		GeneratedAt: time.Now().UTC(),
	}
}

func TestDocsGenerateHandler(t *testing.T) {
	t.Run("Success_ReturnsCachedDocument", func(t *testing.T) {
		document := testDocument()

		mockDocs := new(mockDocsGenerator)
		mockDocs.On("Generate").Return(document, nil)
		catalog := &stubInvalidator{}

		handler := newDocsGenerateHandler(mockDocs, catalog)
		data, err := handler.Execute(context.Background(),
			execRequest(testCredential(authDomain.ReadCapability), `{"action_type":"docs.generate"}`))
		require.NoError(t, err)

		assert.Same(t, document, data)
		assert.Zero(t, catalog.flushes)
		mockDocs.AssertNotCalled(t, "Invalidate")
		mockDocs.AssertExpectations(t)
	})

	t.Run("Success_RefreshFlushesCatalogAndDocument", func(t *testing.T) {
		mockDocs := new(mockDocsGenerator)
		mockDocs.On("Invalidate").Return()
		mockDocs.On("Generate").Return(testDocument(), nil)
		catalog := &stubInvalidator{}

		handler := newDocsGenerateHandler(mockDocs, catalog)
		_, err := handler.Execute(context.Background(),
			execRequest(testCredential(authDomain.ReadCapability), `{"action_type":"docs.generate","refresh":true}`))
		require.NoError(t, err)

		assert.Equal(t, 1, catalog.flushes)
		mockDocs.AssertCalled(t, "Invalidate")
		mockDocs.AssertExpectations(t)
	})

	t.Run("Error_GenerationFailure", func(t *testing.T) {
		mockDocs := new(mockDocsGenerator)
		mockDocs.On("Generate").Return(nil, errors.New("catalog build failed"))

		handler := newDocsGenerateHandler(mockDocs, &stubInvalidator{})
		_, err := handler.Execute(context.Background(),
			execRequest(testCredential(authDomain.ReadCapability), `{"action_type":"docs.generate"}`))
		assert.Error(t, err)
	})
}

func TestDocsOpenAPIHandler(t *testing.T) {
	t.Run("Success_JSONByDefault", func(t *testing.T) {
		exported := []byte(`{"openapi":"3.0.3"}`)

		mockDocs := new(mockDocsGenerator)
		mockDocs.On("ExportOpenAPI").Return(exported, nil)

		handler := newDocsOpenAPIHandler(mockDocs)
		data, err := handler.Execute(context.Background(),
			execRequest(testCredential(authDomain.ReadCapability), `{"action_type":"docs.openapi"}`))
		require.NoError(t, err)

		payload, ok := data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, openAPIFormatJSON, payload["format"])
		assert.Equal(t, json.RawMessage(exported), payload["document"])

		mockDocs.AssertNotCalled(t, "ExportOpenAPIYAML")
	})

	t.Run("Success_YAMLWhenRequested", func(t *testing.T) {
		exported := []byte("openapi: 3.0.3\n")

		mockDocs := new(mockDocsGenerator)
		mockDocs.On("ExportOpenAPIYAML").Return(exported, nil)

		handler := newDocsOpenAPIHandler(mockDocs)
		data, err := handler.Execute(context.Background(),
			execRequest(testCredential(authDomain.ReadCapability), `{"action_type":"docs.openapi","format":"yaml"}`))
		require.NoError(t, err)

		payload := data.(map[string]any)
		assert.Equal(t, openAPIFormatYAML, payload["format"])
		assert.Equal(t, "openapi: 3.0.3\n", payload["document"])

		mockDocs.AssertNotCalled(t, "ExportOpenAPI")
	})

	t.Run("Error_UnknownFormat", func(t *testing.T) {
		handler := newDocsOpenAPIHandler(new(mockDocsGenerator))

		err := handler.Validate([]byte(`{"format":"xml"}`))
		require.Error(t, err)

		var fieldErrors validation.Errors
		require.ErrorAs(t, err, &fieldErrors)
		assert.Contains(t, fieldErrors, "format")
	})

	t.Run("Error_ExportFailure", func(t *testing.T) {
		mockDocs := new(mockDocsGenerator)
		mockDocs.On("ExportOpenAPI").Return(nil, errors.New("walk failed"))

		handler := newDocsOpenAPIHandler(mockDocs)
		_, err := handler.Execute(context.Background(),
			execRequest(testCredential(authDomain.ReadCapability), `{"action_type":"docs.openapi"}`))
		assert.Error(t, err)
	})
}
