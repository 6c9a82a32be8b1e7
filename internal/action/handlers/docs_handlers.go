package handlers

import (
	"context"
	"encoding/json"

	validation "github.com/jellydator/validation"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
)

type docsGenerateParams struct {
	Refresh bool `json:"refresh"`
}

// docsGenerateHandler exposes the generated action documentation. Refresh
// discards the built catalog and the cached document first, so the new walk
// reflects the current action set.
type docsGenerateHandler struct {
	docs    DocsGenerator
	catalog CatalogInvalidator
}

func (h *docsGenerateHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "docs.generate",
		Version:     "1.0.0",
		Description: "Returns the generated documentation for every registered action.",
		Parameters: []actionDomain.ParameterDoc{
			{Name: "refresh", Type: "boolean", Description: "rebuild the action catalog and regenerate the document"},
		},
		Examples: []actionDomain.Example{{
			Name:    "cached document",
			Request: map[string]any{"action_type": "docs.generate"},
		}},
	}
}

func (h *docsGenerateHandler) Validate(params json.RawMessage) error {
	var p docsGenerateParams
	return decodeParams(params, &p)
}

func (h *docsGenerateHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p docsGenerateParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}

	if p.Refresh {
		// Catalog first: the document walk must see the rebuilt action set.
		h.catalog.Invalidate()
		h.docs.Invalidate()
	}

	return h.docs.Generate()
}

func (h *docsGenerateHandler) RequiredCapabilities() []authDomain.Capability {
	return readOnly
}

// OpenAPI export formats.
const (
	openAPIFormatJSON = "json"
	openAPIFormatYAML = "yaml"
)

type docsOpenAPIParams struct {
	Format string `json:"format"`
}

func (p docsOpenAPIParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Format,
			validation.In(openAPIFormatJSON, openAPIFormatYAML).Error("must be json or yaml"),
		),
	)
}

// docsOpenAPIHandler exposes the OpenAPI export of the dispatch endpoint.
type docsOpenAPIHandler struct {
	docs DocsGenerator
}

func (h *docsOpenAPIHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "docs.openapi",
		Version:     "1.0.0",
		Description: "Returns the OpenAPI 3.0 description of the dispatch endpoint, enumerating every registered action type.",
		Parameters: []actionDomain.ParameterDoc{
			{Name: "format", Type: "string", Description: "document format, json (default) or yaml"},
		},
		Examples: []actionDomain.Example{{
			Name:    "json export",
			Request: map[string]any{"action_type": "docs.openapi", "format": "json"},
		}},
	}
}

func (h *docsOpenAPIHandler) Validate(params json.RawMessage) error {
	var p docsOpenAPIParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	return p.Validate()
}

func (h *docsOpenAPIHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	var p docsOpenAPIParams
	if err := decodeParams(request.Params, &p); err != nil {
		return nil, err
	}

	if p.Format == openAPIFormatYAML {
		document, err := h.docs.ExportOpenAPIYAML()
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"format":   openAPIFormatYAML,
			"document": string(document),
		}, nil
	}

	document, err := h.docs.ExportOpenAPI()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"format":   openAPIFormatJSON,
		"document": json.RawMessage(document),
	}, nil
}

func (h *docsOpenAPIHandler) RequiredCapabilities() []authDomain.Capability {
	return readOnly
}

func newDocsGenerateHandler(docs DocsGenerator, catalog CatalogInvalidator) *docsGenerateHandler {
	return &docsGenerateHandler{docs: docs, catalog: catalog}
}

func newDocsOpenAPIHandler(docs DocsGenerator) *docsOpenAPIHandler {
	return &docsOpenAPIHandler{docs: docs}
}
