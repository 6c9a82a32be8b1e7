package docs

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/actiongate/actiongate/internal/httputil"
)

const (
	openAPIVersion = "3.0.3"
	dispatchPath   = "/v1/actions"
)

// openAPIDocument mirrors the subset of OpenAPI 3.0 this service emits: one
// path, one verb, bearer auth, and the shared envelope schemas.
type openAPIDocument struct {
	OpenAPI    string                     `json:"openapi" yaml:"openapi"`
	Info       openAPIInfo                `json:"info" yaml:"info"`
	Servers    []openAPIServer            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths      map[string]openAPIPathItem `json:"paths" yaml:"paths"`
	Components openAPIComponents          `json:"components" yaml:"components"`
	Security   []map[string][]string      `json:"security" yaml:"security"`
}

type openAPIInfo struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type openAPIServer struct {
	URL string `json:"url" yaml:"url"`
}

type openAPIPathItem struct {
	Post *openAPIOperation `json:"post,omitempty" yaml:"post,omitempty"`
}

type openAPIOperation struct {
	Summary     string                     `json:"summary" yaml:"summary"`
	Description string                     `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string                     `json:"operationId" yaml:"operationId"`
	RequestBody *openAPIRequestBody        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]openAPIResponse `json:"responses" yaml:"responses"`
}

type openAPIRequestBody struct {
	Required bool                        `json:"required" yaml:"required"`
	Content  map[string]openAPIMediaType `json:"content" yaml:"content"`
}

type openAPIMediaType struct {
	Schema   *openAPISchema            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Examples map[string]openAPIExample `json:"examples,omitempty" yaml:"examples,omitempty"`
}

type openAPIExample struct {
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Value   any    `json:"value" yaml:"value"`
}

type openAPIResponse struct {
	Description string                      `json:"description" yaml:"description"`
	Content     map[string]openAPIMediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type openAPISchema struct {
	Ref         string                    `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type        string                    `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string                    `json:"format,omitempty" yaml:"format,omitempty"`
	Description string                    `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []string                  `json:"enum,omitempty" yaml:"enum,omitempty"`
	Properties  map[string]*openAPISchema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items       *openAPISchema            `json:"items,omitempty" yaml:"items,omitempty"`
	Required    []string                  `json:"required,omitempty" yaml:"required,omitempty"`
	OneOf       []*openAPISchema          `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
	Nullable    bool                      `json:"nullable,omitempty" yaml:"nullable,omitempty"`
}

// ExportOpenAPI renders the catalog as an OpenAPI 3.0 JSON document.
func (g *Generator) ExportOpenAPI() ([]byte, error) {
	document, err := g.openAPIDocument()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(document, "", "  ")
}

// ExportOpenAPIYAML renders the same OpenAPI document as YAML.
func (g *Generator) ExportOpenAPIYAML() ([]byte, error) {
	document, err := g.openAPIDocument()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(document)
}

func (g *Generator) openAPIDocument() (*openAPIDocument, error) {
	document, err := g.Generate()
	if err != nil {
		return nil, err
	}

	// The enum covers every registered identifier, disabled ones included:
	// the document describes the catalog, not the current gating.
	actionTypes := make([]string, 0, len(document.Actions))
	for actionType := range document.Actions {
		actionTypes = append(actionTypes, actionType)
	}
	slices.Sort(actionTypes)

	var servers []openAPIServer
	if g.info.ServerURL != "" {
		servers = []openAPIServer{{URL: g.info.ServerURL}}
	}

	return &openAPIDocument{
		OpenAPI: openAPIVersion,
		Info: openAPIInfo{
			Title:       g.info.Title,
			Version:     g.info.Version,
			Description: g.info.Description,
		},
		Servers: servers,
		Paths: map[string]openAPIPathItem{
			dispatchPath: {
				Post: &openAPIOperation{
					Summary:     "Dispatch an action",
					Description: "Executes the operation selected by the action_type field of the JSON body.",
					OperationID: "dispatchAction",
					RequestBody: &openAPIRequestBody{
						Required: true,
						Content: map[string]openAPIMediaType{
							"application/json": {
								Schema:   &openAPISchema{Ref: "#/components/schemas/ActionRequest"},
								Examples: requestExamples(document, actionTypes),
							},
						},
					},
					Responses: operationResponses(),
				},
			},
		},
		Components: openAPIComponents{
			Schemas: envelopeSchemas(actionTypes),
			SecuritySchemes: map[string]openAPISecurityScheme{
				"bearerAuth": {
					Type:        "http",
					Scheme:      "bearer",
					Description: "Bearer token issued by credentials.create.",
				},
			},
		},
		Security: []map[string][]string{{"bearerAuth": {}}},
	}, nil
}

type openAPIComponents struct {
	Schemas         map[string]*openAPISchema        `json:"schemas" yaml:"schemas"`
	SecuritySchemes map[string]openAPISecurityScheme `json:"securitySchemes" yaml:"securitySchemes"`
}

type openAPISecurityScheme struct {
	Type        string `json:"type" yaml:"type"`
	Scheme      string `json:"scheme" yaml:"scheme"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// requestExamples emits one request example per action, preferring the
// handler's own first example over a minimal discriminator-only body.
func requestExamples(document *Document, actionTypes []string) map[string]openAPIExample {
	examples := make(map[string]openAPIExample, len(actionTypes))
	for _, actionType := range actionTypes {
		actionDoc := document.Actions[actionType]

		value := map[string]any{"action_type": actionType}
		summary := actionDoc.Description
		if len(actionDoc.Examples) > 0 {
			example := actionDoc.Examples[0]
			if example.Request != nil {
				value = example.Request
			}
			if example.Name != "" {
				summary = example.Name
			}
		}

		examples[actionType] = openAPIExample{Summary: summary, Value: value}
	}
	return examples
}

func operationResponses() map[string]openAPIResponse {
	errorContent := map[string]openAPIMediaType{
		"application/json": {Schema: &openAPISchema{Ref: "#/components/schemas/ErrorResponse"}},
	}

	return map[string]openAPIResponse{
		"200": {
			Description: "Action executed",
			Content: map[string]openAPIMediaType{
				"application/json": {
					Schema: &openAPISchema{OneOf: []*openAPISchema{
						{Ref: "#/components/schemas/SuccessResponse"},
						{Ref: "#/components/schemas/PaginatedResponse"},
					}},
				},
			},
		},
		"401": {Description: "Missing or invalid credentials", Content: errorContent},
		"403": {Description: "Credential lacks a required capability", Content: errorContent},
		"404": {Description: "Unknown action type", Content: errorContent},
		"405": {Description: "Method other than POST", Content: errorContent},
		"422": {Description: "Malformed body or parameters", Content: errorContent},
		"429": {Description: "Rate limit exceeded", Content: errorContent},
		"500": {Description: "Internal failure", Content: errorContent},
	}
}

func envelopeSchemas(actionTypes []string) map[string]*openAPISchema {
	paginationRef := &openAPISchema{Ref: "#/components/schemas/Pagination"}

	return map[string]*openAPISchema{
		"ActionRequest": {
			Type:        "object",
			Description: "Dispatch request. Fields beyond action_type are the selected action's parameters.",
			Required:    []string{"action_type"},
			Properties: map[string]*openAPISchema{
				"action_type": {
					Type:        "string",
					Description: "Selects the operation to perform.",
					Enum:        actionTypes,
				},
			},
		},
		"SuccessResponse": {
			Type:     "object",
			Required: []string{"status", "data", "timestamp"},
			Properties: map[string]*openAPISchema{
				"status":    {Type: "string", Enum: []string{httputil.StatusSuccess}},
				"message":   {Type: "string"},
				"data":      {Description: "Action-specific payload.", Nullable: true},
				"timestamp": {Type: "string", Format: "date-time"},
			},
		},
		"PaginatedResponse": {
			Type:     "object",
			Required: []string{"status", "data", "pagination", "timestamp"},
			Properties: map[string]*openAPISchema{
				"status":     {Type: "string", Enum: []string{httputil.StatusSuccess}},
				"message":    {Type: "string"},
				"data":       {Type: "array", Items: &openAPISchema{}},
				"pagination": paginationRef,
				"timestamp":  {Type: "string", Format: "date-time"},
			},
		},
		"ErrorResponse": {
			Type:     "object",
			Required: []string{"status", "message", "error_code", "timestamp"},
			Properties: map[string]*openAPISchema{
				"status":  {Type: "string", Enum: []string{httputil.StatusError}},
				"message": {Type: "string"},
				"error_code": {
					Type: "string",
					Enum: []string{
						httputil.CodeValidationError,
						httputil.CodeUnauthorized,
						httputil.CodeForbidden,
						httputil.CodeActionNotFound,
						httputil.CodeNotFound,
						httputil.CodeMethodNotAllowed,
						httputil.CodeRateLimitExceeded,
						httputil.CodeInternalServerError,
					},
				},
				"details":    {Type: "object", Description: "Field-level failure context; sensitive values are redacted."},
				"timestamp":  {Type: "string", Format: "date-time"},
				"request_id": {Type: "string"},
			},
		},
		"Pagination": {
			Type: "object",
			Properties: map[string]*openAPISchema{
				"current_page":   {Type: "integer"},
				"last_page":      {Type: "integer"},
				"per_page":       {Type: "integer"},
				"total":          {Type: "integer", Format: "int64"},
				"from":           {Type: "integer"},
				"to":             {Type: "integer"},
				"has_more_pages": {Type: "boolean"},
			},
		},
	}
}
