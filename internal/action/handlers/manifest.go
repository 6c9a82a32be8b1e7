// Package handlers implements the built-in action set: system introspection,
// profile management, credential issuance, permission overrides, audit
// queries, and documentation export. Each handler is a frozen instance
// constructed once by the registry; per-call state arrives on the dispatch
// request.
package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	"github.com/actiongate/actiongate/internal/action/docs"
	"github.com/actiongate/actiongate/internal/action/registry"
	auditUseCase "github.com/actiongate/actiongate/internal/audit/usecase"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	"github.com/actiongate/actiongate/internal/httputil"
	permissionUseCase "github.com/actiongate/actiongate/internal/permission/usecase"
	userUseCase "github.com/actiongate/actiongate/internal/user/usecase"
)

// ActionCatalog is the registry surface the system actions introspect.
type ActionCatalog interface {
	ListAll() ([]*actionDomain.Descriptor, error)
}

// CatalogInvalidator is the registry surface the docs refresh flushes.
type CatalogInvalidator interface {
	Invalidate()
}

// Pinger is the database surface the health action checks.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// DocsGenerator is the documentation surface the docs actions expose.
type DocsGenerator interface {
	Generate() (*docs.Document, error)
	Invalidate()
	ExportOpenAPI() ([]byte, error)
	ExportOpenAPIYAML() ([]byte, error)
}

// Dependencies carries the collaborators the built-in actions are wired
// with. Manifest factories capture it by value; every field the manifest
// references must be set before the registry's first build.
type Dependencies struct {
	Version     string
	StartedAt   time.Time
	DB          Pinger
	Actions     ActionCatalog
	Catalog     CatalogInvalidator
	Docs        DocsGenerator
	Users       userUseCase.UserUseCase
	Credentials authUseCase.CredentialUseCase
	Overrides   permissionUseCase.OverrideUseCase
	Audit       auditUseCase.EntryUseCase
}

// Manifest returns the factory list for the built-in action set, in the
// order the actions are documented.
func Manifest(deps Dependencies) []registry.Factory {
	return []registry.Factory{
		func() actionDomain.Handler { return newPingHandler() },
		func() actionDomain.Handler { return newInfoHandler(deps.Version, deps.StartedAt, deps.Actions) },
		func() actionDomain.Handler { return newHealthHandler(deps.DB, deps.Actions) },
		func() actionDomain.Handler { return newProfileGetHandler(deps.Users) },
		func() actionDomain.Handler { return newProfileUpdateHandler(deps.Users) },
		func() actionDomain.Handler { return newChangePasswordHandler(deps.Users) },
		func() actionDomain.Handler { return newCredentialListHandler(deps.Credentials) },
		func() actionDomain.Handler { return newCredentialCreateHandler(deps.Credentials) },
		func() actionDomain.Handler { return newCredentialRevokeHandler(deps.Credentials) },
		func() actionDomain.Handler { return newOverrideListHandler(deps.Overrides) },
		func() actionDomain.Handler { return newOverrideSetHandler(deps.Overrides) },
		func() actionDomain.Handler { return newOverrideDeleteHandler(deps.Overrides) },
		func() actionDomain.Handler { return newAuditListHandler(deps.Audit) },
		func() actionDomain.Handler { return newDocsGenerateHandler(deps.Docs, deps.Catalog) },
		func() actionDomain.Handler { return newDocsOpenAPIHandler(deps.Docs) },
	}
}

// decodeParams unmarshals the dispatch body into the handler's params
// struct. The action_type discriminator and unknown keys are ignored; an
// empty body yields the zero value.
func decodeParams(params json.RawMessage, target any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "params must be a JSON object")
	}
	return nil
}

// pageParams are the pagination parameters shared by list actions.
type pageParams struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// window normalizes the parameters and returns them with the row offset.
func (p pageParams) window() (page, perPage, offset int) {
	page, perPage = httputil.NormalizePageParams(p.Page, p.PerPage)
	return page, perPage, httputil.OffsetForPage(page, perPage)
}

var pageParameterDocs = []actionDomain.ParameterDoc{
	{Name: "page", Type: "integer", Description: "1-based page number, default 1"},
	{Name: "per_page", Type: "integer", Description: "page size, default 50, max 100"},
}

// uuidParam validates that a string parses as a UUID. Empty strings pass;
// Required handles presence.
var uuidParam = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid", "must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
})

// capabilityNames lists the valid capability strings for In rules.
var capabilityNames = func() []any {
	names := make([]any, 0, len(authDomain.AllCapabilities))
	for _, capability := range authDomain.AllCapabilities {
		names = append(names, string(capability))
	}
	return names
}()

func toCapabilities(values []string) []authDomain.Capability {
	capabilities := make([]authDomain.Capability, 0, len(values))
	for _, value := range values {
		capabilities = append(capabilities, authDomain.Capability(value))
	}
	return capabilities
}

func capabilityValues(capabilities []authDomain.Capability) []string {
	values := make([]string, 0, len(capabilities))
	for _, capability := range capabilities {
		values = append(values, string(capability))
	}
	return values
}

var (
	adminOnly = []authDomain.Capability{authDomain.AdminCapability}
	readOnly  = []authDomain.Capability{authDomain.ReadCapability}
)
