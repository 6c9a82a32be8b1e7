// Package docs generates consumer documentation for the action catalog: a
// structured document driven by each handler's self-description, and an
// OpenAPI 3.0 rendering of the single dispatch endpoint.
package docs

import (
	"fmt"
	"sync"
	"time"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// Issue severity levels for documentation completeness checks.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ActionLister is the registry surface the generator reads.
type ActionLister interface {
	ListAll() ([]*actionDomain.Descriptor, error)
}

// Info identifies the service in generated documentation.
type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	ServerURL   string `json:"server_url,omitempty"`
}

// ActionDoc documents one action for consumers of the catalog.
type ActionDoc struct {
	ActionType           string                      `json:"action_type"`
	Version              string                      `json:"version,omitempty"`
	Description          string                      `json:"description"`
	Enabled              bool                        `json:"enabled"`
	RequiredCapabilities []string                    `json:"required_capabilities"`
	Parameters           []actionDomain.ParameterDoc `json:"parameters,omitempty"`
	Examples             []actionDomain.Example      `json:"examples,omitempty"`
}

// Statistics summarizes the catalog at generation time.
type Statistics struct {
	TotalActions    int `json:"total_actions"`
	EnabledActions  int `json:"enabled_actions"`
	DisabledActions int `json:"disabled_actions"`
	FailedActions   int `json:"failed_actions"`
}

// Document is the generated documentation for the whole action catalog.
// Errors lists actions whose self-description failed; those actions are
// missing from Actions but never abort generation.
type Document struct {
	Info        Info                  `json:"info"`
	Actions     map[string]*ActionDoc `json:"actions"`
	Statistics  Statistics            `json:"statistics"`
	Errors      []string              `json:"errors,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Issue is one completeness finding for an action's documentation.
type Issue struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Generator builds and caches the documentation document. Safe for
// concurrent use; Generate returns the same document until Invalidate.
type Generator struct {
	actions ActionLister
	info    Info

	mu     sync.Mutex
	cached *Document
}

// Generate walks the catalog and builds the documentation document. The
// result is cached: repeated calls without an Invalidate in between return
// the identical document.
func (g *Generator) Generate() (*Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached != nil {
		return g.cached, nil
	}

	descriptors, err := g.actions.ListAll()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list actions for documentation")
	}

	document := &Document{
		Info:        g.info,
		Actions:     make(map[string]*ActionDoc, len(descriptors)),
		GeneratedAt: time.Now().UTC(),
	}

	for _, descriptor := range descriptors {
		actionDoc, err := buildActionDoc(descriptor)
		if err != nil {
			document.Errors = append(document.Errors, err.Error())
			document.Statistics.FailedActions++
			continue
		}
		document.Actions[actionDoc.ActionType] = actionDoc
		if actionDoc.Enabled {
			document.Statistics.EnabledActions++
		} else {
			document.Statistics.DisabledActions++
		}
	}
	document.Statistics.TotalActions = len(descriptors)

	g.cached = document
	return document, nil
}

// Invalidate drops the cached document so the next Generate walks the
// catalog again. Call it whenever the action catalog changes.
func (g *Generator) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cached = nil
}

// Validate checks one action's documentation completeness. It reports
// findings; an undocumented action is a warning or an error, never a
// failure.
func (g *Generator) Validate(actionType string) ([]Issue, error) {
	document, err := g.Generate()
	if err != nil {
		return nil, err
	}

	actionDoc, ok := document.Actions[actionType]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrActionNotFound, "action %q is not registered", actionType)
	}

	var issues []Issue
	if actionDoc.Description == "" {
		issues = append(issues, Issue{Severity: SeverityError, Message: "action has no description"})
	}
	if actionDoc.Version == "" {
		issues = append(issues, Issue{Severity: SeverityWarning, Message: "action declares no version"})
	}
	for _, parameter := range actionDoc.Parameters {
		if parameter.Description == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("parameter %q has no description", parameter.Name),
			})
		}
	}
	if len(actionDoc.Examples) == 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Message: "action has no examples"})
	}

	return issues, nil
}

// buildActionDoc asks the handler for a fresh self-description. A panicking
// Describe is contained and reported as a generation error for that action
// only. Enabled state and effective capabilities come from the registry
// descriptor, not from the handler.
func buildActionDoc(descriptor *actionDomain.Descriptor) (actionDoc *ActionDoc, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			actionDoc = nil
			err = fmt.Errorf("describing action %q panicked: %v", descriptor.ActionType, recovered)
		}
	}()

	if descriptor.Handler == nil {
		return nil, fmt.Errorf("action %q has no handler to describe", descriptor.ActionType)
	}

	described := descriptor.Handler.Describe()

	return &ActionDoc{
		ActionType:           descriptor.ActionType,
		Version:              described.Version,
		Description:          described.Description,
		Enabled:              descriptor.Enabled,
		RequiredCapabilities: capabilityStrings(descriptor.RequiredCapabilities),
		Parameters:           described.Parameters,
		Examples:             described.Examples,
	}, nil
}

func capabilityStrings(capabilities []authDomain.Capability) []string {
	values := make([]string, 0, len(capabilities))
	for _, capability := range capabilities {
		values = append(values, string(capability))
	}
	return values
}

// NewGenerator creates a documentation generator reading from the given
// action catalog.
func NewGenerator(actions ActionLister, info Info) *Generator {
	return &Generator{
		actions: actions,
		info:    info,
	}
}
