package docs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// docHandler is a Handler stub whose self-description the tests control.
type docHandler struct {
	described     actionDomain.Descriptor
	describePanic bool
}

func (h *docHandler) Describe() actionDomain.Descriptor {
	if h.describePanic {
		panic("broken self-description")
	}
	return h.described
}

func (h *docHandler) Validate(params json.RawMessage) error {
	return nil
}

func (h *docHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	return nil, nil
}

func (h *docHandler) RequiredCapabilities() []authDomain.Capability {
	return nil
}

type stubLister struct {
	descriptors []*actionDomain.Descriptor
	err         error
	calls       int
}

func (s *stubLister) ListAll() ([]*actionDomain.Descriptor, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.descriptors, nil
}

func describedHandler(actionType, description string) *docHandler {
	return &docHandler{
		described: actionDomain.Descriptor{
			ActionType:  actionType,
			Version:     "1.0.0",
			Description: description,
			Parameters: []actionDomain.ParameterDoc{
				{Name: "path", Type: "string", Required: true, Description: "target path"},
			},
			Examples: []actionDomain.Example{
				{Name: "basic", Request: map[string]any{"action_type": actionType, "path": "/x"}},
			},
		},
	}
}

func docDescriptor(actionType string, enabled bool, handler actionDomain.Handler) *actionDomain.Descriptor {
	return &actionDomain.Descriptor{
		ActionType:           actionType,
		Version:              "1.0.0",
		Enabled:              enabled,
		RequiredCapabilities: []authDomain.Capability{authDomain.ReadCapability},
		Handler:              handler,
	}
}

func testInfo() Info {
	return Info{Title: "actiongate", Version: "1.2.3", Description: "action dispatch service"}
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("Success_BuildsDocument", func(t *testing.T) {
		lister := &stubLister{descriptors: []*actionDomain.Descriptor{
			docDescriptor("system.ping", true, describedHandler("system.ping", "liveness probe")),
			docDescriptor("audit.list", false, describedHandler("audit.list", "list audit entries")),
		}}
		generator := NewGenerator(lister, testInfo())

		document, err := generator.Generate()

		require.NoError(t, err)
		assert.Equal(t, "actiongate", document.Info.Title)
		assert.Len(t, document.Actions, 2)
		assert.Empty(t, document.Errors)
		assert.False(t, document.GeneratedAt.IsZero())

		assert.Equal(t, 2, document.Statistics.TotalActions)
		assert.Equal(t, 1, document.Statistics.EnabledActions)
		assert.Equal(t, 1, document.Statistics.DisabledActions)
		assert.Equal(t, 0, document.Statistics.FailedActions)

		ping := document.Actions["system.ping"]
		require.NotNil(t, ping)
		assert.Equal(t, "liveness probe", ping.Description)
		assert.Equal(t, "1.0.0", ping.Version)
		assert.True(t, ping.Enabled)
		assert.Equal(t, []string{"read"}, ping.RequiredCapabilities)
		require.Len(t, ping.Parameters, 1)
		assert.Equal(t, "path", ping.Parameters[0].Name)
	})

	t.Run("Success_CachedUntilInvalidate", func(t *testing.T) {
		lister := &stubLister{descriptors: []*actionDomain.Descriptor{
			docDescriptor("system.ping", true, describedHandler("system.ping", "liveness probe")),
		}}
		generator := NewGenerator(lister, testInfo())

		first, err := generator.Generate()
		require.NoError(t, err)
		second, err := generator.Generate()
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, lister.calls)

		generator.Invalidate()

		third, err := generator.Generate()
		require.NoError(t, err)
		assert.NotSame(t, first, third)
		assert.Equal(t, 2, lister.calls)
	})

	t.Run("Success_DescribeFailureDoesNotAbort", func(t *testing.T) {
		broken := &docHandler{describePanic: true}
		lister := &stubLister{descriptors: []*actionDomain.Descriptor{
			docDescriptor("system.ping", true, describedHandler("system.ping", "liveness probe")),
			docDescriptor("system.broken", true, broken),
		}}
		generator := NewGenerator(lister, testInfo())

		document, err := generator.Generate()

		require.NoError(t, err)
		assert.Len(t, document.Actions, 1)
		assert.NotContains(t, document.Actions, "system.broken")
		require.Len(t, document.Errors, 1)
		assert.Contains(t, document.Errors[0], "system.broken")
		assert.Equal(t, 1, document.Statistics.FailedActions)
		assert.Equal(t, 2, document.Statistics.TotalActions)
	})

	t.Run("Success_NilHandlerRecorded", func(t *testing.T) {
		lister := &stubLister{descriptors: []*actionDomain.Descriptor{
			{ActionType: "system.orphan", Enabled: true},
		}}
		generator := NewGenerator(lister, testInfo())

		document, err := generator.Generate()

		require.NoError(t, err)
		assert.Empty(t, document.Actions)
		require.Len(t, document.Errors, 1)
		assert.Contains(t, document.Errors[0], "has no handler")
	})

	t.Run("Error_ListFailure", func(t *testing.T) {
		lister := &stubLister{err: errors.New("registry build failed")}
		generator := NewGenerator(lister, testInfo())

		document, err := generator.Generate()

		require.Error(t, err)
		assert.Nil(t, document)
		assert.Contains(t, err.Error(), "failed to list actions for documentation")
	})
}

func TestGenerator_Validate(t *testing.T) {
	t.Run("Success_CompleteAction", func(t *testing.T) {
		lister := &stubLister{descriptors: []*actionDomain.Descriptor{
			docDescriptor("system.ping", true, describedHandler("system.ping", "liveness probe")),
		}}
		generator := NewGenerator(lister, testInfo())

		issues, err := generator.Validate("system.ping")

		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("Success_ReportsMissingDocumentation", func(t *testing.T) {
		bare := &docHandler{described: actionDomain.Descriptor{
			ActionType: "system.bare",
			Parameters: []actionDomain.ParameterDoc{{Name: "id", Type: "string"}},
		}}
		lister := &stubLister{descriptors: []*actionDomain.Descriptor{
			docDescriptor("system.bare", true, bare),
		}}
		generator := NewGenerator(lister, testInfo())

		issues, err := generator.Validate("system.bare")

		require.NoError(t, err)
		require.Len(t, issues, 4)

		var errorCount, warningCount int
		messages := make([]string, 0, len(issues))
		for _, issue := range issues {
			messages = append(messages, issue.Message)
			switch issue.Severity {
			case SeverityError:
				errorCount++
			case SeverityWarning:
				warningCount++
			}
		}

		assert.Equal(t, 1, errorCount)
		assert.Equal(t, 3, warningCount)
		assert.Contains(t, messages, "action has no description")
		assert.Contains(t, messages, "action declares no version")
		assert.Contains(t, messages, `parameter "id" has no description`)
		assert.Contains(t, messages, "action has no examples")
	})

	t.Run("Error_UnknownAction", func(t *testing.T) {
		lister := &stubLister{descriptors: []*actionDomain.Descriptor{
			docDescriptor("system.ping", true, describedHandler("system.ping", "liveness probe")),
		}}
		generator := NewGenerator(lister, testInfo())

		issues, err := generator.Validate("system.reboot")

		require.Error(t, err)
		assert.Nil(t, issues)
		assert.ErrorIs(t, err, apperrors.ErrActionNotFound)
	})
}
