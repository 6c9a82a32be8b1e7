// Package dispatcher runs the action dispatch pipeline: shape check, action
// resolution, authorization, handler parameter validation, execution, and
// response formatting. Every request to the dispatch endpoint passes through
// it exactly once, and every exit produces a complete response envelope.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	validation "github.com/jellydator/validation"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	"github.com/actiongate/actiongate/internal/httputil"
	permissionUseCase "github.com/actiongate/actiongate/internal/permission/usecase"
	appvalidation "github.com/actiongate/actiongate/internal/validation"
)

// Dispatcher runs one request through the dispatch pipeline and returns the
// status and envelope to write. It never returns an error; failures become
// error envelopes.
type Dispatcher interface {
	Dispatch(ctx context.Context, request *actionDomain.Request) *Result
}

// ActionResolver is the registry surface the dispatcher depends on: keeping
// the catalog fresh and mapping an action type to its descriptor.
type ActionResolver interface {
	Discover() error
	Resolve(actionType string) (*actionDomain.Descriptor, error)
}

// Result is the terminal outcome of one dispatch. Body is the envelope to
// serialize. ActionType stays empty when the request failed the shape check,
// ErrorCode stays empty on success, and Metadata carries failure context
// (such as missing capabilities) for the audit trail.
type Result struct {
	HTTPStatus int
	Body       any
	ActionType string
	ErrorCode  string
	Metadata   map[string]any
}

// Outcome returns the audit outcome value for this result: "success" or the
// lowercased error code. Metrics and audit entries share these values.
func (r *Result) Outcome() string {
	if r.ErrorCode == "" {
		return string(auditDomain.OutcomeSuccess)
	}
	return string(auditDomain.FailureOutcome(r.ErrorCode))
}

// failure carries a pipeline stage's error together with the client-facing
// details and the audit metadata that accompany it.
type failure struct {
	err      error
	details  map[string]any
	metadata map[string]any
}

type dispatcher struct {
	actions     ActionResolver
	permissions permissionUseCase.Resolver
	logger      *slog.Logger
	production  bool
}

// Dispatch runs the pipeline stages in order and stops at the first failure.
// The request is mutated as stages resolve more of it: ActionType after the
// shape check, Descriptor after resolution.
func (d *dispatcher) Dispatch(ctx context.Context, request *actionDomain.Request) *Result {
	formatter := httputil.NewFormatter(request.RequestID)

	if f := d.shapeCheck(request); f != nil {
		return d.errorResult(formatter, request, f)
	}
	if f := d.resolve(request); f != nil {
		return d.errorResult(formatter, request, f)
	}
	if f := d.authorize(ctx, request); f != nil {
		return d.errorResult(formatter, request, f)
	}
	if f := d.validateParams(request); f != nil {
		return d.errorResult(formatter, request, f)
	}

	data, err := d.execute(ctx, request)
	if err != nil {
		return d.errorResult(formatter, request, &failure{err: err})
	}

	return d.successResult(formatter, request, data)
}

// shapeCheck parses the action_type discriminator out of the body and
// validates it as an action identifier. Runs before resolution so a
// malformed request never touches the registry.
func (d *dispatcher) shapeCheck(request *actionDomain.Request) *failure {
	var body struct {
		ActionType string `json:"action_type"`
	}

	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &body); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) && typeErr.Field == "action_type" {
				return &failure{
					err:     apperrors.Wrap(apperrors.ErrInvalidInput, "action_type must be a string"),
					details: map[string]any{"action_type": "must be a string"},
				}
			}
			// action_type is missing by definition here, and clients keying on
			// that detail must see it for any body that lacks the field.
			return &failure{
				err: apperrors.Wrap(apperrors.ErrInvalidInput, "request body must be a JSON object"),
				details: map[string]any{
					"action_type": "action_type is required",
					"body":        "must be a JSON object",
				},
			}
		}
	}

	if err := validation.Validate(body.ActionType,
		validation.Required.Error("action_type is required"),
		appvalidation.ActionType,
	); err != nil {
		return &failure{
			err:     apperrors.Wrap(apperrors.ErrInvalidInput, err.Error()),
			details: map[string]any{"action_type": err.Error()},
		}
	}

	request.ActionType = body.ActionType
	return nil
}

// resolve keeps the catalog fresh and looks the action up in it. A disabled
// action dispatches exactly like an unregistered one so probing cannot tell
// them apart.
func (d *dispatcher) resolve(request *actionDomain.Request) *failure {
	if err := d.actions.Discover(); err != nil {
		// %v, not %w: build errors carry request-class sentinels (conflict,
		// invalid input) that must not shape the response. A broken catalog
		// is an internal failure.
		return &failure{err: fmt.Errorf("action catalog is unavailable: %v", err)}
	}

	descriptor, err := d.actions.Resolve(request.ActionType)
	if err != nil {
		return &failure{err: err}
	}

	if !descriptor.Enabled {
		return &failure{
			err: apperrors.Wrapf(apperrors.ErrActionNotFound, "action %q is not registered", request.ActionType),
		}
	}

	request.Descriptor = descriptor
	return nil
}

// authorize checks the credential against the action's effective capability
// requirement. A resolver failure denies the request; it never falls through
// to the handler.
func (d *dispatcher) authorize(ctx context.Context, request *actionDomain.Request) *failure {
	if request.Credential == nil {
		return &failure{err: apperrors.Wrap(apperrors.ErrUnauthorized, "no credential on request")}
	}

	decision, err := d.permissions.Authorize(ctx, request.Credential, request.ActionType, request.Descriptor.RequiredCapabilities)
	if err != nil {
		return &failure{err: apperrors.Wrap(err, "authorization check failed")}
	}

	if !decision.Allowed {
		capabilities := map[string]any{
			"required_capabilities": capabilityStrings(decision.Required),
			"missing_capabilities":  capabilityStrings(decision.Missing),
		}
		return &failure{
			err:      apperrors.Wrap(apperrors.ErrForbidden, "missing required capabilities"),
			details:  capabilities,
			metadata: capabilities,
		}
	}

	return nil
}

// validateParams runs the handler's own parameter validation. Any error from
// this stage is a validation failure regardless of the concrete error type
// the handler returned.
func (d *dispatcher) validateParams(request *actionDomain.Request) *failure {
	err := request.Descriptor.Handler.Validate(request.Params)
	if err == nil {
		return nil
	}

	details := map[string]any{"params": err.Error()}

	var fieldErrors validation.Errors
	if errors.As(err, &fieldErrors) {
		details = make(map[string]any, len(fieldErrors))
		for field, fieldErr := range fieldErrors {
			details[field] = fieldErr.Error()
		}
	}

	return &failure{
		err:     apperrors.Wrap(apperrors.ErrInvalidInput, err.Error()),
		details: details,
	}
}

// execute runs the handler with panic containment. A panicking handler
// becomes an internal error so one bad action cannot take the process down.
func (d *dispatcher) execute(ctx context.Context, request *actionDomain.Request) (data any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			stack := debug.Stack()
			d.logger.Error("action handler panicked",
				slog.String("action_type", request.ActionType),
				slog.String("request_id", request.RequestID),
				slog.String("credential_id", request.Credential.ID.String()),
				slog.Any("panic", recovered),
				slog.String("stack", string(stack)),
			)
			data = nil
			err = &panicError{value: recovered, stack: stack}
		}
	}()

	return request.Descriptor.Handler.Execute(ctx, request)
}

// successResult formats handler output. Handlers return an Envelope to set
// the message or pagination block; any other value becomes the data payload
// of a plain success envelope.
func (d *dispatcher) successResult(formatter *httputil.Formatter, request *actionDomain.Request, data any) *Result {
	var body any

	switch v := data.(type) {
	case *actionDomain.Envelope:
		if v.Pagination != nil {
			pagination := httputil.NewPagination(v.Pagination.Page, v.Pagination.PerPage, v.Pagination.Total)
			body = formatter.Paginated(v.Data, pagination, v.Message)
		} else {
			body = formatter.Success(v.Data, v.Message)
		}
	default:
		body = formatter.Success(data, "")
	}

	return &Result{
		HTTPStatus: http.StatusOK,
		Body:       body,
		ActionType: request.ActionType,
	}
}

// errorResult maps a pipeline failure onto its envelope. Outside production,
// internal failures carry the error text (and a panic's stack) in the
// details so operators can debug without log access; in production the
// details stay empty.
func (d *dispatcher) errorResult(formatter *httputil.Formatter, request *actionDomain.Request, f *failure) *Result {
	statusCode, errorCode, message := httputil.MapError(f.err)

	details := f.details
	if statusCode >= http.StatusInternalServerError && !d.production {
		details = map[string]any{"error": f.err.Error()}
		var panicErr *panicError
		if errors.As(f.err, &panicErr) {
			details["stack"] = string(panicErr.stack)
		}
	}

	d.logFailure(request, statusCode, errorCode, f.err)

	return &Result{
		HTTPStatus: statusCode,
		Body:       formatter.Error(message, errorCode, details),
		ActionType: request.ActionType,
		ErrorCode:  errorCode,
		Metadata:   f.metadata,
	}
}

func (d *dispatcher) logFailure(request *actionDomain.Request, statusCode int, errorCode string, err error) {
	attrs := []any{
		slog.String("action_type", request.ActionType),
		slog.String("request_id", request.RequestID),
		slog.String("error_code", errorCode),
		slog.Int("status_code", statusCode),
		slog.Any("error", err),
	}

	if statusCode >= http.StatusInternalServerError {
		d.logger.Error("action dispatch failed", attrs...)
		return
	}
	d.logger.Warn("action dispatch rejected", attrs...)
}

// panicError wraps a recovered handler panic so it maps to an internal error
// and the stack survives to the non-production error detail.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("action handler panicked: %v", e.value)
}

func capabilityStrings(capabilities []authDomain.Capability) []string {
	values := make([]string, len(capabilities))
	for i, capability := range capabilities {
		values[i] = string(capability)
	}
	return values
}

// NewDispatcher creates the core dispatcher. The production flag controls
// whether internal error details reach the response body.
func NewDispatcher(actions ActionResolver, permissions permissionUseCase.Resolver, logger *slog.Logger, production bool) Dispatcher {
	return &dispatcher{
		actions:     actions,
		permissions: permissions,
		logger:      logger,
		production:  production,
	}
}
