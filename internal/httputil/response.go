// Package httputil builds the response envelopes shared by every operation:
// success, error, and paginated. All envelopes carry an RFC 3339 UTC
// timestamp; error envelopes additionally carry the stable error code and the
// request id correlating the response to audit records.
package httputil

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Stable error codes shared by all operations. The set is closed: every
// failure an operation can surface maps to exactly one of these.
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeActionNotFound      = "ACTION_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// SuccessResponse is the envelope for successful operations.
type SuccessResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the envelope for failed operations. RequestID correlates
// the response with audit records and server logs.
type ErrorResponse struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	ErrorCode string         `json:"error_code"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
	RequestID string         `json:"request_id,omitempty"`
}

// PaginatedResponse is the success envelope extended with a pagination block.
type PaginatedResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination"`
	Timestamp  string      `json:"timestamp"`
}

// Formatter builds response envelopes for one call. It holds the request id
// and timestamp of the call in progress so all envelopes produced for that
// call agree on both. Formatting never fails.
type Formatter struct {
	requestID string
	timestamp time.Time
}

// NewFormatter creates a Formatter for the current call.
func NewFormatter(requestID string) *Formatter {
	return &Formatter{
		requestID: requestID,
		timestamp: time.Now().UTC(),
	}
}

// Success builds a success envelope.
func (f *Formatter) Success(data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: f.timestamp.Format(time.RFC3339),
	}
}

// Error builds an error envelope. Details are redacted before serialization
// so sensitive values never reach the caller.
func (f *Formatter) Error(message string, code string, details map[string]any) *ErrorResponse {
	return &ErrorResponse{
		Status:    StatusError,
		Message:   message,
		ErrorCode: code,
		Details:   Redact(details),
		Timestamp: f.timestamp.Format(time.RFC3339),
		RequestID: f.requestID,
	}
}

// Paginated builds a success envelope with a pagination block.
func (f *Formatter) Paginated(data any, pagination *Pagination, message string) *PaginatedResponse {
	return &PaginatedResponse{
		Status:     StatusSuccess,
		Message:    message,
		Data:       data,
		Pagination: pagination,
		Timestamp:  f.timestamp.Format(time.RFC3339),
	}
}

// MapError translates a domain error into its HTTP status, stable error code,
// and client-facing message.
//
// Authentication, authorization, and internal failures get fixed generic
// messages so the response never reveals why they occurred. Validation and
// not-found failures keep the domain message, which is what the caller needs
// to correct the request. Conflicts surface as validation failures; the error
// code set has no separate conflict entry.
func MapError(err error) (statusCode int, errorCode string, message string) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity, CodeValidationError, err.Error()

	case apperrors.Is(err, apperrors.ErrConflict):
		return http.StatusUnprocessableEntity, CodeValidationError, err.Error()

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized, "authentication required: credentials are missing or invalid"

	case apperrors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, CodeForbidden, "you don't have permission to perform this action"

	case apperrors.Is(err, apperrors.ErrActionNotFound):
		return http.StatusNotFound, CodeActionNotFound, err.Error()

	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, err.Error()

	case apperrors.Is(err, apperrors.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed: use POST"

	case apperrors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimitExceeded, "rate limit exceeded, retry later"

	default:
		return http.StatusInternalServerError, CodeInternalServerError, "an internal error occurred"
	}
}

// HandleErrorGin maps a domain error to its envelope and writes it to the
// response. The full error is logged; the response carries only the mapped
// message and code.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	statusCode, errorCode, message := MapError(err)

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorCode),
			slog.String("request_id", requestid.Get(c)),
			slog.Any("error", err),
		)
	}

	formatter := NewFormatter(requestid.Get(c))
	c.JSON(statusCode, formatter.Error(message, errorCode, nil))
}

// HandleErrorCodeGin writes an error envelope with an explicit status and
// code, bypassing sentinel mapping. Used where the failure is known from the
// transport itself (unknown route, wrong verb, rate limit).
func HandleErrorCodeGin(c *gin.Context, statusCode int, errorCode string, message string, details map[string]any) {
	formatter := NewFormatter(requestid.Get(c))
	c.JSON(statusCode, formatter.Error(message, errorCode, details))
}

// WriteSuccessGin writes a success envelope.
func WriteSuccessGin(c *gin.Context, statusCode int, data any, message string) {
	formatter := NewFormatter(requestid.Get(c))
	c.JSON(statusCode, formatter.Success(data, message))
}

// WritePaginatedGin writes a paginated success envelope.
func WritePaginatedGin(c *gin.Context, data any, pagination *Pagination, message string) {
	formatter := NewFormatter(requestid.Get(c))
	c.JSON(http.StatusOK, formatter.Paginated(data, pagination, message))
}
