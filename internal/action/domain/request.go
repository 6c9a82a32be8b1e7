package domain

import (
	"encoding/json"
	"time"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
)

// Request is the per-call context the dispatcher owns: the raw request body,
// the authenticated credential, and the identifiers correlating the call
// with logs and audit entries. It lives for the duration of one dispatch and
// is never persisted.
//
// The transport fills RequestID, Credential, Params, and StartedAt; the
// dispatcher fills ActionType after the shape check and Descriptor after
// registry resolution.
type Request struct {
	RequestID  string
	Credential *authDomain.Credential // nil when authentication did not run
	ActionType string
	Descriptor *Descriptor
	Params     json.RawMessage // Raw request body; handlers unmarshal their own fields
	StartedAt  time.Time
}

// Envelope customizes how Execute output is rendered. Handlers return it
// when the success envelope needs a message or a pagination block; any other
// return value renders as a bare success envelope.
type Envelope struct {
	Data       any
	Message    string
	Pagination *PageInfo
}

// PageInfo carries the 1-based page position of a paginated result. The
// dispatcher expands it into the full pagination block of the response.
type PageInfo struct {
	Page    int
	PerPage int
	Total   int64
}
