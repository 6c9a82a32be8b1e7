package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

const (
	healthStatusHealthy  = "healthy"
	healthStatusDegraded = "degraded"
)

// pingHandler answers liveness probes through the dispatch path.
type pingHandler struct{}

func (h *pingHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "system.ping",
		Version:     "1.0.0",
		Description: "Answers pong with the current server time.",
		Examples: []actionDomain.Example{{
			Name:     "ping",
			Request:  map[string]any{"action_type": "system.ping"},
			Response: map[string]any{"message": "pong"},
		}},
	}
}

func (h *pingHandler) Validate(params json.RawMessage) error {
	return nil
}

func (h *pingHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	return map[string]any{
		"message":     "pong",
		"server_time": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *pingHandler) RequiredCapabilities() []authDomain.Capability {
	return nil
}

// infoResponse is the system.info payload.
type infoResponse struct {
	Version        string `json:"version"`
	GoVersion      string `json:"go_version"`
	OS             string `json:"os"`
	Arch           string `json:"arch"`
	NumGoroutine   int    `json:"num_goroutine"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	TotalActions   int    `json:"total_actions"`
	EnabledActions int    `json:"enabled_actions"`
}

// infoHandler reports build and runtime information plus catalog counts.
type infoHandler struct {
	version   string
	startedAt time.Time
	actions   ActionCatalog
}

func (h *infoHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "system.info",
		Version:     "1.0.0",
		Description: "Reports build, runtime, and action catalog information.",
		Examples: []actionDomain.Example{{
			Name:    "info",
			Request: map[string]any{"action_type": "system.info"},
		}},
	}
}

func (h *infoHandler) Validate(params json.RawMessage) error {
	return nil
}

func (h *infoHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	descriptors, err := h.actions.ListAll()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to inspect action catalog")
	}

	enabled := 0
	for _, descriptor := range descriptors {
		if descriptor.Enabled {
			enabled++
		}
	}

	return infoResponse{
		Version:        h.version,
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		NumGoroutine:   runtime.NumGoroutine(),
		UptimeSeconds:  int64(time.Since(h.startedAt).Seconds()),
		TotalActions:   len(descriptors),
		EnabledActions: enabled,
	}, nil
}

func (h *infoHandler) RequiredCapabilities() []authDomain.Capability {
	return readOnly
}

// healthHandler is the authenticated, detailed health check. The public
// GET /health endpoint stays outside the dispatch path.
type healthHandler struct {
	db      Pinger
	actions ActionCatalog
}

func (h *healthHandler) Describe() actionDomain.Descriptor {
	return actionDomain.Descriptor{
		ActionType:  "system.health",
		Version:     "1.0.0",
		Description: "Checks database connectivity and action catalog state.",
		Examples: []actionDomain.Example{{
			Name:     "health",
			Request:  map[string]any{"action_type": "system.health"},
			Response: map[string]any{"status": healthStatusHealthy},
		}},
	}
}

func (h *healthHandler) Validate(params json.RawMessage) error {
	return nil
}

func (h *healthHandler) Execute(ctx context.Context, request *actionDomain.Request) (any, error) {
	checks := make(map[string]string, 2)
	status := healthStatusHealthy

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = healthStatusDegraded
	} else {
		checks["database"] = healthStatusHealthy
	}

	if descriptors, err := h.actions.ListAll(); err != nil {
		checks["registry"] = "unhealthy: " + err.Error()
		status = healthStatusDegraded
	} else {
		checks["registry"] = fmt.Sprintf("healthy: %d actions registered", len(descriptors))
	}

	return map[string]any{
		"status": status,
		"checks": checks,
	}, nil
}

func (h *healthHandler) RequiredCapabilities() []authDomain.Capability {
	return readOnly
}

func newPingHandler() *pingHandler {
	return &pingHandler{}
}

func newInfoHandler(version string, startedAt time.Time, actions ActionCatalog) *infoHandler {
	return &infoHandler{
		version:   version,
		startedAt: startedAt,
		actions:   actions,
	}
}

func newHealthHandler(db Pinger, actions ActionCatalog) *healthHandler {
	return &healthHandler{
		db:      db,
		actions: actions,
	}
}
