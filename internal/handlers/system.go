package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const healthTimeout = 3 * time.Second

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx)
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Migrator applies pending schema migrations and returns the applied versions
type Migrator func(ctx context.Context) ([]int64, error)

// SystemHandler serves health checks and schema setup
type SystemHandler struct {
	checks  map[string]Pinger
	migrate Migrator
}

// NewSystemHandler creates a system handler. checks are probed by the health
// endpoint by name; migrate may be nil when the store has no schema.
func NewSystemHandler(checks map[string]Pinger, migrate Migrator) *SystemHandler {
	return &SystemHandler{
		checks:  checks,
		migrate: migrate,
	}
}

// HealthResponse represents the health check result
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			log.Error().Err(err).Str("check", name).Msg("Health check failed")
			resp.Status = "unavailable"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

// SetupResponse lists the migrations applied by a setup call
type SetupResponse struct {
	Applied []int64 `json:"applied"`
}

// Setup handles POST /setup. Calling it on an up-to-date schema applies nothing.
func (h *SystemHandler) Setup(w http.ResponseWriter, r *http.Request) {
	resp := SetupResponse{Applied: []int64{}}
	if h.migrate == nil {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	applied, err := h.migrate(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize schema")
		respondError(w, "Failed to initialize schema", http.StatusInternalServerError)
		return
	}
	resp.Applied = append(resp.Applied, applied...)

	log.Info().Ints64("versions", applied).Msg("Schema initialized")

	respondJSON(w, http.StatusOK, resp)
}
