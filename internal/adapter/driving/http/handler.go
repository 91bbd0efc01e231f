package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/ttsvault/internal/application"
	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	store   Pinger
	orgs    driven.OrganizationStore
	vault   *application.CredentialVault
	proxy   *application.ProxyService
	gen     *application.GenerationService
	ledger  *application.JobLedger
	archive driven.AudioArchive
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. archive may
// be nil when no audio archive is configured.
func NewHandler(
	store Pinger,
	orgs driven.OrganizationStore,
	vault *application.CredentialVault,
	proxy *application.ProxyService,
	gen *application.GenerationService,
	ledger *application.JobLedger,
	archive driven.AudioArchive,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:   store,
		orgs:    orgs,
		vault:   vault,
		proxy:   proxy,
		gen:     gen,
		ledger:  ledger,
		archive: archive,
		logger:  logger,
	}
}

// ServerOptions carries the optional parts of the HTTP surface.
type ServerOptions struct {
	// AdminSecret guards the credential admin routes. Empty disables the guard.
	AdminSecret []byte
	// Metrics is served at /metrics when non-nil.
	Metrics http.Handler
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, opts ServerOptions, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAdmin(opts.AdminSecret, logger, next)
	}

	mux.HandleFunc("POST /api/v1/organizations", h.SyncOrganization)

	mux.HandleFunc("PUT /api/v1/credentials", admin(h.StoreCredential))
	mux.HandleFunc("DELETE /api/v1/credentials", admin(h.DeleteCredential))
	mux.HandleFunc("POST /api/v1/credentials/decrypt", admin(h.DecryptCredential))
	mux.HandleFunc("POST /api/v1/credentials/validate", h.ValidateCredential)

	mux.HandleFunc("GET /api/v1/elevenlabs/voices", h.ListVoices)
	mux.HandleFunc("GET /api/v1/elevenlabs/history", h.ListHistory)
	mux.HandleFunc("GET /api/v1/elevenlabs/history/{id}/audio", h.HistoryAudio)
	mux.HandleFunc("POST /api/v1/elevenlabs/generate", h.Generate)

	mux.HandleFunc("GET /api/v1/jobs/{id}", h.GetJob)
	mux.HandleFunc("PATCH /api/v1/jobs/{id}", h.UpdateJob)
	mux.HandleFunc("GET /api/v1/jobs/{id}/audio", h.JobAudio)

	mux.HandleFunc("GET /api/v1/health", h.Health)

	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// SyncOrganization creates or renames an organization pushed by the host system.
func (h *Handler) SyncOrganization(w http.ResponseWriter, r *http.Request) {
	var req SyncOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	orgID := strings.TrimSpace(req.OrganizationID)
	if orgID == "" {
		writeError(w, http.StatusBadRequest, "organization_uuid is required")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = model.DefaultOrganizationName(orgID)
	}

	org, created, err := h.orgs.UpsertOrganization(r.Context(), orgID, name)
	if err != nil {
		h.writeServiceError(w, err, "sync organization")
		return
	}

	resp := SyncOrganizationResponse{Success: true, Organization: toOrganizationResponse(org)}
	status := http.StatusOK
	if created {
		resp.Created = true
		status = http.StatusCreated
	} else {
		resp.Updated = true
	}

	writeJSON(w, status, resp)
}

// Health reports "ok" when the record store answers a ping and
// "unavailable" with 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)}

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		resp.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeServiceError maps application and adapter errors to HTTP responses.
// Internal faults are logged and answered with a generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, action string) {
	var upstream *driven.UpstreamError

	switch {
	case errors.Is(err, application.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, invalidStatusMessage())
	case errors.Is(err, application.ErrNotConfigured):
		writeError(w, http.StatusNotFound, "API credentials not found. Please configure your API key.")
	case errors.Is(err, driven.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, driven.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "Invalid API key")
	case errors.As(err, &upstream):
		writeJSON(w, upstreamStatus(upstream.StatusCode), errorResponse{
			Error:   fmt.Sprintf("ElevenLabs API error: %d", upstream.StatusCode),
			Details: upstream.Body,
		})
	case errors.Is(err, driven.ErrUpstreamUnreachable):
		h.logger.Error("provider unreachable", "action", action, "error", err)
		writeError(w, http.StatusBadGateway, "ElevenLabs API unreachable")
	default:
		h.logger.Error("request failed", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// upstreamStatus forwards provider error statuses. Anything outside the
// 4xx/5xx range is reported as a bad gateway.
func upstreamStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	return http.StatusBadGateway
}

func invalidStatusMessage() string {
	names := make([]string, 0, len(model.JobStatuses))
	for _, s := range model.JobStatuses {
		names = append(names, string(s))
	}
	return "Invalid status. Must be one of: " + strings.Join(names, ", ")
}
