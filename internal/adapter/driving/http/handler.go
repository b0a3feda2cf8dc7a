// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/fundintake/internal/application"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

const (
	defaultSubmissionLimit = 50
	maxSubmissionLimit     = 500
	maxSettingsBodyBytes   = 64 << 10
)

// StoreHealth reports storage liveness and schema state.
type StoreHealth interface {
	Ping(ctx context.Context) error
	SchemaVersion(ctx context.Context) (current, latest uint, dirty bool, err error)
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	settings *application.SettingsService
	forms    *application.FormService
	db       StoreHealth
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	settings *application.SettingsService,
	forms *application.FormService,
	db StoreHealth,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		settings: settings,
		forms:    forms,
		db:       db,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers every /api/v1 route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/settings", RequireAdmin(h.GetSettings))
	mux.HandleFunc("PUT /api/v1/settings", RequireAdmin(h.PutSettings))
	mux.HandleFunc("POST /api/v1/settings/test-email", RequireAdmin(h.SendTestEmail))
	mux.HandleFunc("GET /api/v1/submissions", RequireAdmin(h.ListSubmissions))
}

// Health reports whether the database answers and the schema is current.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := HealthResponse{
		Status:   healthOK,
		Time:     time.Now().UTC().Format(time.RFC3339),
		Database: healthOK,
	}

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		resp.Status = healthUnavailable
		resp.Database = healthUnavailable
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	current, latest, dirty, err := h.db.SchemaVersion(ctx)
	if err != nil {
		h.logger.Error("schema version check failed", "error", err)
		resp.Status = healthDegraded
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Schema = &SchemaHealth{Version: current, Latest: latest, Dirty: dirty}

	if dirty || current != latest {
		h.logger.Warn("schema not current", "version", current, "latest", latest, "dirty", dirty)
		resp.Status = healthDegraded
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetSettings returns the effective settings with the password masked.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, toSettingsResponse(h.settings.GetAll(ctx), h.settings.Warnings(ctx), nil))
}

// PutSettings saves the keys present in the JSON object body. Absent keys
// keep their stored values.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSettingsBodyBytes)

	var input map[string]string
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON object of string values")
		return
	}

	if input[model.KeySMTPPassword] == PasswordMask {
		delete(input, model.KeySMTPPassword)
	}

	ctx := r.Context()
	res := h.settings.Save(ctx, input)
	h.logger.Info("settings saved", "keys", len(input), "field_errors", len(res.Errors))

	writeJSON(w, http.StatusOK, toSettingsResponse(res.Settings, h.settings.Warnings(ctx), res.Errors))
}

// SendTestEmail sends a connectivity test to the configured recipient.
func (h *Handler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	res := h.forms.SendTest(r.Context(), application.CallerFrom(r.Context()))
	writeJSON(w, http.StatusOK, NewTestEmailResponse(res))
}

// NewTestEmailResponse converts a test send result into its response body.
func NewTestEmailResponse(res model.SendResult) TestEmailResponse {
	if res.Success {
		return TestEmailResponse{Success: true, Message: "Test email sent successfully! Check your inbox."}
	}
	return TestEmailResponse{Message: "Failed to send test email. " + res.Diagnostic}
}

// ListSubmissions returns the newest archived submissions. ?limit= caps the
// count between 1 and 500.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSubmissionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxSubmissionLimit)
	}

	records, err := h.forms.ListSubmissions(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list submissions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]SubmissionResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toSubmissionResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}
