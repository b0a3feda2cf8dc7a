// Package web implements the HTML form and admin pages using templ components.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
	"github.com/ericfisherdev/fundintake/internal/application"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

const (
	maxFormBytes      = 1 << 20
	submissionsLimit  = 100
	securityCheckFail = "Security check failed. Please refresh the page and try again."
)

// submitResponse is the JSON body returned to the form script.
type submitResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	MessageHTML string   `json:"message_html,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	forms    *application.FormService
	settings *application.SettingsService
	limiter  httphandler.RateLimiter
	siteName string
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	forms *application.FormService,
	settings *application.SettingsService,
	limiter httphandler.RateLimiter,
	siteName string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		forms:    forms,
		settings: settings,
		limiter:  limiter,
		siteName: siteName,
		logger:   logger,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layout(title+" | "+h.siteName, body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Form renders the application form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Mutual Fund Application", formPage(csrfToken(w, r)))
}

// Submit processes a form post and answers with JSON for the form script.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Errors: []string{"The form could not be read. Please try again."}})
		return
	}

	if !validateCSRF(r) {
		writeJSON(w, http.StatusForbidden, submitResponse{Errors: []string{securityCheckFail}})
		return
	}

	fields := make(model.Submission, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	ctx := r.Context()
	result := h.forms.Process(ctx, fields, application.CallerFrom(ctx))

	resp := submitResponse{Success: result.Success, Message: result.Message, Errors: result.Errors}
	if result.Success {
		resp.MessageHTML = RenderMarkdown(result.Message)
	}
	writeJSON(w, http.StatusOK, resp)
}

// SettingsPage renders the admin settings form.
func (h *Handler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.render(w, r, "Settings", settingsPage(settingsPageData{
		CSRF:     csrfToken(w, r),
		Settings: h.settings.GetAll(ctx),
		Warnings: h.settings.Warnings(ctx),
	}))
}

// SaveSettings stores the posted settings and re-renders the form with any
// field errors.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	if !validateCSRF(r) {
		http.Error(w, securityCheckFail, http.StatusForbidden)
		return
	}

	input := make(map[string]string, len(model.SettingDefinitions))
	for _, def := range model.SettingDefinitions {
		values, ok := r.PostForm[def.Key]
		if !ok || len(values) == 0 {
			continue
		}
		// A checked box follows its hidden "0" input, so the last value wins.
		value := values[len(values)-1]
		if def.Kind == model.SettingKindPassword && value == httphandler.PasswordMask {
			continue
		}
		input[def.Key] = value
	}

	ctx := r.Context()
	res := h.settings.Save(ctx, input)
	h.logger.Info("settings saved from admin page", "keys", len(input), "field_errors", len(res.Errors))

	h.render(w, r, "Settings", settingsPage(settingsPageData{
		CSRF:     csrfToken(w, r),
		Settings: res.Settings,
		Errors:   res.Errors,
		Warnings: h.settings.Warnings(ctx),
		Saved:    true,
	}))
}

// SendTestEmail sends a connectivity test and answers with JSON.
func (h *Handler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		writeJSON(w, http.StatusForbidden, httphandler.TestEmailResponse{Message: securityCheckFail})
		return
	}

	ctx := r.Context()
	res := h.forms.SendTest(ctx, application.CallerFrom(ctx))
	writeJSON(w, http.StatusOK, httphandler.NewTestEmailResponse(res))
}

// Submissions lists archived submissions, newest first.
func (h *Handler) Submissions(w http.ResponseWriter, r *http.Request) {
	records, err := h.forms.ListSubmissions(r.Context(), submissionsLimit)
	if err != nil {
		h.logger.Error("failed to list submissions", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "Submissions", submissionsPage(records))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
