package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// Health status values.
const (
	healthOK          = "ok"
	healthUnavailable = "unavailable"
	healthDegraded    = "degraded"
)

// HealthResponse is the JSON representation of the health check endpoint.
// Schema is omitted when the database could not be reached.
type HealthResponse struct {
	Status   string        `json:"status"`
	Time     string        `json:"time"`
	Database string        `json:"database"`
	Schema   *SchemaHealth `json:"schema,omitempty"`
}

// SchemaHealth describes the applied migration state.
type SchemaHealth struct {
	Version uint `json:"version"`
	Latest  uint `json:"latest"`
	Dirty   bool `json:"dirty"`
}

// PasswordMask replaces a stored SMTP password in responses. Sending it back
// unchanged keeps the stored password.
const PasswordMask = "********"

// SettingsResponse is the JSON representation of the effective settings.
type SettingsResponse struct {
	Settings map[string]string  `json:"settings"`
	Warnings []string           `json:"warnings"`
	Errors   []model.FieldError `json:"errors,omitempty"`
}

// TestEmailResponse is the JSON body of the test-email endpoint.
type TestEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubmissionResponse is the JSON representation of an archived submission.
type SubmissionResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Fields      map[string]string `json:"fields"`
	IP          string            `json:"ip"`
	UserAgent   string            `json:"user_agent"`
	FormVersion string            `json:"form_version"`
	SubmittedAt string            `json:"submitted_at"`
}

func toSettingsResponse(settings model.Settings, warnings []string, errs []model.FieldError) SettingsResponse {
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		if model.IsSensitiveSetting(k) && v != "" {
			v = PasswordMask
		}
		out[k] = v
	}
	if warnings == nil {
		warnings = []string{}
	}
	return SettingsResponse{Settings: out, Warnings: warnings, Errors: errs}
}

func toSubmissionResponse(rec model.SubmissionRecord) SubmissionResponse {
	fields := map[string]string{}
	// The payload is written by this service; a decode failure leaves fields empty.
	_ = json.Unmarshal([]byte(rec.Payload), &fields)

	return SubmissionResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		Fields:      fields,
		IP:          rec.IP,
		UserAgent:   rec.UserAgent,
		FormVersion: rec.FormVersion,
		SubmittedAt: rec.SubmittedAt.UTC().Format(time.RFC3339),
	}
}
