package web

import (
	"io/fs"
	"net/http"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
)

// submitRetryAfterSeconds is advertised to rate-limited clients.
const submitRetryAfterSeconds = 60

// RegisterRoutes registers the form, admin pages and static assets on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Form)
	mux.HandleFunc("POST /submit", httphandler.RateLimit(h.limiter, submitRetryAfterSeconds, h.Submit))

	mux.HandleFunc("GET /admin/settings", httphandler.RequireAdmin(h.SettingsPage))
	mux.HandleFunc("POST /admin/settings", httphandler.RequireAdmin(h.SaveSettings))
	mux.HandleFunc("POST /admin/test-email", httphandler.RequireAdmin(h.SendTestEmail))
	mux.HandleFunc("GET /admin/submissions", httphandler.RequireAdmin(h.Submissions))
}
