package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/fundintake/internal/application"
)

// MetricsRecorder receives per-request measurements.
type MetricsRecorder interface {
	ObserveHTTP(method, path string, status int, duration time.Duration)
	IncInFlight()
	DecInFlight()
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// ApplyMiddleware wraps the mux with caller resolution, logging, metrics and
// panic recovery. metrics may be nil.
func ApplyMiddleware(mux http.Handler, logger *slog.Logger, auth *AdminAuth, proxies TrustedProxies, metrics MetricsRecorder) http.Handler {
	// Recovery innermost so panics are caught before logging. Caller
	// resolution is outermost so every later layer sees the same request
	// value that the mux annotates with its matched pattern.
	wrapped := recoveryMiddleware(logger, mux)
	if metrics != nil {
		wrapped = metricsMiddleware(metrics, wrapped)
	}
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = callerMiddleware(auth, proxies, wrapped)

	return wrapped
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		caller := application.CallerFrom(r.Context())
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
			"client_ip", caller.IP,
			"admin", caller.Admin,
		)
	})
}

// metricsMiddleware records request counts and latency by route pattern.
func metricsMiddleware(metrics MetricsRecorder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		metrics.IncInFlight()
		defer metrics.DecInFlight()

		next.ServeHTTP(sw, r)

		// ServeMux records the matched pattern on the request it was given.
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.ObserveHTTP(r.Method, pattern, sw.status, time.Since(start))
	})
}

// callerMiddleware resolves the client address and admin privilege once per
// request and stores them in the context.
func callerMiddleware(auth *AdminAuth, proxies TrustedProxies, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := application.Caller{
			IP:        ClientIP(r, proxies),
			UserAgent: r.UserAgent(),
			Admin:     auth.IsAdmin(r),
		}
		next.ServeHTTP(w, r.WithContext(application.WithCaller(r.Context(), caller)))
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers without admin privilege with 401 and a Basic
// challenge so browsers prompt for credentials.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !application.CallerFrom(r.Context()).Admin {
			w.Header().Set("WWW-Authenticate", `Basic realm="fundintake"`)
			writeError(w, http.StatusUnauthorized, "admin credentials required")
			return
		}
		next(w, r)
	}
}
