package httphandler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
	"github.com/ericfisherdev/fundintake/internal/application"
)

func TestTokenBucketLimiter_PerKey(t *testing.T) {
	limiter := httphandler.NewPerMinuteLimiter(1, 2)

	assert.True(t, limiter.Allow("203.0.113.1"))
	assert.True(t, limiter.Allow("203.0.113.1"))
	assert.False(t, limiter.Allow("203.0.113.1"))

	assert.True(t, limiter.Allow("203.0.113.2"), "other clients have their own bucket")
}

func TestRateLimit(t *testing.T) {
	calls := 0
	next := func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}
	h := httphandler.ApplyMiddleware(
		http.HandlerFunc(httphandler.RateLimit(httphandler.NewPerMinuteLimiter(1, 1), 60, next)),
		discardLogger(), httphandler.NewAdminAuth(testAdminToken), testProxies, nil,
	)

	send := func(admin bool) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/submit", nil)
		r.RemoteAddr = "198.51.100.30:1234"
		if admin {
			r.Header.Set("Authorization", "Bearer "+testAdminToken)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusOK, send(false).Code)

	rec := send(false)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body application.FormResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.Len(t, body.Errors, 1)
	assert.Contains(t, body.Errors[0], "Too many submissions")

	assert.Equal(t, http.StatusOK, send(true).Code, "admins are not limited")
	assert.Equal(t, 2, calls)
}

func TestRateLimit_IgnoresSpoofedForwardingHeaders(t *testing.T) {
	calls := 0
	next := func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}
	h := httphandler.ApplyMiddleware(
		http.HandlerFunc(httphandler.RateLimit(httphandler.NewPerMinuteLimiter(10, 5), 60, next)),
		discardLogger(), nil, testProxies, nil,
	)

	for i := range 50 {
		r := httptest.NewRequest(http.MethodPost, "/submit", nil)
		r.RemoteAddr = "198.51.100.31:4000"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	assert.Equal(t, 5, calls, "a direct client cannot mint buckets by rotating X-Forwarded-For")
}

func TestRateLimit_TrustedProxyKeysOnForwardedClient(t *testing.T) {
	calls := 0
	next := func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}
	h := httphandler.ApplyMiddleware(
		http.HandlerFunc(httphandler.RateLimit(httphandler.NewPerMinuteLimiter(1, 1), 60, next)),
		discardLogger(), nil, testProxies, nil,
	)

	send := func(client string) int {
		r := httptest.NewRequest(http.MethodPost, "/submit", nil)
		r.RemoteAddr = "10.0.0.2:8080"
		r.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.10"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.10"))
	assert.Equal(t, http.StatusOK, send("203.0.113.11"), "each forwarded client has its own bucket")
	assert.Equal(t, 2, calls)
}
