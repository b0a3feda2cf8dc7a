package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
)

func healthServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, healthPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if s, ok := body.(string); ok {
			_, _ = w.Write([]byte(s))
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	current := &httphandler.SchemaHealth{Version: 3, Latest: 3}

	tests := []struct {
		name    string
		status  int
		body    any
		wantErr string
	}{
		{
			name:   "healthy",
			status: http.StatusOK,
			body:   httphandler.HealthResponse{Status: "ok", Database: "ok", Schema: current},
		},
		{
			name:    "database down",
			status:  http.StatusServiceUnavailable,
			body:    httphandler.HealthResponse{Status: "unavailable", Database: "unavailable"},
			wantErr: `database "unavailable"`,
		},
		{
			name:    "schema behind",
			status:  http.StatusServiceUnavailable,
			body:    httphandler.HealthResponse{Status: "degraded", Database: "ok", Schema: &httphandler.SchemaHealth{Version: 2, Latest: 3}},
			wantErr: "schema version 2, want 3",
		},
		{
			name:    "schema dirty",
			status:  http.StatusServiceUnavailable,
			body:    httphandler.HealthResponse{Status: "degraded", Database: "ok", Schema: &httphandler.SchemaHealth{Version: 3, Latest: 3, Dirty: true}},
			wantErr: "schema version 3 is dirty",
		},
		{
			name:    "schema unreadable",
			status:  http.StatusServiceUnavailable,
			body:    httphandler.HealthResponse{Status: "degraded", Database: "ok"},
			wantErr: "schema state missing",
		},
		{
			name:    "ok body with error status",
			status:  http.StatusInternalServerError,
			body:    httphandler.HealthResponse{Status: "ok", Database: "ok", Schema: current},
			wantErr: "HTTP 500",
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    "OK",
			wantErr: "decode health body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := healthServer(t, tt.status, tt.body)

			err := check(context.Background(), srv.Client(), srv.URL+healthPath)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun(t *testing.T) {
	srv := healthServer(t, http.StatusServiceUnavailable,
		httphandler.HealthResponse{Status: "unavailable", Database: "unavailable"})
	addr := strings.TrimPrefix(srv.URL, "http://")

	var stderr bytes.Buffer
	assert.Equal(t, 1, run(addr, &stderr))
	assert.Contains(t, stderr.String(), "unhealthy: database")

	ok := healthServer(t, http.StatusOK, httphandler.HealthResponse{
		Status: "ok", Database: "ok", Schema: &httphandler.SchemaHealth{Version: 3, Latest: 3},
	})
	stderr.Reset()
	assert.Equal(t, 0, run(strings.TrimPrefix(ok.URL, "http://"), &stderr))
	assert.Empty(t, stderr.String())
}

func TestRun_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	var stderr bytes.Buffer
	assert.Equal(t, 1, run(addr, &stderr))
	assert.Contains(t, stderr.String(), "unhealthy: request")
}

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "127.0.0.1:8080"},
		{"garbage", "127.0.0.1:8080"},
		{"0.0.0.0:9090", "127.0.0.1:9090"},
		{":9090", "127.0.0.1:9090"},
		{"[::]:9090", "[::1]:9090"},
		{"10.0.0.5:8080", "10.0.0.5:8080"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.raw))
		})
	}
}
