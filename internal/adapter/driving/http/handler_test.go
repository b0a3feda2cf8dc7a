package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
	"github.com/ericfisherdev/fundintake/internal/application"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

const testAdminToken = "s3cret-token"

// testProxies trusts forwarding headers from the 10/8 network only.
var testProxies = httphandler.TrustedProxies{netip.MustParsePrefix("10.0.0.0/8")}

// --- Mock implementations ---

type mockTable struct {
	mu   sync.Mutex
	rows map[string]string
}

func (m *mockTable) Exists(context.Context) (bool, error) { return true, nil }

func (m *mockTable) ListAll(context.Context) ([]model.SettingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.SettingRow, 0, len(m.rows))
	for k, v := range m.rows {
		out = append(out, model.SettingRow{Key: k, Value: v})
	}
	return out, nil
}

func (m *mockTable) UpsertAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.rows[k] = v
	}
	return nil
}

func (m *mockTable) InsertMissing(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		if _, ok := m.rows[k]; !ok {
			m.rows[k] = v
		}
	}
	return nil
}

type mockOptions struct{}

func (mockOptions) Get(context.Context, string) (map[string]string, error) {
	return nil, driven.ErrOptionNotFound
}
func (mockOptions) Put(context.Context, string, map[string]string) error { return nil }
func (mockOptions) Add(context.Context, string, map[string]string) error { return nil }

type mockTransport struct {
	mu    sync.Mutex
	err   error
	sent  []model.Envelope
	smtps int
}

func (m *mockTransport) Send(_ context.Context, env model.Envelope, override *model.SMTPOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, env)
	if override != nil {
		m.smtps++
	}
	return m.err
}

type mockArchive struct {
	records []model.SubmissionRecord
	err     error
	limit   int
}

func (m *mockArchive) Store(_ context.Context, r model.SubmissionRecord) error {
	m.records = append(m.records, r)
	return m.err
}

func (m *mockArchive) List(_ context.Context, limit int) ([]model.SubmissionRecord, error) {
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.records) {
		return m.records[:limit], nil
	}
	return m.records, nil
}

type mockStore struct {
	pingErr error
	current uint
	latest  uint
	dirty   bool
	err     error
}

func (m mockStore) Ping(context.Context) error { return m.pingErr }

func (m mockStore) SchemaVersion(context.Context) (uint, uint, bool, error) {
	return m.current, m.latest, m.dirty, m.err
}

func healthyStore() mockStore { return mockStore{current: 3, latest: 3} }

// --- Test helpers ---

type testEnv struct {
	table     *mockTable
	transport *mockTransport
	archive   *mockArchive
	handler   http.Handler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, pingErr error) *testEnv {
	store := healthyStore()
	store.pingErr = pingErr
	return newTestEnvWithStore(t, store)
}

func newTestEnvWithStore(t *testing.T, store mockStore) *testEnv {
	t.Helper()

	env := &testEnv{
		table:     &mockTable{rows: map[string]string{}},
		transport: &mockTransport{},
		archive:   &mockArchive{},
	}
	logger := discardLogger()
	now := func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }

	settings := application.NewSettingsService(env.table, mockOptions{},
		model.DefaultSettings("office@example.com", "Acme Funds"), logger)
	dispatcher := application.NewDispatcher(env.transport,
		application.DispatcherConfig{DefaultFrom: "noreply@example.com", SiteName: "Acme Funds"}, nil, logger)
	forms := application.NewFormService(application.NewValidator(now), settings,
		application.NewComposer("Acme Funds", "https://funds.example.com"),
		dispatcher, env.archive, nil, logger, now)

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(settings, forms, store, logger))
	env.handler = httphandler.ApplyMiddleware(mux, logger, httphandler.NewAdminAuth(testAdminToken), testProxies, nil)

	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if admin {
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/health", "", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
	require.NotNil(t, resp.Schema)
	assert.Equal(t, httphandler.SchemaHealth{Version: 3, Latest: 3}, *resp.Schema)
	_, err := time.Parse(time.RFC3339, resp.Time)
	assert.NoError(t, err)
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t, errors.New("database is locked"))

	rec := env.do(t, http.MethodGet, "/api/v1/health", "", false)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "unavailable", resp.Database)
	assert.Nil(t, resp.Schema)
}

func TestHealth_SchemaNotCurrent(t *testing.T) {
	tests := []struct {
		name  string
		store mockStore
	}{
		{"behind", mockStore{current: 2, latest: 3}},
		{"dirty", mockStore{current: 3, latest: 3, dirty: true}},
		{"unreadable", mockStore{err: errors.New("no such table: schema_migrations")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnvWithStore(t, tt.store)

			rec := env.do(t, http.MethodGet, "/api/v1/health", "", false)

			require.Equal(t, http.StatusServiceUnavailable, rec.Code)
			var resp httphandler.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "degraded", resp.Status)
			assert.Equal(t, "ok", resp.Database)
		})
	}
}

func TestAdminRoutes_RequireCredentials(t *testing.T) {
	env := newTestEnv(t, nil)

	routes := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/v1/settings"},
		{http.MethodPut, "/api/v1/settings"},
		{http.MethodPost, "/api/v1/settings/test-email"},
		{http.MethodGet, "/api/v1/submissions"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.target, func(t *testing.T) {
			rec := env.do(t, rt.method, rt.target, "", false)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, `Basic realm="fundintake"`, rec.Header().Get("WWW-Authenticate"))
		})
	}
	assert.Empty(t, env.transport.sent)
}

func TestAdminRoutes_BasicAuth(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	req.SetBasicAuth("admin", testAdminToken)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSettings_MasksPassword(t *testing.T) {
	env := newTestEnv(t, nil)
	env.table.rows[model.KeySMTPPassword] = "hunter2"

	rec := env.do(t, http.MethodGet, "/api/v1/settings", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.SettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, httphandler.PasswordMask, resp.Settings[model.KeySMTPPassword])
	assert.Equal(t, "office@example.com", resp.Settings[model.KeyToEmail])
	assert.Len(t, resp.Settings, len(model.SettingDefinitions))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestGetSettings_EmptyPasswordNotMasked(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/settings", "", true)

	var resp httphandler.SettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Settings[model.KeySMTPPassword])
	assert.NotNil(t, resp.Warnings)
}

func TestPutSettings(t *testing.T) {
	env := newTestEnv(t, nil)
	env.table.rows[model.KeySMTPPassword] = "hunter2"

	body := `{"smtp_host":"smtp.example.com","smtp_port":"99999","smtp_password":"********","to_email":"not-an-email"}`
	rec := env.do(t, http.MethodPut, "/api/v1/settings", body, true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.SettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "smtp.example.com", resp.Settings[model.KeySMTPHost])
	assert.Equal(t, model.DefaultSMTPPort, resp.Settings[model.KeySMTPPort])
	assert.Equal(t, "office@example.com", resp.Settings[model.KeyToEmail])
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, model.KeyToEmail, resp.Errors[0].Key)

	// The masked password was not written back.
	assert.Equal(t, "hunter2", env.table.rows[model.KeySMTPPassword])
}

func TestPutSettings_InvalidBody(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "smtp_host=x"},
		{name: "array", body: `["smtp_host"]`},
		{name: "non-string value", body: `{"smtp_port":587}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/api/v1/settings", tt.body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, env.table.rows)
}

func TestSendTestEmail(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/settings/test-email", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.TestEmailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "Test email sent successfully")

	require.Len(t, env.transport.sent, 1)
	assert.Equal(t, "office@example.com", env.transport.sent[0].To)
	assert.Zero(t, env.transport.smtps)
}

func TestSendTestEmail_Failure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.transport.err = errors.New("sendmail: exit status 1")

	rec := env.do(t, http.MethodPost, "/api/v1/settings/test-email", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.TestEmailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Failed to send test email.")
	assert.Contains(t, resp.Message, "exit status 1")
}

func TestListSubmissions(t *testing.T) {
	env := newTestEnv(t, nil)
	env.archive.records = []model.SubmissionRecord{
		{
			ID:          "b",
			Title:       "Form Submission - Asha - 2026-10-16 11:00:00",
			Payload:     `{"f1": "Asha"}`,
			IP:          "203.0.113.7",
			SubmittedAt: time.Date(2026, 10, 16, 11, 0, 0, 0, time.UTC),
			FormVersion: model.FormVersion,
		},
		{ID: "a", Payload: "not json", SubmittedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)},
	}

	rec := env.do(t, http.MethodGet, "/api/v1/submissions", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []httphandler.SubmissionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "b", resp[0].ID)
	assert.Equal(t, "Asha", resp[0].Fields["f1"])
	assert.Equal(t, "2026-10-16T11:00:00Z", resp[0].SubmittedAt)
	assert.Empty(t, resp[1].Fields)
	assert.Equal(t, 50, env.archive.limit)
}

func TestListSubmissions_Limit(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
	}{
		{name: "explicit", query: "?limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "capped", query: "?limit=10000", wantStatus: http.StatusOK, wantLimit: 500},
		{name: "zero", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "garbage", query: "?limit=ten", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			rec := env.do(t, http.MethodGet, "/api/v1/submissions"+tt.query, "", true)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantLimit, env.archive.limit)
				assert.JSONEq(t, "[]", rec.Body.String())
			}
		})
	}
}

func TestListSubmissions_StoreError(t *testing.T) {
	env := newTestEnv(t, nil)
	env.archive.err = errors.New("disk I/O error")

	rec := env.do(t, http.MethodGet, "/api/v1/submissions", "", true)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk I/O")
}
