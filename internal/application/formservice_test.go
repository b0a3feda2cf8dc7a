package application_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fundintake/internal/application"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

type formFixture struct {
	svc       *application.FormService
	settings  *application.SettingsService
	table     *fakeTable
	transport *fakeTransport
	archive   *fakeArchive
	observer  *fakeObserver
}

func newFormFixture(t *testing.T) *formFixture {
	t.Helper()

	f := &formFixture{
		table:     newFakeTable(),
		transport: &fakeTransport{},
		archive:   &fakeArchive{},
		observer:  &fakeObserver{},
	}
	f.settings = application.NewSettingsService(f.table, newFakeOptions(), testDefaults(), discardLogger())
	dispatcher := newDispatcher(f.transport, f.observer, false)
	f.svc = application.NewFormService(
		newValidator(),
		f.settings,
		newComposer(),
		dispatcher,
		f.archive,
		f.observer,
		discardLogger(),
		func() time.Time { return fixedNow },
	)
	return f
}

func TestFormService_EndToEndSuccess(t *testing.T) {
	f := newFormFixture(t)
	caller := application.Caller{IP: "203.0.113.7", UserAgent: "Mozilla/5.0"}

	res := f.svc.Process(context.Background(), validFields(), caller)

	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Empty(t, res.Errors)
	assert.Equal(t, testDefaults()[model.KeySuccessMessage], res.Message)

	require.Len(t, f.transport.calls, 1)
	env := f.transport.calls[0].env
	assert.Equal(t, "admin@example.com", env.To)
	assert.Equal(t, "New Mutual Fund Application - Asha Verma", env.Subject)
	assert.Equal(t, "asha@example.com", env.ReplyTo)
	assert.Contains(t, env.HTMLBody, "Personal Information")
	assert.NotContains(t, env.HTMLBody, "Spouse Name")
	assert.NotContains(t, env.HTMLBody, "Guardian Name")

	assert.Equal(t, []string{application.OutcomeAccepted}, f.observer.outcomes)
}

func TestFormService_ArchivesWhenEnabled(t *testing.T) {
	f := newFormFixture(t)

	res := f.svc.Process(context.Background(), validFields(), application.Caller{IP: "203.0.113.7", UserAgent: "UA"})
	require.True(t, res.Success)

	require.Len(t, f.archive.records, 1)
	rec := f.archive.records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Form Submission - Asha Verma - 2026-10-16 12:00:00", rec.Title)
	assert.Equal(t, "203.0.113.7", rec.IP)
	assert.Equal(t, "UA", rec.UserAgent)
	assert.Equal(t, model.FormVersion, rec.FormVersion)
	assert.True(t, rec.SubmittedAt.Equal(fixedNow))

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(rec.Payload), &payload))
	assert.Equal(t, "Asha Verma", payload["f1"])
	assert.NotContains(t, payload, "nonce")
}

func TestFormService_NoArchiveWhenDisabled(t *testing.T) {
	f := newFormFixture(t)
	f.table.rows[model.KeyStoreSubmissions] = "0"

	res := f.svc.Process(context.Background(), validFields(), application.Caller{})
	require.True(t, res.Success)
	assert.Empty(t, f.archive.records)
}

func TestFormService_ArchiveFailureIsNonFatal(t *testing.T) {
	f := newFormFixture(t)
	f.archive.err = errBoom

	res := f.svc.Process(context.Background(), validFields(), application.Caller{})
	assert.True(t, res.Success)
}

func TestFormService_ValidationFailureSendsNothing(t *testing.T) {
	f := newFormFixture(t)
	fields := validFields()
	delete(fields, "f1")

	res := f.svc.Process(context.Background(), fields, application.Caller{})
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Name is required."}, res.Errors)
	assert.Empty(t, f.transport.calls)
	assert.Equal(t, []string{application.OutcomeRejected}, f.observer.outcomes)
}

func TestFormService_SendFailureDisclosure(t *testing.T) {
	t.Run("anonymous caller gets generic message", func(t *testing.T) {
		f := newFormFixture(t)
		f.transport.err = errBoom

		res := f.svc.Process(context.Background(), validFields(), application.Caller{})
		assert.False(t, res.Success)
		assert.Equal(t, []string{"Failed to send email. Please try again."}, res.Errors)
		assert.Empty(t, f.archive.records)
		assert.Equal(t, []string{application.OutcomeFailed}, f.observer.outcomes)
	})

	t.Run("admin gets debug info", func(t *testing.T) {
		f := newFormFixture(t)
		f.transport.err = errBoom

		res := f.svc.Process(context.Background(), validFields(), application.Caller{Admin: true})
		require.Len(t, res.Errors, 1)
		assert.Equal(t,
			"Failed to send email. Please try again. Debug info: Mail transport failed. Errors: boom SMTP Debug: none",
			res.Errors[0])
	})
}

func TestFormService_SMTPEnabledEmptyHostStillDelivers(t *testing.T) {
	f := newFormFixture(t)
	f.table.rows[model.KeyEnableSMTP] = "1"
	f.table.rows[model.KeySMTPHost] = ""

	res := f.svc.Process(context.Background(), validFields(), application.Caller{})
	assert.True(t, res.Success)
	require.Len(t, f.transport.calls, 1)
	assert.Nil(t, f.transport.calls[0].override)
}

func TestFormService_SendTest(t *testing.T) {
	f := newFormFixture(t)
	f.table.rows[model.KeyEnableSMTP] = "1"
	f.table.rows[model.KeySMTPHost] = "smtp.example.com"

	res := f.svc.SendTest(context.Background(), application.Caller{Admin: true, IP: "198.51.100.1"})
	assert.True(t, res.Success)

	require.Len(t, f.transport.calls, 1)
	call := f.transport.calls[0]
	assert.Equal(t, "Test Email - Mutual Fund Form SMTP Settings - 12:00:00", call.env.Subject)
	assert.Equal(t, "admin@example.com", call.env.To)
	assert.Contains(t, call.env.HTMLBody, "SMTP Test Email")
	require.NotNil(t, call.override)
	assert.NotNil(t, call.override.Trace)
}

func TestFormService_ListSubmissions(t *testing.T) {
	f := newFormFixture(t)
	f.archive.records = []model.SubmissionRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got, err := f.svc.ListSubmissions(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	f.archive.err = errBoom
	_, err = f.svc.ListSubmissions(context.Background(), 2)
	assert.ErrorIs(t, err, errBoom)
}
