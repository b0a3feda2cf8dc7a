package application_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fundintake/internal/application"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

func newComposer() *application.Composer {
	return application.NewComposer("Test Site", "https://funds.example.com")
}

func TestComposer_SubmissionSectionsAndRows(t *testing.T) {
	fields := newValidator().Validate(validFields()).Fields
	caller := application.Caller{IP: "203.0.113.7", UserAgent: "Mozilla/5.0"}

	body, err := newComposer().Submission(context.Background(), fields, caller, fixedNow)
	require.NoError(t, err)

	assert.Contains(t, body, "Personal Information")
	assert.Contains(t, body, "Nominee Information")
	assert.NotContains(t, body, "Bank Information")
	assert.NotContains(t, body, "FATCA Information")
	assert.NotContains(t, body, "Spouse Name")
	assert.NotContains(t, body, "Guardian Name")

	assert.Contains(t, body, "<tr><th>Full Name</th><td>Asha Verma</td></tr>")
	assert.Contains(t, body, "May 17, 1990")
	assert.Contains(t, body, "January 10, 1985")
	assert.Contains(t, body, "October 16, 2026 at 12:00 PM UTC")
	assert.Contains(t, body, "203.0.113.7")
	assert.Contains(t, body, "Mozilla/5.0")
	assert.Contains(t, body, "Mutual Fund Application Form on Test Site")

	personal := strings.Index(body, "Personal Information")
	nominee := strings.Index(body, "Nominee Information")
	assert.Less(t, personal, nominee)
}

func TestComposer_SubmissionEscapesValues(t *testing.T) {
	fields := model.Submission{
		"f1":  `<img src=x onerror=alert(1)>`,
		"f42": "Line one\nLine two & more",
	}

	body, err := newComposer().Submission(context.Background(), fields, application.Caller{}, fixedNow)
	require.NoError(t, err)

	assert.NotContains(t, body, "<img")
	assert.Contains(t, body, "&lt;img src=x onerror=alert(1)&gt;")
	assert.Contains(t, body, "<td>Line one<br>Line two &amp; more</td>")
	assert.Contains(t, body, "<strong>IP Address:</strong> Unknown")
	assert.Contains(t, body, "<strong>Browser:</strong> Unknown")
}

func TestComposer_SubmissionDocument(t *testing.T) {
	body, err := newComposer().Submission(context.Background(), model.Submission{"f1": "x"}, application.Caller{}, fixedNow)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(body, "<!doctype html><html>"))
	assert.Contains(t, body, "<style>")
	assert.Contains(t, body, ".footer {")
	assert.Contains(t, body, "<strong>Date &amp; Time:</strong> October 16, 2026 at 12:00 PM UTC<br>")
	assert.True(t, strings.HasSuffix(body, "</body></html>"))
}

func TestComposer_SubmissionCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newComposer().Submission(ctx, model.Submission{"f1": "x"}, application.Caller{}, fixedNow)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComposer_SubmissionTruncatesUserAgent(t *testing.T) {
	caller := application.Caller{IP: "1.1.1.1", UserAgent: strings.Repeat("é", 250)}

	body, err := newComposer().Submission(context.Background(), model.Submission{"f1": "x"}, caller, fixedNow)
	require.NoError(t, err)

	assert.Contains(t, body, strings.Repeat("é", 200)+"</div>")
	assert.NotContains(t, body, strings.Repeat("é", 201))
}

func TestComposer_Test(t *testing.T) {
	settings := testDefaults()
	settings[model.KeySMTPHost] = "smtp.example.com"
	settings[model.KeySMTPUsername] = "<user>"
	settings[model.KeySMTPEncryption] = ""
	settings[model.KeySMTPPassword] = "do-not-leak"

	body, err := newComposer().Test(context.Background(), settings, fixedNow)
	require.NoError(t, err)

	assert.Contains(t, body, "smtp.example.com")
	assert.Contains(t, body, "NONE")
	assert.Contains(t, body, "&lt;user&gt;")
	assert.Contains(t, body, "2026-10-16 12:00:00 UTC")
	assert.Contains(t, body, "<strong>Website:</strong> Test Site (https://funds.example.com)")
	assert.NotContains(t, body, "do-not-leak")
	assert.Contains(t, body, "<td style=\"padding: 8px; border: 1px solid #ddd;\">smtp.example.com</td>")
}

func TestComposer_TestUpperCasesEncryption(t *testing.T) {
	settings := testDefaults()
	settings[model.KeySMTPEncryption] = "ssl"

	body, err := newComposer().Test(context.Background(), settings, time.Now())
	require.NoError(t, err)
	assert.Contains(t, body, ">SSL<")
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name     string
		template string
		fields   model.Submission
		want     string
	}{
		{"name substituted", "New Application - {name}", model.Submission{"f1": "Asha"}, "New Application - Asha"},
		{"no name leaves placeholder", "New Application - {name}", model.Submission{}, "New Application - {name}"},
		{"header injection stripped", "Hi {name}", model.Submission{"f1": "A\r\nBcc: x@y.z"}, "Hi ABcc: x@y.z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, application.Subject(tt.template, tt.fields))
		})
	}
}
