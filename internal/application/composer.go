package application

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

const (
	headerTimeLayout  = "January 2, 2006 at 3:04 PM MST"
	displayDateLayout = "January 2, 2006"
	testTimeLayout    = "2006-01-02 15:04:05 MST"
	maxUserAgentRunes = 200
)

// Composer renders notification email bodies.
type Composer struct {
	siteName string
	siteURL  string
}

// NewComposer creates a Composer that signs messages with the site name and URL.
func NewComposer(siteName, siteURL string) *Composer {
	return &Composer{siteName: siteName, siteURL: siteURL}
}

// Submission renders the notification for one validated submission.
func (c *Composer) Submission(ctx context.Context, fields model.Submission, caller Caller, at time.Time) (string, error) {
	return renderString(ctx, c.submissionEmail(fields, caller, at))
}

// Test renders the SMTP connectivity test message. It never includes
// submission data.
func (c *Composer) Test(ctx context.Context, settings model.Settings, at time.Time) (string, error) {
	return renderString(ctx, c.testEmail(testRows(settings), at))
}

// Subject fills {name} from the applicant name and strips line breaks so the
// result is safe to use as a header.
func Subject(template string, fields model.Submission) string {
	subject := template
	if name := fields[model.FieldName]; name != "" {
		subject = strings.ReplaceAll(subject, "{name}", name)
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(subject)
}

func renderString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// filledFields returns the section's fields that carry a value, in form order.
func filledFields(section string, fields model.Submission) []model.Field {
	var rows []model.Field
	for _, f := range model.FieldsInSection(section) {
		if fields[f.ID] != "" {
			rows = append(rows, f)
		}
	}
	return rows
}

type testRow struct{ label, value string }

// testRows lists the settings echoed in the test message. The password is
// never included.
func testRows(settings model.Settings) []testRow {
	encryption := strings.ToUpper(settings[model.KeySMTPEncryption])
	if encryption == "" {
		encryption = "NONE"
	}

	return []testRow{
		{"SMTP Host:", settings[model.KeySMTPHost]},
		{"Port:", settings[model.KeySMTPPort]},
		{"Encryption:", encryption},
		{"Username:", settings[model.KeySMTPUsername]},
		{"From Email:", settings[model.KeyFromEmail]},
		{"To Email:", settings[model.KeyToEmail]},
	}
}

func fieldLabel(f model.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return model.Humanize(f.ID)
}

func displayValue(f model.Field, value string) string {
	if f.Kind != model.FieldKindDate {
		return value
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return value
	}
	return t.Format(displayDateLayout)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
