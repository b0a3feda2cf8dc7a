package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock implementations ---

type fakeTable struct {
	missing   bool
	existsErr error
	listErr   error
	writeErr  error
	rows      map[string]string
	upserts   int
}

func newFakeTable() *fakeTable {
	return &fakeTable{rows: map[string]string{}}
}

func (f *fakeTable) Exists(context.Context) (bool, error) {
	return !f.missing, f.existsErr
}

func (f *fakeTable) ListAll(context.Context) ([]model.SettingRow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.SettingRow, 0, len(f.rows))
	for k, v := range f.rows {
		out = append(out, model.SettingRow{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeTable) UpsertAll(_ context.Context, values map[string]string) error {
	f.upserts++
	if f.writeErr != nil {
		return f.writeErr
	}
	for k, v := range values {
		f.rows[k] = v
	}
	return nil
}

func (f *fakeTable) InsertMissing(_ context.Context, values map[string]string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	for k, v := range values {
		if _, ok := f.rows[k]; !ok {
			f.rows[k] = v
		}
	}
	return nil
}

type fakeOptions struct {
	getErr   error
	writeErr error
	blobs    map[string]map[string]string
}

func newFakeOptions() *fakeOptions {
	return &fakeOptions{blobs: map[string]map[string]string{}}
}

func (f *fakeOptions) Get(_ context.Context, name string) (map[string]string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.blobs[name]
	if !ok {
		return nil, driven.ErrOptionNotFound
	}
	return v, nil
}

func (f *fakeOptions) Put(_ context.Context, name string, values map[string]string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	f.blobs[name] = cp
	return nil
}

func (f *fakeOptions) Add(ctx context.Context, name string, values map[string]string) error {
	if _, ok := f.blobs[name]; ok {
		return nil
	}
	return f.Put(ctx, name, values)
}

type sendCall struct {
	env      model.Envelope
	override *model.SMTPOverride
}

type fakeTransport struct {
	mu    sync.Mutex
	err   error
	trace string
	calls []sendCall
}

func (f *fakeTransport) Send(_ context.Context, env model.Envelope, override *model.SMTPOverride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sendCall{env: env, override: override})
	if override != nil && override.Trace != nil && f.trace != "" {
		_, _ = io.WriteString(override.Trace, f.trace)
	}
	return f.err
}

type fakeArchive struct {
	err     error
	records []model.SubmissionRecord
}

func (f *fakeArchive) Store(_ context.Context, r model.SubmissionRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeArchive) List(_ context.Context, limit int) ([]model.SubmissionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fakeObserver struct {
	outcomes []string
	sends    []string
}

func (f *fakeObserver) SubmissionProcessed(outcome string) {
	f.outcomes = append(f.outcomes, outcome)
}

func (f *fakeObserver) MailSent(transport string, success bool) {
	label := transport + ":fail"
	if success {
		label = transport + ":ok"
	}
	f.sends = append(f.sends, label)
}

var errBoom = errors.New("boom")

// validFields returns a submission that passes every rule: unmarried
// applicant, adult nominee at the same address, no foreign tax residency.
func validFields() model.Submission {
	return model.Submission{
		"f1":               "Asha Verma",
		"f8":               "98765-43210",
		"f6":               "asha@example.com",
		"f9":               "ABCDE1234F",
		"f10":              "1990-05-17",
		"f20":              "Pune",
		"f11":              "Ravi Verma",
		"f12":              "Meera Verma",
		"f14":              "UnMarried",
		"f16":              "Resident",
		"f17":              "FEMALE",
		"f21_addressLine1": "12 MG Road",
		"f21_city":         "Pune",
		"f21_state":        "Maharashtra",
		"f21_postalCode":   "411001",
		"f18":              "Engineer",
		"f19":              "1200000",
		"f7":               "Kiran Verma",
		"f22":              "Brother",
		"f23":              "MAJOR",
		"f25":              "FGHIJ5678K",
		"f27":              "1985-01-10",
		"f29":              "As Above",
		"f41":              "Not Applicable",
		"f42":              "Salary",
		"nonce":            "abc",
		"action":           "submit_form",
	}
}
