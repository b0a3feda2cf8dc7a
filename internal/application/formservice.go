package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

const (
	sendFailedMessage = "Failed to send email. Please try again."
	testSubjectPrefix = "Test Email - Mutual Fund Form SMTP Settings - "
	archiveTimeLayout = "2006-01-02 15:04:05"
)

// FormResult is the outcome of processing one submission. Message is set on
// success, Errors on failure.
type FormResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// FormService runs a submission through validation, composition, delivery
// and archiving.
type FormService struct {
	validator  *Validator
	settings   SettingsProvider
	composer   *Composer
	dispatcher *Dispatcher
	archive    driven.SubmissionArchive
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
}

// NewFormService creates a FormService. observer may be nil; a nil now uses time.Now.
func NewFormService(
	validator *Validator,
	settings SettingsProvider,
	composer *Composer,
	dispatcher *Dispatcher,
	archive driven.SubmissionArchive,
	observer Observer,
	logger *slog.Logger,
	now func() time.Time,
) *FormService {
	if now == nil {
		now = time.Now
	}
	return &FormService{
		validator:  validator,
		settings:   settings,
		composer:   composer,
		dispatcher: dispatcher,
		archive:    archive,
		observer:   observerOrNop(observer),
		logger:     logger,
		now:        now,
	}
}

// Process validates fields and, when valid, emails them to the configured
// recipient. Transport details are disclosed only to admin callers.
func (s *FormService) Process(ctx context.Context, fields model.Submission, caller Caller) FormResult {
	result := s.validator.Validate(fields)
	if !result.Valid() {
		s.observer.SubmissionProcessed(OutcomeRejected)
		return FormResult{Errors: result.Errors}
	}

	settings := s.settings.GetAll(ctx)
	now := s.now()

	body, err := s.composer.Submission(ctx, result.Fields, caller, now)
	if err != nil {
		s.logger.Error("failed to render submission email", "error", err)
		s.observer.SubmissionProcessed(OutcomeFailed)
		return FormResult{Errors: []string{s.failureMessage(caller, err.Error())}}
	}

	env := model.Envelope{
		To:       settings[model.KeyToEmail],
		Subject:  Subject(settings[model.KeyEmailSubject], result.Fields),
		HTMLBody: body,
		ReplyTo:  result.Fields[model.FieldEmail],
	}

	sent := s.dispatcher.Send(ctx, env, settings, caller)
	if !sent.Success {
		s.observer.SubmissionProcessed(OutcomeFailed)
		return FormResult{Errors: []string{s.failureMessage(caller, sent.Diagnostic)}}
	}

	if settings.Enabled(model.KeyStoreSubmissions) {
		s.store(ctx, result.Fields, caller, now)
	}

	s.observer.SubmissionProcessed(OutcomeAccepted)
	return FormResult{Success: true, Message: settings[model.KeySuccessMessage]}
}

func (s *FormService) failureMessage(caller Caller, diagnostic string) string {
	if caller.Admin && diagnostic != "" {
		return sendFailedMessage + " Debug info: " + diagnostic
	}
	return sendFailedMessage
}

// store archives a delivered submission. Failures are logged only.
func (s *FormService) store(ctx context.Context, fields model.Submission, caller Caller, at time.Time) {
	payload, err := json.MarshalIndent(fields, "", "    ")
	if err != nil {
		s.logger.Error("failed to encode submission", "error", err)
		return
	}

	name := fields[model.FieldName]
	if name == "" {
		name = "Unknown"
	}

	record := model.SubmissionRecord{
		ID:          uuid.NewString(),
		Title:       fmt.Sprintf("Form Submission - %s - %s", name, at.Format(archiveTimeLayout)),
		Payload:     string(payload),
		IP:          orUnknown(caller.IP),
		UserAgent:   caller.UserAgent,
		SubmittedAt: at,
		FormVersion: model.FormVersion,
	}

	if err := s.archive.Store(ctx, record); err != nil {
		s.logger.Error("failed to archive submission", "id", record.ID, "error", err)
	}
}

// SendTest sends a connectivity test to the configured recipient with SMTP
// tracing on.
func (s *FormService) SendTest(ctx context.Context, caller Caller) model.SendResult {
	settings := s.settings.GetAll(ctx)
	now := s.now()

	body, err := s.composer.Test(ctx, settings, now)
	if err != nil {
		s.logger.Error("failed to render test email", "error", err)
		return model.SendResult{Diagnostic: err.Error()}
	}

	env := model.Envelope{
		To:       settings[model.KeyToEmail],
		Subject:  testSubjectPrefix + now.Format("15:04:05"),
		HTMLBody: body,
	}

	result := s.dispatcher.SendTraced(ctx, env, settings)
	if result.Success {
		s.logger.Info("test email sent", "to", env.To, "requested_by", caller.IP)
	} else {
		s.logger.Error("test email failed", "to", env.To, "requested_by", caller.IP, "diagnostic", result.Diagnostic)
	}
	return result
}

// ListSubmissions returns the newest archived submissions.
func (s *FormService) ListSubmissions(ctx context.Context, limit int) ([]model.SubmissionRecord, error) {
	records, err := s.archive.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return records, nil
}
