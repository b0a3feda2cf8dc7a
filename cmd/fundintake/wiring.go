package main

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/fundintake/internal/adapter/driven/mailer"
	"github.com/ericfisherdev/fundintake/internal/adapter/driven/metrics"
	sqliteadapter "github.com/ericfisherdev/fundintake/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/fundintake/internal/application"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

// services is the wired application core shared by serve and send-test.
type services struct {
	settings *application.SettingsService
	forms    *application.FormService
	metrics  *metrics.Registry
}

// openDB opens the database and applies pending migrations. The caller
// closes the returned DB.
func (a *app) openDB(ctx context.Context) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(ctx, a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.cfg.DBPath, err)
	}
	a.logger.Info("database opened", "path", a.cfg.DBPath)

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	a.logger.Info("migrations complete")

	return db, nil
}

func (a *app) settingsService(db *sqliteadapter.DB) *application.SettingsService {
	box := sqliteadapter.NewSecretBox(a.cfg.SecretKey)
	if !box.Enabled() {
		a.logger.Warn("no secret key configured, the SMTP password is stored unencrypted")
	}

	return application.NewSettingsService(
		sqliteadapter.NewSettingsRepo(db, box),
		sqliteadapter.NewOptionsRepo(db, box),
		model.DefaultSettings(a.cfg.AdminEmail, a.cfg.SiteName),
		a.logger,
	)
}

func (a *app) buildServices(db *sqliteadapter.DB) (*services, error) {
	transport, err := mailer.New(mailer.Config{
		Kind:         a.cfg.MailTransport,
		SendmailPath: a.cfg.SendmailPath,
		SpoolDir:     a.cfg.MailSpoolDir,
	}, a.logger)
	if err != nil {
		return nil, err
	}

	registry := metrics.NewRegistry()
	settings := a.settingsService(db)

	dispatcher := application.NewDispatcher(transport, application.DispatcherConfig{
		DefaultFrom: a.cfg.MailDefaultFrom,
		SiteName:    a.cfg.SiteName,
		Debug:       a.cfg.DebugEmail,
	}, registry, a.logger)

	forms := application.NewFormService(
		application.NewValidator(nil),
		settings,
		application.NewComposer(a.cfg.SiteName, a.cfg.SiteURL),
		dispatcher,
		sqliteadapter.NewSubmissionRepo(db),
		registry,
		a.logger,
		nil,
	)

	return &services{settings: settings, forms: forms, metrics: registry}, nil
}
