package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the form, admin pages and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"mail_transport", cfg.MailTransport,
		"site_url", cfg.SiteURL,
		"admin_enabled", cfg.AdminEnabled(),
	)

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	svc, err := a.buildServices(db)
	if err != nil {
		return err
	}
	if err := svc.settings.Seed(ctx); err != nil {
		logger.Warn("default settings not fully seeded", "error", err)
	}
	if !cfg.AdminEnabled() {
		logger.Warn("no admin token configured, admin pages and API are disabled")
	}

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(svc.settings, svc.forms, db, logger))

	limiter := httphandler.NewPerMinuteLimiter(cfg.SubmitRatePerMinute, cfg.SubmitBurst)
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(svc.forms, svc.settings, limiter, cfg.SiteName, logger))

	mux.Handle("GET /metrics", svc.metrics.Handler())

	handler := httphandler.ApplyMiddleware(mux, logger, httphandler.NewAdminAuth(cfg.AdminToken),
		httphandler.TrustedProxies(cfg.TrustedProxies), svc.metrics)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Test sends trace a full SMTP conversation bounded by a 30s timeout.
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("fundintake started", "listen_addr", cfg.ListenAddr)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
