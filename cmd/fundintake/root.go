package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/fundintake/internal/config"
)

// app carries what every command needs after configuration has loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFiles []string

	root := &cobra.Command{
		Use:   "fundintake",
		Short: "Mutual fund application intake form",
		Long: `fundintake serves a mutual fund application form, validates submissions
and emails them to a configured recipient, optionally through an SMTP relay.

Configuration is read from FUNDINTAKE_* environment variables and .env files.

Example:
  fundintake                 # same as "fundintake serve"
  fundintake migrate         # apply schema migrations and seed settings
  fundintake settings show   # print the effective settings
  fundintake send-test       # send a test email with the saved settings`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFiles...); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("%sLOG_LEVEL: %w", config.EnvPrefix, err)
			}
			slog.SetDefault(logger)

			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	serve := newServeCmd(a)
	root.RunE = serve.RunE

	root.AddCommand(serve)
	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(newSettingsCmd(a))
	root.AddCommand(newSendTestCmd(a))

	return root
}
