package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/fundintake/internal/application"
)

func newSendTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send-test",
		Short: "Send a test email to the configured recipient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			svc, err := a.buildServices(db)
			if err != nil {
				return err
			}

			res := svc.forms.SendTest(ctx, application.Caller{IP: "cli", UserAgent: "fundintake send-test", Admin: true})
			if !res.Success {
				return errors.New(res.Diagnostic)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Test email sent successfully! Check your inbox.")
			return err
		},
	}
}
