package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/fundintake/internal/adapter/driven/sqlite"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and seed default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := a.settingsService(db).Seed(ctx); err != nil {
				return err
			}

			version, dirty, err := sqliteadapter.MigrationVersion(db.Writer)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t), settings seeded\n", version, dirty)
			return err
		},
	}
}
