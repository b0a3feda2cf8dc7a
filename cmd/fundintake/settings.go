package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect the stored settings",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings with the SMTP password masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			svc := a.settingsService(db)
			settings := svc.GetAll(ctx)
			warnings := svc.Warnings(ctx)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Settings map[string]string `json:"settings"`
					Warnings []string          `json:"warnings"`
				}{maskSettings(settings), warnings})
			}
			return writeSettings(cmd.OutOrStdout(), settings, warnings)
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	cmd.AddCommand(show)
	return cmd
}

func maskSettings(settings model.Settings) map[string]string {
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		if model.IsSensitiveSetting(k) && v != "" {
			v = httphandler.PasswordMask
		}
		out[k] = v
	}
	return out
}

// writeSettings prints one aligned row per setting in definition order.
func writeSettings(w io.Writer, settings model.Settings, warnings []string) error {
	masked := maskSettings(settings)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	for _, def := range model.SettingDefinitions {
		fmt.Fprintf(tw, "%s\t%q\n", def.Key, masked[def.Key])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, warning := range warnings {
		if _, err := fmt.Fprintln(w, "warning:", warning); err != nil {
			return err
		}
	}
	return nil
}
