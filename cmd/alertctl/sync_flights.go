package main

import (
	"github.com/spf13/cobra"

	"flightalert-service/internal/app"
)

func syncFlightsCmd() *cobra.Command {
	var simulate bool

	cmd := &cobra.Command{
		Use:   "sync-flights",
		Short: "Pull live flight state from the aviation provider",
		Long: `Fetch the provider status of every stored flight and feed the changes
through the alert pipeline.

Examples:
  # Preview the decisions without storing or notifying
  alertctl sync-flights --simulate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				report, err := a.Sync.Sync(cmd.Context(), simulate)
				if err != nil {
					return err
				}
				return outputResult(cmd.OutOrStdout(), *report, outputFmt)
			})
		},
	}

	cmd.Flags().BoolVar(&simulate, "simulate", false, "Evaluate without persisting or enqueueing")
	return cmd
}
