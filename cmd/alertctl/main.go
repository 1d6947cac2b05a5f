// alertctl is an operator CLI for the flight alert service.
//
// Usage:
//
//	alertctl process-jobs
//	alertctl sync-flights --simulate
//	alertctl evaluate --status DELAYED --delay 45 --passengers 120
//	alertctl gmail-token
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	outputFmt string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "alertctl",
		Short: "Operate the flight alert service",
		Long: `alertctl runs flight alert operations against the service's stores.

Commands that touch the stores read the same environment as the server
(DATABASE_URL, MONGODB_DSN, ...). evaluate runs offline.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")

	// Add subcommands
	rootCmd.AddCommand(processJobsCmd())
	rootCmd.AddCommand(syncFlightsCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(gmailTokenCmd())

	return rootCmd
}
