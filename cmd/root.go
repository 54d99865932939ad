package cmd

import (
	"fmt"
	"os"

	"crmsync/internal/logger"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "crmsync",
	Short: "crmsync - keeps CRM invoices and Fakturoid in sync",
	Long: `crmsync connects the CRM database with a Fakturoid account.

It issues proforma invoices for projects, pushes tariff lines to existing
Fakturoid invoices, pulls payment state back into the CRM, resolves
Fakturoid contacts for projects and exports the invoice ledger to
Google Sheets.

Configuration is read from the environment (and a .env file in the
working directory). See the individual commands for details.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("dry-run", false, "Print what would be sent to Fakturoid without changing anything")
	rootCmd.PersistentFlags().Int("timeout", 60, "Timeout in seconds for the whole command")
}
