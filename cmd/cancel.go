package cmd

import (
	"fmt"

	"crmsync/internal/logger"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [invoice-id]",
	Short: "Cancel an invoice in Fakturoid and in the CRM",
	Long: `Fire the cancel action on the Fakturoid invoice and mark the local
invoice as cancelled.

The Fakturoid cancellation is not rolled back when saving the local
invoice fails; run the command again to store the state.`,
	Example: `  crmsync cancel 1234`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	log := logger.WithCommand("cancel")

	invoiceID, err := parseID(args[0], "invoice id")
	if err != nil {
		return err
	}

	a, err := newApp(cmd, log)
	if err != nil {
		return err
	}
	defer a.Close(log)

	ctx, cancel := createSyncContext(cmd, log)
	defer cancel()

	invoice, err := a.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return handleSyncError(err, log)
	}

	if a.dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would cancel invoice %d (Fakturoid %d)\n", invoice.ID, invoice.ExternalID)
		return nil
	}

	if err := a.sync.CancelInvoice(ctx, invoice); err != nil {
		return handleSyncError(err, log)
	}
	if err := a.store.SaveInvoice(ctx, invoice); err != nil {
		return handleSyncError(err, log)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s cancelled\n", invoice.Code)
	return nil
}
