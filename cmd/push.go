package cmd

import (
	"crmsync/internal/invoicesync"
	"crmsync/internal/logger"
	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push [invoice-id]",
	Short: "Replace the lines of a Fakturoid invoice from the CRM tariff history",
	Long: `Send the tariff history of a local invoice to its Fakturoid invoice.

Every line currently on the Fakturoid invoice is removed and one line per
tariff history item is added, priced from the tariff in the project
currency with the project discount applied. The updated invoice is then
copied back into the CRM.`,
	Example: `  # Update the Fakturoid invoice of local invoice 1234
  crmsync push 1234

  # Show the update payload only
  crmsync push 1234 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	log := logger.WithCommand("push")

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
	if invoice.ExternalID == 0 {
		return handleSyncError(invoicesync.NewSyncError("push", invoicesync.ErrMissingExternalID, ""), log)
	}

	remote, err := a.client.GetInvoice(ctx, invoice.ExternalID)
	if err != nil {
		return handleSyncError(err, log)
	}

	if a.dryRun {
		payload, err := a.sync.BuildUpdatePayload(ctx, invoice, remote)
		if err != nil {
			return handleSyncError(err, log)
		}
		return printJSON(cmd, payload)
	}

	updated, err := a.sync.UpdateRemoteInvoice(ctx, invoice, remote)
	if err != nil {
		return handleSyncError(err, log)
	}

	if err := a.sync.ApplyRemoteToLocal(invoice, updated); err != nil {
		return handleSyncError(err, log)
	}
	if err := a.store.SaveInvoice(ctx, invoice); err != nil {
		return handleSyncError(err, log)
	}

	return printJSON(cmd, newInvoiceOutput(invoice))
}
