package cmd

import (
	"errors"
	"fmt"

	"crmsync/internal/logger"
	"crmsync/internal/store"
	"crmsync/pkg/models"
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull [fakturoid-invoice-id]",
	Short: "Copy the state of a Fakturoid invoice into the CRM",
	Long: `Fetch an invoice from Fakturoid and update its local copy: number,
variable symbol, dates, amounts, payment and cancellation state.

When the invoice is not yet known locally, --project names the project
the new local invoice belongs to.`,
	Example: `  # Refresh a linked invoice
  crmsync pull 27615439

  # Link a Fakturoid invoice to project 42
  crmsync pull 27615439 --project 42`,
	Args: cobra.ExactArgs(1),
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().Int64("project", 0, "Project of the invoice when it is not yet stored locally")
}

func runPull(cmd *cobra.Command, args []string) error {
	log := logger.WithCommand("pull")

	externalID, err := parseID(args[0], "Fakturoid invoice id")
	if err != nil {
		return err
	}
	projectID, _ := cmd.Flags().GetInt64("project")

	a, err := newApp(cmd, log)
	if err != nil {
		return err
	}
	defer a.Close(log)

	ctx, cancel := createSyncContext(cmd, log)
	defer cancel()

	remote, err := a.client.GetInvoice(ctx, externalID)
	if err != nil {
		return handleSyncError(err, log)
	}

	invoice, err := a.store.GetInvoiceByExternalID(ctx, externalID)
	switch {
	case err == nil:
		if err := a.sync.ApplyRemoteToLocal(invoice, remote); err != nil {
			return handleSyncError(err, log)
		}
		if !a.dryRun {
			if err := a.store.SaveInvoice(ctx, invoice); err != nil {
				return handleSyncError(err, log)
			}
		}

	case errors.Is(err, store.ErrNotFound):
		if projectID == 0 {
			return fmt.Errorf("invoice %d is not stored locally yet; pass --project to link it", externalID)
		}
		project, err := a.store.GetProject(ctx, projectID)
		if err != nil {
			return handleSyncError(err, log)
		}
		if a.dryRun {
			invoice = &models.Invoice{ProjectID: project.ID, ExternalID: remote.ID}
			err = a.sync.ApplyRemoteToLocal(invoice, remote)
		} else {
			invoice, err = a.sync.CreateLocalInvoice(ctx, project, remote)
		}
		if err != nil {
			return handleSyncError(err, log)
		}

	default:
		return handleSyncError(err, log)
	}

	log.Info().
		Int64("invoice_id", invoice.ID).
		Int64("external_id", externalID).
		Bool("paid", invoice.IsPaid()).
		Bool("cancelled", invoice.Cancelled).
		Bool("dry_run", a.dryRun).
		Msg("Invoice pulled from Fakturoid")

	return printJSON(cmd, newInvoiceOutput(invoice))
}
