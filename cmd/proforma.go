package cmd

import (
	"fmt"

	"crmsync/internal/logger"
	"crmsync/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var proformaCmd = &cobra.Command{
	Use:   "proforma [project-id]",
	Short: "Issue a Fakturoid proforma invoice for a project",
	Long: `Create a proforma invoice with a single line in Fakturoid and store a
local copy of it in the CRM database.

When the project is not yet linked to a Fakturoid contact, the contact is
looked up by the billing CIN and the project e-mail, and created when
neither matches. The link is saved on the project.

EUR proformas are paid to the EUR bank account. Projects that are VAT
payers get reverse charge (VAT 0 %, supply code 3) on EUR proformas.`,
	Example: `  # Proforma in the project currency
  crmsync proforma 42 --title "Business tariff 2025" --price 9900

  # Proforma in EUR, print the payload only
  crmsync proforma 42 --title "Business tariff 2025" --price 450 --currency EUR --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runProforma,
}

func init() {
	rootCmd.AddCommand(proformaCmd)

	proformaCmd.Flags().String("title", "", "Invoice line title")
	proformaCmd.Flags().String("price", "", "Unit price without VAT")
	proformaCmd.Flags().String("currency", "", "Invoice currency (default: project currency)")
	_ = proformaCmd.MarkFlagRequired("title")
	_ = proformaCmd.MarkFlagRequired("price")
}

func runProforma(cmd *cobra.Command, args []string) error {
	log := logger.WithCommand("proforma")

	projectID, err := parseID(args[0], "project id")
	if err != nil {
		return err
	}
	title, _ := cmd.Flags().GetString("title")
	priceStr, _ := cmd.Flags().GetString("price")
	currency, _ := cmd.Flags().GetString("currency")

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", priceStr, err)
	}
	if price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}

	a, err := newApp(cmd, log)
	if err != nil {
		return err
	}
	defer a.Close(log)

	ctx, cancel := createSyncContext(cmd, log)
	defer cancel()

	project, err := a.store.GetProject(ctx, projectID)
	if err != nil {
		return handleSyncError(err, log)
	}
	if currency == "" {
		currency = project.Currency
	}
	currency = models.NormalizeCurrency(currency)

	log.Info().
		Int64("project_id", project.ID).
		Str("currency", currency).
		Str("price", price.String()).
		Bool("dry_run", a.dryRun).
		Msg("Issuing proforma invoice")

	if project.ExternalID == 0 && !a.dryRun {
		subjectID, err := a.sync.ResolveOrCreateContact(ctx, project)
		if err != nil {
			return handleSyncError(err, log)
		}
		project.ExternalID = subjectID
		if err := a.store.SaveProject(ctx, project); err != nil {
			return handleSyncError(err, log)
		}
	}

	payload, err := a.sync.BuildProformaPayload(project, title, currency, price)
	if err != nil {
		return handleSyncError(err, log)
	}
	if a.dryRun {
		return printJSON(cmd, payload)
	}

	remote, err := a.sync.CreateProformaInvoice(ctx, payload)
	if err != nil {
		return handleSyncError(err, log)
	}

	invoice, err := a.sync.CreateLocalInvoice(ctx, project, remote)
	if err != nil {
		// The proforma exists in Fakturoid; `pull` can still link it.
		log.Error().Err(err).Int64("external_id", remote.ID).Msg("Proforma created but not stored locally")
		return handleSyncError(err, log)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Proforma %s created (invoice %d)\n", invoice.Code, invoice.ID)
	fmt.Fprintln(cmd.OutOrStdout(), a.urls.Proforma(remote.ID))
	return nil
}
