package cmd

import (
	"fmt"

	"crmsync/internal/logger"
	"crmsync/internal/sheets"
	"crmsync/internal/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the invoice ledger to Google Sheets",
	Long: `Append all local invoices linked to Fakturoid to a Google Sheet.

Invoices whose Fakturoid id is already listed in the first column are
skipped, so the command can be run repeatedly. The worksheet and its
header row are created when missing.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Google Sheets URL of the ledger`,
	Example: `  # Export to the configured worksheet
  crmsync export

  # Export to another worksheet
  crmsync export --sheet "Faktury 2025"`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("sheet", "", "Worksheet name (default: GOOGLE_SHEET_WORKSHEET)")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithCommand("export")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required")
	}

	sheetName, _ := cmd.Flags().GetString("sheet")
	if sheetName == "" {
		sheetName = cfg.GoogleSheetWorksheet
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx, cancel := createSyncContext(cmd, log)
	defer cancel()

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to open CRM database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close CRM database")
		}
	}()

	invoices, err := db.ListInvoices(ctx)
	if err != nil {
		return handleSyncError(err, log)
	}

	log.Info().
		Str("sheet", sheetName).
		Int("invoices", len(invoices)).
		Bool("dry_run", dryRun).
		Msg("Exporting invoice ledger")

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would export up to %d invoices to %q\n", len(invoices), sheetName)
		return nil
	}

	sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return fmt.Errorf("failed to create sheets service: %w", err)
	}

	written, err := sheetsService.WriteInvoices(ctx, invoices, sheetName)
	if err != nil {
		return fmt.Errorf("failed to export invoices: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d invoices to %q\n", written, sheetName)
	return nil
}
