package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"crmsync/internal/config"
	"crmsync/internal/fakturoid"
	"crmsync/internal/i18n"
	"crmsync/internal/invoicesync"
	"crmsync/internal/store"
	"crmsync/pkg/services"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app bundles the collaborators a sync command works with.
type app struct {
	cfg    *config.Config
	store  *store.Store
	client *fakturoid.Client
	sync   services.InvoiceSyncService
	urls   *fakturoid.URLFactory
	dryRun bool
}

func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, fmt.Errorf("invalid configuration. Please check your .env file: %w", err)
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command, log zerolog.Logger) (*app, error) {
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}

	client, err := fakturoid.NewClient(cfg.GetFakturoidConfig())
	if err != nil {
		if errors.Is(err, fakturoid.ErrMissingCredentials) {
			return nil, fmt.Errorf("missing Fakturoid credentials. Please set:\n" +
				"  FAKTUROID_ACCOUNT=your-account-slug\n" +
				"  FAKTUROID_EMAIL=api-user@example.com\n" +
				"  FAKTUROID_API_KEY=your-api-key")
		}
		return nil, fmt.Errorf("failed to create Fakturoid client: %w", err)
	}

	translator, err := i18n.NewTranslator(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Error().Err(err).Str("dsn", cfg.DatabaseDSN).Msg("Failed to open CRM database")
		return nil, fmt.Errorf("failed to open CRM database: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	log.Debug().
		Str("account", cfg.FakturoidAccount).
		Str("locale", translator.Language().String()).
		Bool("dry_run", dryRun).
		Msg("Sync dependencies initialized")

	return &app{
		cfg:    cfg,
		store:  db,
		client: client,
		sync:   invoicesync.NewService(client, db, translator, cfg.GetBankAccounts()),
		urls:   newURLFactory(cfg),
		dryRun: dryRun,
	}, nil
}

func newURLFactory(cfg *config.Config) *fakturoid.URLFactory {
	return fakturoid.NewURLFactory(cfg.FakturoidWebURL, cfg.FakturoidAccount, cfg.FakturoidEURGeneratorID)
}

func (a *app) Close(log zerolog.Logger) {
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close CRM database")
	}
}

// createSyncContext creates a context with timeout and signal handling
func createSyncContext(cmd *cobra.Command, log zerolog.Logger) (context.Context, context.CancelFunc) {
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	if timeoutSecs <= 0 {
		timeoutSecs = 60
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleSyncError provides user-friendly error messages for sync failures
func handleSyncError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Sync failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("Fakturoid did not answer in time. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("sync was canceled")
	case errors.Is(err, fakturoid.ErrUnauthorized):
		return fmt.Errorf("Fakturoid rejected the credentials. Check FAKTUROID_EMAIL and FAKTUROID_API_KEY: %w", err)
	case errors.Is(err, fakturoid.ErrRateLimited):
		return fmt.Errorf("Fakturoid rate limit reached, try again in a minute: %w", err)
	case errors.Is(err, fakturoid.ErrUnprocessable):
		return fmt.Errorf("Fakturoid refused the data: %w", err)
	case errors.Is(err, fakturoid.ErrNotFound):
		return fmt.Errorf("the Fakturoid record does not exist: %w", err)
	case errors.Is(err, fakturoid.ErrServer):
		return fmt.Errorf("Fakturoid is unavailable, try again later: %w", err)
	case errors.Is(err, invoicesync.ErrMissingBankAccount):
		return fmt.Errorf("no EUR bank account configured. Set EUR_BANK_ACCOUNT, EUR_IBAN and EUR_SWIFT_BIC: %w", err)
	case errors.Is(err, invoicesync.ErrMissingExternalID):
		return fmt.Errorf("the invoice was never created in Fakturoid: %w", err)
	case errors.Is(err, invoicesync.ErrMalformedRemoteInvoice):
		return fmt.Errorf("Fakturoid returned an invoice that cannot be stored: %w", err)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("not found in the CRM database: %w", err)
	default:
		return fmt.Errorf("sync failed: %w", err)
	}
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", what, arg)
	}
	return id, nil
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
