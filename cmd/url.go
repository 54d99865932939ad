package cmd

import (
	"context"
	"fmt"
	"strings"

	"crmsync/internal/fakturoid"
	"crmsync/internal/logger"
	"crmsync/internal/store"
	"crmsync/pkg/models"
	"github.com/spf13/cobra"
)

const (
	urlKindProformaNew = "proforma-new"
	urlKindProforma    = "proforma"
	urlKindSend        = "send"
	urlKindSubject     = "subject"
)

var urlKinds = []string{urlKindProformaNew, urlKindProforma, urlKindSend, urlKindSubject}

var urlCmd = &cobra.Command{
	Use:   "url [kind] [id]",
	Short: "Print a link into the Fakturoid web application",
	Long: `Print a Fakturoid web UI link.

Kinds:
  proforma-new <project-id>   new proforma form for the project's contact
                              (EUR projects start from the EUR generator)
  proforma <fakturoid-id>     invoice detail
  send <fakturoid-id>         e-mail form of the invoice
  subject <subject-id>        contact detail`,
	Example: `  crmsync url proforma-new 42
  crmsync url send 27615439`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: urlKinds,
	RunE:      runURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)
}

func runURL(cmd *cobra.Command, args []string) error {
	log := logger.WithCommand("url")

	kind := strings.ToLower(args[0])
	id, err := parseID(args[1], "id")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	loadProject := func(ctx context.Context, projectID int64) (*models.Project, error) {
		db, err := store.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		return db.GetProject(ctx, projectID)
	}

	ctx, cancel := createSyncContext(cmd, log)
	defer cancel()

	link, err := webURL(ctx, newURLFactory(cfg), kind, id, loadProject)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func webURL(
	ctx context.Context,
	urls *fakturoid.URLFactory,
	kind string,
	id int64,
	loadProject func(context.Context, int64) (*models.Project, error),
) (string, error) {
	switch kind {
	case urlKindProformaNew:
		project, err := loadProject(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to load project %d: %w", id, err)
		}
		return urls.ProformaNew(project.Currency, project.ExternalID), nil
	case urlKindProforma:
		return urls.Proforma(id), nil
	case urlKindSend:
		return urls.SendProforma(id), nil
	case urlKindSubject:
		return urls.Subject(id), nil
	default:
		return "", fmt.Errorf("unknown url kind %q, expected one of: %s", kind, strings.Join(urlKinds, ", "))
	}
}
