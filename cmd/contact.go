package cmd

import (
	"fmt"

	"crmsync/internal/logger"
	"github.com/spf13/cobra"
)

var contactCmd = &cobra.Command{
	Use:   "contact [project-id]",
	Short: "Link a project to its Fakturoid contact",
	Long: `Find the Fakturoid contact (subject) of a project by billing CIN, then
by project e-mail, and create it when neither search matches. The
contact id is saved on the project.`,
	Example: `  crmsync contact 42

  # Show the contact that would be created
  crmsync contact 42 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runContact,
}

func init() {
	rootCmd.AddCommand(contactCmd)
}

func runContact(cmd *cobra.Command, args []string) error {
	log := logger.WithCommand("contact")

	projectID, err := parseID(args[0], "project id")
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

	project, err := a.store.GetProject(ctx, projectID)
	if err != nil {
		return handleSyncError(err, log)
	}

	if a.dryRun {
		payload, err := a.sync.ContactPayload(ctx, project)
		if err != nil {
			return handleSyncError(err, log)
		}
		return printJSON(cmd, payload)
	}

	subjectID, err := a.sync.ResolveOrCreateContact(ctx, project)
	if err != nil {
		return handleSyncError(err, log)
	}

	if project.ExternalID != subjectID {
		project.ExternalID = subjectID
		if err := a.store.SaveProject(ctx, project); err != nil {
			return handleSyncError(err, log)
		}
	}

	log.Info().
		Int64("project_id", project.ID).
		Int64("subject_id", subjectID).
		Msg("Project linked to Fakturoid contact")

	fmt.Fprintln(cmd.OutOrStdout(), a.urls.Subject(subjectID))
	return nil
}
