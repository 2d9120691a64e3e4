package cmd

import (
	"github.com/iksnae/legal-buddy/internal"
	"github.com/spf13/cobra"
)

var (
	summaryID string
	extractID string
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Show the summary of a document",
	Long: `Show the plain language summary of a document.

Pass a file to upload it first, or --id to fetch the summary of a document the
backend already holds.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runView(cmd, internal.ViewSummary, summaryID, args)
	},
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:     "extract [file]",
	Aliases: []string{"extraction"},
	Short:   "Show the structured extraction of a document",
	Long: `Show parties, dates, contract value, governing law and critical clauses.

Pass a file to upload it first, or --id to fetch the extraction of a document
the backend already holds.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runView(cmd, internal.ViewExtract, extractID, args)
	},
}

// runView activates view for an uploaded or attached document and renders
// it once its fetch settled
func runView(cmd *cobra.Command, view internal.View, id string, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	switch {
	case len(args) == 1:
		if err := uploadWithProgress(cmd, a, args[0]); err != nil {
			return err
		}
	case id != "":
		if _, err := a.engine.Attach(id); err != nil {
			return err
		}
	}

	activation := a.engine.Open(view)
	if !activation.Allowed {
		return activation.Err
	}

	if a.engine.Document().State(view).Status == internal.StatusLoading {
		err := internal.ShowProgress(ctx, "Waiting for the "+string(view), func() error {
			return a.engine.Wait(ctx)
		})
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	session := a.engine.Document()
	if view == internal.ViewSummary {
		renderFileDetails(out, session)
	}
	renderView(out, view, session, activation)
	return nil
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(extractCmd)
	summaryCmd.Flags().StringVar(&summaryID, "id", "", "Document id returned by a previous upload")
	extractCmd.Flags().StringVar(&extractID, "id", "", "Document id returned by a previous upload")
}
