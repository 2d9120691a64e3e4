package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/iksnae/legal-buddy/internal"
	"github.com/spf13/cobra"
)

var uploadNoWait bool

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document and show its summary and extraction",
	Long: `Upload a legal document to the analysis backend.

The summary and the structured extraction are fetched concurrently as soon as
the upload finishes. Each is retried a few times while the backend is still
working on it. Use --no-wait to print the document id and return right away;
'legal-buddy summary --id <id>' picks it up later.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		a, err := newApp(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := uploadWithProgress(cmd, a, path); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !uploadNoWait {
			err := internal.ShowProgress(ctx, "Analyzing document", func() error {
				return a.engine.Wait(ctx)
			})
			if err != nil {
				return err
			}
		}

		session := a.engine.Document()
		renderFileDetails(out, session)
		if uploadNoWait {
			return nil
		}
		for _, view := range []internal.View{internal.ViewSummary, internal.ViewExtract} {
			renderView(out, view, session, internal.Activation{View: view, Allowed: true})
		}
		return nil
	},
}

// uploadWithProgress uploads path behind the spinner
func uploadWithProgress(cmd *cobra.Command, a *app, path string) error {
	ctx := cmd.Context()
	return internal.ShowProgress(ctx, fmt.Sprintf("Uploading %s", filepath.Base(path)), func() error {
		_, err := a.engine.Upload(ctx, path)
		return err
	})
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVar(&uploadNoWait, "no-wait", false, "Return after the upload without waiting for the analysis")
}
