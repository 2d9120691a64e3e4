package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const manualText = `Legal Buddy helps you understand legal documents.

  1. Upload a document (PDF, Word or plain text). The backend starts
     analyzing it right away.
  2. Read the summary: document type, risk level, key dates and action
     items, or a plain language overview.
  3. Read the extraction: parties, effective and termination dates,
     contract value, governing law and critical clauses.
  4. Ask questions about the document. Questions and answers are kept in
     your chat history.

Results can take a moment. Summary and extraction are retried a few times
while the backend is still working; if they stay unavailable, open the view
again to retry.

Legal Buddy is not a lawyer. Its answers are not legal advice.`

// manualCmd represents the manual command
var manualCmd = &cobra.Command{
	Use:     "manual",
	Aliases: []string{"guide"},
	Short:   "Show the user manual",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render("📘 Manual"))
		fmt.Fprintln(cmd.OutOrStdout(), manualText)
	},
}

func init() {
	rootCmd.AddCommand(manualCmd)
}
