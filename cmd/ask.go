package cmd

import (
	"strings"

	"github.com/iksnae/legal-buddy/internal"
	"github.com/spf13/cobra"
)

var askID string

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the uploaded document",
	Long: `Ask the backend a question and print its answer.

The question and the answer are added to the local chat history. By default
the backend answers about the document it received last; --id (or
ask_mode: explicit in the config) pins the question to one document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		question := strings.Join(args, " ")

		var opts []func(*internal.EngineOptions)
		if askID != "" {
			opts = append(opts, func(o *internal.EngineOptions) { o.ExplicitAsk = true })
		}

		a, err := newApp(ctx, cmd.ErrOrStderr(), opts...)
		if err != nil {
			return err
		}
		defer a.Close()

		if askID != "" {
			if _, err := a.engine.Attach(askID); err != nil {
				return err
			}
		}

		var answer internal.ChatMessage
		err = internal.ShowProgress(ctx, "Thinking", func() error {
			var askErr error
			answer, askErr = a.engine.Ask(ctx, question)
			return askErr
		})
		if internal.IsValidation(err) {
			// blank questions are ignored
			return nil
		}
		if err != nil {
			return err
		}

		renderMessage(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askID, "id", "", "Document id to ask about")
}
