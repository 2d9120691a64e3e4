package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iksnae/legal-buddy/internal"
	"github.com/iksnae/legal-buddy/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the chat history to a file",
	Long: `Export the chat history to one of several formats (jsonl, md, yaml, json).

The file is written to the output directory as chat_history_<timestamp>.<ext>.
Use --out - to write to standard output instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		now := time.Now()
		transcript := internal.NewTranscript(a.engine.Document(), a.engine.Messages(), now)

		if outputDir == "-" {
			return exporter.Export(transcript, cmd.OutOrStdout())
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		filename := fmt.Sprintf("chat_history_%s.%s", now.Format("20060102_150405"), exporter.Extension())
		path := filepath.Join(outputDir, filename)
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", path, err)
		}

		if err := exporter.Export(transcript, file); err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to export chat history: %w", err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close file %s: %w", path, err)
		}

		a.notifier.Notify(internal.Notification{
			Level:   internal.LevelSuccess,
			Title:   "Export complete",
			Message: fmt.Sprintf("%d message(s) written to %s", len(transcript.Messages), path),
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory, or - for stdout")
}
