package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/iksnae/legal-buddy/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	configPath  string
	backendURL  string
	traceOut    bool
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "legal-buddy",
	Short: "Summarize, extract and question legal documents from the terminal",
	Long: `A command-line client for the Legal Buddy analysis backend.

Upload a contract or other legal document and the backend produces a plain
language summary, a structured extraction (parties, dates, value, governing
law, critical clauses) and answers to your questions about it.

Features:
  • Upload a document and follow summary and extraction as they finish
  • Ask questions in an interactive session or one at a time
  • Chat history kept locally across runs
  • Export the chat history (JSONL, Markdown, YAML, JSON)

Quick Start:
  legal-buddy upload contract.pdf        # Upload and show the analysis
  legal-buddy session contract.pdf       # Interactive session
  legal-buddy ask "Who are the parties?" # One-off question
  legal-buddy history                    # Show the chat history`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err unless a notification already showed it
func reportError(w io.Writer, err error) {
	if internal.IsNotified(err) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom storage location (path to database file or data directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default <data dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&traceOut, "trace", false, "Export request traces to <data dir>/logs/traces.log")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
