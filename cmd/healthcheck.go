package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/legal-buddy/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, local storage and backend reachability",
	Long: `Check the health of legal-buddy by verifying:
  • Configuration loading
  • Data directory detection
  • Local chat history store
  • Backend reachability

This command is useful for debugging connection issues before uploading.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 Legal Buddy Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, paths, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load configuration:"), err)
			return err
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			if paths.ConfigExists() {
				fmt.Fprintf(out, "   Config file: %s\n", paths.ConfigPath)
			} else {
				fmt.Fprintf(out, "   Config file: none (defaults, expected at %s)\n", paths.ConfigPath)
			}
			fmt.Fprintf(out, "   Backend: %s\n", cfg.BaseURL)
			fmt.Fprintf(out, "   Polling: %d attempts every %s\n", cfg.Poll.MaxAttempts, cfg.Poll.Interval)
			fmt.Fprintf(out, "   Ask mode: %s, view policy: %s\n", cfg.AskMode, cfg.ViewPolicy)
		}
		fmt.Fprintln(out)

		// Step 2: Data directory
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking data directory..."))
		fmt.Fprintln(out, successStyle.Render("✅ Data directory resolved"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Directory: %s\n", paths.DataDir)
			fmt.Fprintf(out, "   Log file: %s\n", cfg.LogFile)
		}
		fmt.Fprintln(out)

		// Step 3: Local store
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking chat history store..."))
		existed := paths.DatabaseExists()
		store, err := internal.OpenDatabase(paths.DatabasePath)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open store:"), err)
			return err
		}
		chat := internal.NewChatLog(store)
		chat.Restore()
		_ = store.Close()
		if existed {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Store accessible (%d message(s) in history)", chat.Len())))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Store created (no history yet)"))
		}
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Database: %s\n", paths.DatabasePath)
		}
		fmt.Fprintln(out)

		// Step 4: Backend
		fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting backend..."))
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		gateway := internal.NewGateway(cfg.GatewayConfig())
		if err := gateway.Ping(ctx); err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), err)
			fmt.Fprintln(out)
			fmt.Fprintln(out, infoStyle.Render("💡 Start the backend or point --backend / base_url at it"))
			return fmt.Errorf("backend unreachable at %s", cfg.BaseURL)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Backend reachable"))
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out, successStyle.Render("✅ Ready to upload documents"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed information")
}
