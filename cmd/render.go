package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/legal-buddy/internal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)

	warningClauseStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Bold(true)

	dangerClauseStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	botMessageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2)
)

const noDocumentText = "No document uploaded yet. Run 'legal-buddy upload <file>' to get started."

// renderFileDetails prints name, size and dates of the active document
func renderFileDetails(w io.Writer, session internal.DocumentSession) {
	if session.File == nil && session.ID == "" {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("📄 Document"))
	if session.File != nil {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Name:"), session.File.Name)
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Size:"), formatSize(session.File.Size))
		if !session.File.LastModified.IsZero() {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Last modified:"), session.File.LastModified.Format("2006-01-02 15:04"))
		}
	}
	if session.ID != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Document ID:"), session.ID)
	}
	if !session.UploadedAt.IsZero() {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Uploaded:"), session.UploadedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w)
}

// renderView prints one result view in whatever state it is in
func renderView(w io.Writer, view internal.View, session internal.DocumentSession, a internal.Activation) {
	title := "📝 Summary"
	if view == internal.ViewExtract {
		title = "🔎 Extraction"
	}
	fmt.Fprintln(w, headerStyle.Render(title))

	if a.Placeholder || !session.HasDocument() {
		fmt.Fprintln(w, placeholderStyle.Render(noDocumentText))
		return
	}

	state := session.State(view)
	switch state.Status {
	case internal.StatusReady:
		renderAnalysis(w, state.Result)
	case internal.StatusFailed:
		fmt.Fprintln(w, placeholderStyle.Render("Not available: "+state.Reason))
	case internal.StatusLoading:
		msg := "Analyzing..."
		if state.Attempts > 0 {
			msg = fmt.Sprintf("Analyzing... (attempt %d)", state.Attempts)
		}
		fmt.Fprintln(w, placeholderStyle.Render(msg))
	default:
		fmt.Fprintln(w, placeholderStyle.Render("Not requested yet."))
	}
	fmt.Fprintln(w)
}

// renderAnalysis prints either variant of an analysis result
func renderAnalysis(w io.Writer, r *internal.AnalysisResult) {
	if r.IsEmpty() {
		fmt.Fprintln(w, placeholderStyle.Render("No content."))
		return
	}

	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), value)
		}
	}
	list := func(label string, values []string) {
		if len(values) == 0 {
			return
		}
		fmt.Fprintln(w, labelStyle.Render(label))
		for _, v := range values {
			fmt.Fprintf(w, "  • %s\n", v)
		}
	}

	field("Document type:", r.DocumentType)
	field("Risk level:", r.RiskLevel)
	list("Key dates:", r.KeyDates)
	list("Action items:", r.ActionItems)
	list("Parties:", r.Parties)
	field("Effective:", r.Dates.Effective)
	field("Termination:", r.Dates.Termination)
	field("Contract value:", r.ContractValue)
	field("Governing law:", r.GoverningLaw)

	if len(r.CriticalClauses) > 0 {
		fmt.Fprintln(w, labelStyle.Render("Critical clauses:"))
		for _, c := range r.CriticalClauses {
			style := warningClauseStyle
			if c.Severity == internal.SeverityDanger {
				style = dangerClauseStyle
			}
			fmt.Fprintf(w, "  %s %s\n", style.Render(fmt.Sprintf("[%s] %s", c.Severity, c.Type)), c.Description)
		}
	}

	if strings.TrimSpace(r.Text) != "" {
		if r.IsStructured() {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, r.Text)
	}

	if r.ElapsedTime != "" {
		fmt.Fprintln(w, metaStyle.Render("Processing Time: "+r.ElapsedTime))
	}
	if r.ContextChunks > 0 {
		fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("Context chunks: %d", r.ContextChunks)))
	}
}

// renderMessage prints one chat message
func renderMessage(w io.Writer, msg internal.ChatMessage) {
	style := userMessageStyle
	label := "You"
	if msg.Sender == internal.SenderBot {
		style = botMessageStyle
		label = "Legal Buddy"
	}

	header := style.Render(label)
	if msg.Timestamp != "" {
		header += " " + timestampStyle.Render(msg.Timestamp)
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, messageContentStyle.Render(msg.Text))
}

// renderChat prints the whole chat log
func renderChat(w io.Writer, messages []internal.ChatMessage) {
	if len(messages) == 0 {
		fmt.Fprintln(w, placeholderStyle.Render("No messages yet. Ask a question about your document."))
		return
	}
	for _, msg := range messages {
		renderMessage(w, msg)
	}
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
