package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/legal-buddy/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	title := "Chat transcript"
	if transcript.FileName != "" {
		title = "Chat about " + transcript.FileName
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", title)

	if transcript.DocumentID != "" {
		_, _ = fmt.Fprintf(w, "**Document:** %s  \n", transcript.DocumentID)
	}
	if !transcript.ExportedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", transcript.ExportedAt.Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range transcript.Messages {
		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", senderLabel(msg.Sender), timestamp, escapeMarkdown(msg.Text))

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func senderLabel(s internal.Sender) string {
	switch s {
	case internal.SenderUser:
		return "You"
	case internal.SenderBot:
		return "Legal Buddy"
	default:
		return string(s)
	}
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
