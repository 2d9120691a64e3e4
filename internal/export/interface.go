package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/legal-buddy/internal"
)

// Exporter writes a chat transcript in one file format
type Exporter interface {
	Export(transcript *internal.Transcript, w io.Writer) error
	Extension() string
}

// Formats lists the accepted --format values, "markdown" aside
var Formats = []string{"jsonl", "md", "yaml", "json"}

// NewExporter returns the exporter for format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}
