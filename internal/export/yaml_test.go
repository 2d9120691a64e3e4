package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/legal-buddy/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	transcript := internal.CreateTestTranscript("abc123")

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("YAMLExporter.Export() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"document_id: abc123", "file_name: contract.pdf", "sender: user", "sender: bot"} {
		if !strings.Contains(output, want) {
			t.Errorf("YAMLExporter.Export() output missing %q\nGot:\n%s", want, output)
		}
	}

	var got internal.Transcript
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Errorf("len(Messages) = %d, want 2", len(got.Messages))
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
