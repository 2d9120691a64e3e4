package internal

import (
	"testing"
	"time"
)

func TestAnalysisResult_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		result *AnalysisResult
		want   bool
	}{
		{name: "nil", result: nil, want: true},
		{name: "zero", result: &AnalysisResult{}, want: true},
		{name: "whitespace text", result: &AnalysisResult{Text: "  \n"}, want: true},
		{name: "timing only", result: &AnalysisResult{ElapsedTime: "1.2s", ContextChunks: 3}, want: true},
		{name: "text", result: &AnalysisResult{Text: "A lease."}, want: false},
		{name: "structured summary", result: CreateTestSummary(), want: false},
		{name: "structured extraction", result: CreateTestExtraction(), want: false},
		{name: "dates only", result: &AnalysisResult{Dates: ContractDates{Effective: "2024-01-01"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalysisResult_IsStructured(t *testing.T) {
	if (&AnalysisResult{Text: "free form"}).IsStructured() {
		t.Error("IsStructured() = true for free-form answer")
	}
	if !CreateTestExtraction().IsStructured() {
		t.Error("IsStructured() = false for extraction")
	}
}

func TestDocumentSession_State(t *testing.T) {
	s := DocumentSession{
		ID:         "abc123",
		Summary:    FetchState{Status: StatusReady},
		Extraction: FetchState{Status: StatusLoading},
	}

	tests := []struct {
		view View
		want FetchStatus
	}{
		{view: ViewSummary, want: StatusReady},
		{view: ViewExtract, want: StatusLoading},
		{view: ViewChat, want: StatusIdle},
		{view: ViewManual, want: StatusIdle},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			if got := s.State(tt.view).Status; got != tt.want {
				t.Errorf("State(%s) = %v, want %v", tt.view, got, tt.want)
			}
		})
	}

	if !s.HasDocument() {
		t.Error("HasDocument() = false with id set")
	}
	if (DocumentSession{}).HasDocument() {
		t.Error("HasDocument() = true without id")
	}
}

func TestNewTranscript(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tr := NewTranscript(DocumentSession{ID: "abc123", File: &FileInfo{Name: "contract.pdf"}}, nil, at)
	if tr.DocumentID != "abc123" || tr.FileName != "contract.pdf" {
		t.Errorf("NewTranscript() = %+v", tr)
	}
	if tr.Messages == nil || len(tr.Messages) != 0 {
		t.Errorf("Messages = %v, want empty non-nil slice", tr.Messages)
	}
	if !tr.ExportedAt.Equal(at) {
		t.Errorf("ExportedAt = %v, want %v", tr.ExportedAt, at)
	}

	tr = NewTranscript(DocumentSession{}, CreateTestMessages("q", "a"), at)
	if tr.FileName != "" || len(tr.Messages) != 2 {
		t.Errorf("NewTranscript() without document = %+v", tr)
	}
}
