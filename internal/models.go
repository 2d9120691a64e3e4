package internal

import (
	"os"
	"strings"
	"time"
)

// View names a derived view of the active document
type View string

const (
	ViewSummary View = "summary"
	ViewExtract View = "extract"
	ViewChat    View = "chat"
	ViewManual  View = "manual"
)

// FetchStatus is the lifecycle tag of one derived view
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusLoading FetchStatus = "loading"
	StatusReady   FetchStatus = "ready"
	StatusFailed  FetchStatus = "failed"
)

// FetchState holds what a view should render
type FetchState struct {
	Status   FetchStatus     `json:"status" yaml:"status"`
	Result   *AnalysisResult `json:"result,omitempty" yaml:"result,omitempty"`
	Reason   string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Attempts int             `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// FileInfo describes the selected file
type FileInfo struct {
	Name         string    `json:"name" yaml:"name"`
	Size         int64     `json:"size" yaml:"size"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
}

// NewFileInfo builds a FileInfo from a stat result
func NewFileInfo(info os.FileInfo) FileInfo {
	return FileInfo{
		Name:         info.Name(),
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}
}

// DocumentSession is the state of the single active document
type DocumentSession struct {
	ID         string     `json:"id,omitempty" yaml:"id,omitempty"`
	File       *FileInfo  `json:"file,omitempty" yaml:"file,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at,omitempty" yaml:"uploaded_at,omitempty"`
	Summary    FetchState `json:"summary" yaml:"summary"`
	Extraction FetchState `json:"extraction" yaml:"extraction"`
}

// HasDocument reports whether the backend assigned an id to the active document
func (s DocumentSession) HasDocument() bool {
	return s.ID != ""
}

// State returns the fetch state of a result view
func (s DocumentSession) State(v View) FetchState {
	switch v {
	case ViewSummary:
		return s.Summary
	case ViewExtract:
		return s.Extraction
	default:
		return FetchState{Status: StatusIdle}
	}
}

// Severity of a critical clause
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Clause is a critical clause flagged by the extraction
type Clause struct {
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// ContractDates holds the effective and termination dates of a contract
type ContractDates struct {
	Effective   string `json:"effective,omitempty" yaml:"effective,omitempty"`
	Termination string `json:"termination,omitempty" yaml:"termination,omitempty"`
}

// AnalysisResult is the normalized summary or extraction result. The backend
// answers either with a free-form answer or with structured fields; both
// variants land here.
type AnalysisResult struct {
	Text          string `json:"text,omitempty" yaml:"text,omitempty"`
	ElapsedTime   string `json:"elapsed_time,omitempty" yaml:"elapsed_time,omitempty"`
	ContextChunks int    `json:"context_chunks,omitempty" yaml:"context_chunks,omitempty"`

	// summary fields
	DocumentType string   `json:"document_type,omitempty" yaml:"document_type,omitempty"`
	RiskLevel    string   `json:"risk_level,omitempty" yaml:"risk_level,omitempty"`
	KeyDates     []string `json:"key_dates,omitempty" yaml:"key_dates,omitempty"`
	ActionItems  []string `json:"action_items,omitempty" yaml:"action_items,omitempty"`

	// extraction fields
	Parties         []string      `json:"parties,omitempty" yaml:"parties,omitempty"`
	Dates           ContractDates `json:"dates,omitempty" yaml:"dates,omitempty"`
	ContractValue   string        `json:"contract_value,omitempty" yaml:"contract_value,omitempty"`
	GoverningLaw    string        `json:"governing_law,omitempty" yaml:"governing_law,omitempty"`
	CriticalClauses []Clause      `json:"critical_clauses,omitempty" yaml:"critical_clauses,omitempty"`
}

// IsStructured reports whether the structured variant was returned
func (r *AnalysisResult) IsStructured() bool {
	return r.DocumentType != "" || r.RiskLevel != "" || len(r.KeyDates) > 0 ||
		len(r.ActionItems) > 0 || len(r.Parties) > 0 || r.Dates != (ContractDates{}) ||
		r.ContractValue != "" || r.GoverningLaw != "" || len(r.CriticalClauses) > 0
}

// IsEmpty reports whether the result carries no content. An empty result
// means the analysis has not finished yet.
func (r *AnalysisResult) IsEmpty() bool {
	if r == nil {
		return true
	}
	return strings.TrimSpace(r.Text) == "" && !r.IsStructured()
}

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry of the chat log
type ChatMessage struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Sender    Sender `json:"sender" yaml:"sender"`
}

// Transcript is the exportable form of the chat log
type Transcript struct {
	DocumentID string        `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	FileName   string        `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	Messages   []ChatMessage `json:"messages" yaml:"messages"`
}

// NewTranscript builds a transcript of messages for session
func NewTranscript(session DocumentSession, messages []ChatMessage, at time.Time) *Transcript {
	t := &Transcript{
		DocumentID: session.ID,
		ExportedAt: at,
		Messages:   messages,
	}
	if session.File != nil {
		t.FileName = session.File.Name
	}
	if t.Messages == nil {
		t.Messages = []ChatMessage{}
	}
	return t
}
