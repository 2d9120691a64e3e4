package internal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CreateTestMessages creates an alternating user/bot exchange
func CreateTestMessages(pairs ...string) []ChatMessage {
	messages := make([]ChatMessage, 0, len(pairs))
	base := int64(1700000000000)
	for i, text := range pairs {
		sender := SenderUser
		if i%2 == 1 {
			sender = SenderBot
		}
		messages = append(messages, ChatMessage{
			ID:        base + int64(i),
			Text:      text,
			Timestamp: fmt.Sprintf("10:00:%02d", i%60),
			Sender:    sender,
		})
	}
	return messages
}

// CreateTestTranscript creates a transcript with a short exchange about a
// contract
func CreateTestTranscript(documentID string) *Transcript {
	return &Transcript{
		DocumentID: documentID,
		FileName:   "contract.pdf",
		ExportedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Messages: CreateTestMessages(
			"Who are the parties?",
			"Acme Corp and Beta LLC.",
		),
	}
}

// CreateTestSummary creates a structured summary result
func CreateTestSummary() *AnalysisResult {
	return &AnalysisResult{
		DocumentType: "Service Agreement",
		RiskLevel:    "medium",
		KeyDates:     []string{"2024-01-01"},
		ActionItems:  []string{"Review termination clause"},
	}
}

// CreateTestExtraction creates a structured extraction result
func CreateTestExtraction() *AnalysisResult {
	return &AnalysisResult{
		Parties:       []string{"Acme Corp", "Beta LLC"},
		Dates:         ContractDates{Effective: "2024-01-01", Termination: "2025-01-01"},
		ContractValue: "$10,000",
		GoverningLaw:  "New York",
		CriticalClauses: []Clause{
			{Type: "Indemnity", Description: "Unlimited indemnity", Severity: SeverityDanger},
		},
	}
}

// RecordingNotifier collects notifications for assertions
type RecordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

// Notify implements Notifier
func (r *RecordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

// Notifications returns a copy of what was recorded
func (r *RecordingNotifier) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

// Count returns the number of notifications at level
func (r *RecordingNotifier) Count(level NotificationLevel) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, note := range r.notes {
		if note.Level == level {
			n++
		}
	}
	return n
}

// FakeSleeper records requested delays without waiting
type FakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

// Sleep implements Sleeper
func (f *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.delays = append(f.delays, d)
	f.mu.Unlock()
	return ctx.Err()
}

// Delays returns the recorded delays
func (f *FakeSleeper) Delays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.delays))
	copy(out, f.delays)
	return out
}

// MemoryStore is an in-memory KVStore
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string

	// SetErr, when set, fails every Set
	SetErr error
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements KVStore
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KVStore
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

// Close implements KVStore
func (m *MemoryStore) Close() error { return nil }
