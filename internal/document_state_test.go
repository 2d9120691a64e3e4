package internal

import (
	"testing"
	"time"
)

func uploadDocument(t *testing.T, d *DocumentState, name, id string) Tag {
	t.Helper()
	ticket := d.BeginUpload(FileInfo{Name: name, Size: 1024})
	tag, ok := d.CompleteUpload(ticket, id)
	if !ok {
		t.Fatalf("CompleteUpload(%q) ok = false", id)
	}
	return tag
}

func TestDocumentState_UploadLifecycle(t *testing.T) {
	d := NewDocumentState()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return at }

	if d.Snapshot().HasDocument() {
		t.Fatal("new state should have no document")
	}

	ticket := d.BeginUpload(FileInfo{Name: "contract.pdf", Size: 2048})
	s := d.Snapshot()
	if s.File == nil || s.File.Name != "contract.pdf" || s.HasDocument() {
		t.Errorf("after BeginUpload session = %+v", s)
	}

	tag, ok := d.CompleteUpload(ticket, "abc123")
	if !ok {
		t.Fatal("CompleteUpload() ok = false")
	}
	s = d.Snapshot()
	if s.ID != "abc123" || !s.UploadedAt.Equal(at) {
		t.Errorf("session = %+v, want id abc123 uploaded at %s", s, at)
	}
	if s.Summary.Status != StatusLoading || s.Extraction.Status != StatusLoading {
		t.Errorf("views = %s/%s, want loading", s.Summary.Status, s.Extraction.Status)
	}

	summary := CreateTestSummary()
	if !d.ReceiveSummary(tag, summary, 2) {
		t.Fatal("ReceiveSummary() = false")
	}
	s = d.Snapshot()
	if s.Summary.Status != StatusReady || s.Summary.Result != summary || s.Summary.Attempts != 2 {
		t.Errorf("Summary = %+v", s.Summary)
	}
	if s.Extraction.Status != StatusLoading {
		t.Errorf("Extraction.Status = %s, want loading", s.Extraction.Status)
	}
}

func TestDocumentState_Supersession(t *testing.T) {
	d := NewDocumentState()
	first := uploadDocument(t, d, "first.pdf", "doc-1")
	second := uploadDocument(t, d, "second.pdf", "doc-2")

	if d.ReceiveSummary(first, &AnalysisResult{Text: "old"}, 1) {
		t.Error("ReceiveSummary() accepted a result for a superseded document")
	}
	if d.FailView(first, ViewExtract, "late failure", 5) {
		t.Error("FailView() accepted a stale tag")
	}
	if d.RecordAttempt(first, ViewSummary, 3) {
		t.Error("RecordAttempt() accepted a stale tag")
	}

	s := d.Snapshot()
	if s.ID != "doc-2" || s.Summary.Status != StatusLoading || s.Extraction.Status != StatusLoading {
		t.Errorf("session = %+v, want doc-2 loading", s)
	}
	if !d.Current(second) || d.Current(first) {
		t.Error("Current() should only accept the latest tag")
	}
}

func TestDocumentState_SameIDReupload(t *testing.T) {
	d := NewDocumentState()
	first := uploadDocument(t, d, "contract.pdf", "abc123")
	uploadDocument(t, d, "contract.pdf", "abc123")

	if d.ReceiveSummary(first, &AnalysisResult{Text: "old"}, 1) {
		t.Error("a result of an earlier upload with the same id must be discarded")
	}
}

func TestDocumentState_CompleteSupersededUpload(t *testing.T) {
	d := NewDocumentState()
	old := d.BeginUpload(FileInfo{Name: "first.pdf"})
	d.BeginUpload(FileInfo{Name: "second.pdf"})

	if _, ok := d.CompleteUpload(old, "doc-1"); ok {
		t.Error("CompleteUpload() accepted a superseded ticket")
	}
	if d.FailUpload(old, "boom") {
		t.Error("FailUpload() accepted a superseded ticket")
	}
	if s := d.Snapshot(); s.File == nil || s.File.Name != "second.pdf" || s.HasDocument() {
		t.Errorf("session = %+v, want pending second.pdf", s)
	}
}

func TestDocumentState_FailUpload(t *testing.T) {
	d := NewDocumentState()
	uploadDocument(t, d, "first.pdf", "doc-1")

	ticket := d.BeginUpload(FileInfo{Name: "second.pdf"})
	if !d.FailUpload(ticket, "status 500") {
		t.Fatal("FailUpload() = false")
	}

	s := d.Snapshot()
	if s.HasDocument() || s.File != nil {
		t.Errorf("session = %+v, want empty", s)
	}
	if s.Summary.Status != StatusIdle || s.Extraction.Status != StatusIdle {
		t.Errorf("views = %s/%s, want idle", s.Summary.Status, s.Extraction.Status)
	}
}

func TestDocumentState_EmptyIDIsRejected(t *testing.T) {
	d := NewDocumentState()
	ticket := d.BeginUpload(FileInfo{Name: "contract.pdf"})
	if _, ok := d.CompleteUpload(ticket, ""); ok {
		t.Error("CompleteUpload() accepted an empty id")
	}
	if _, ok := d.Attach(nil, ""); ok {
		t.Error("Attach() accepted an empty id")
	}
}

func TestDocumentState_FailViewAndRefetch(t *testing.T) {
	d := NewDocumentState()
	tag := uploadDocument(t, d, "contract.pdf", "abc123")

	if !d.RecordAttempt(tag, ViewExtract, 2) {
		t.Fatal("RecordAttempt() = false")
	}
	if got := d.Snapshot().Extraction.Attempts; got != 2 {
		t.Errorf("Attempts = %d, want 2", got)
	}

	if !d.FailView(tag, ViewExtract, "not ready after 5 attempts", 5) {
		t.Fatal("FailView() = false")
	}
	s := d.Snapshot()
	if s.Extraction.Status != StatusFailed || s.Extraction.Reason == "" {
		t.Errorf("Extraction = %+v, want failed with reason", s.Extraction)
	}
	if d.RecordAttempt(tag, ViewExtract, 6) {
		t.Error("RecordAttempt() should ignore views that are not loading")
	}

	retag, ok := d.Refetch(ViewExtract)
	if !ok {
		t.Fatal("Refetch() ok = false")
	}
	if retag != tag {
		t.Errorf("Refetch() tag = %+v, want %+v", retag, tag)
	}
	if s := d.Snapshot(); s.Extraction.Status != StatusLoading || s.Extraction.Reason != "" {
		t.Errorf("Extraction after Refetch = %+v, want loading", s.Extraction)
	}
}

func TestDocumentState_RefetchWithoutDocument(t *testing.T) {
	d := NewDocumentState()
	if _, ok := d.Refetch(ViewSummary); ok {
		t.Error("Refetch() without a document should report false")
	}

	uploadDocument(t, d, "contract.pdf", "abc123")
	if _, ok := d.Refetch(ViewChat); ok {
		t.Error("Refetch() of a non-result view should report false")
	}
}

func TestDocumentState_Attach(t *testing.T) {
	d := NewDocumentState()
	old := uploadDocument(t, d, "contract.pdf", "abc123")

	tag, ok := d.Attach(nil, "xyz789")
	if !ok {
		t.Fatal("Attach() ok = false")
	}
	if tag.ID != "xyz789" || tag.Generation <= old.Generation {
		t.Errorf("Attach() tag = %+v", tag)
	}

	s := d.Snapshot()
	if s.ID != "xyz789" || s.File != nil {
		t.Errorf("session = %+v, want xyz789 without file", s)
	}
	if s.Summary.Status != StatusIdle || s.Extraction.Status != StatusIdle {
		t.Errorf("views = %s/%s, want idle", s.Summary.Status, s.Extraction.Status)
	}
	if d.ReceiveSummary(old, &AnalysisResult{Text: "old"}, 1) {
		t.Error("Attach() should make earlier tags stale")
	}
}

func TestDocumentState_SnapshotIsCopy(t *testing.T) {
	d := NewDocumentState()
	uploadDocument(t, d, "contract.pdf", "abc123")

	s := d.Snapshot()
	s.File.Name = "changed.pdf"
	s.ID = "changed"

	again := d.Snapshot()
	if again.File.Name != "contract.pdf" || again.ID != "abc123" {
		t.Errorf("Snapshot() exposed internal state: %+v", again)
	}
}

func TestDocumentState_Subscribe(t *testing.T) {
	d := NewDocumentState()
	updates, cancel := d.Subscribe()

	tag := uploadDocument(t, d, "contract.pdf", "abc123")
	d.ReceiveSummary(tag, CreateTestSummary(), 1)

	// only the latest value is buffered
	select {
	case s := <-updates:
		if s.Summary.Status != StatusReady {
			t.Errorf("Summary.Status = %s, want ready", s.Summary.Status)
		}
	default:
		t.Fatal("Subscribe() delivered nothing")
	}
	select {
	case s := <-updates:
		t.Errorf("unexpected second value %+v", s)
	default:
	}

	cancel()
	if _, ok := <-updates; ok {
		t.Error("channel should be closed after cancel")
	}
	cancel()

	// publishing after cancel must not panic
	d.FailView(tag, ViewExtract, "boom", 1)
}
