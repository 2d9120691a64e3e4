package internal

import (
	"sync"
	"time"
)

// Ticket identifies one upload attempt
type Ticket struct {
	generation uint64
}

// Tag identifies the document an in-flight fetch was started for. Results
// carrying a tag that no longer matches the active session are discarded.
type Tag struct {
	Generation uint64
	ID         string
}

// DocumentState is the single source of truth for the active document and
// its derived results. Only the operations below mutate it; readers get
// copies through Snapshot and Subscribe.
type DocumentState struct {
	mu          sync.Mutex
	session     DocumentSession
	generation  uint64
	subscribers map[int]chan DocumentSession
	nextSub     int
	now         func() time.Time
}

// NewDocumentState creates an empty document state
func NewDocumentState() *DocumentState {
	return &DocumentState{
		session:     emptySession(),
		subscribers: make(map[int]chan DocumentSession),
		now:         time.Now,
	}
}

func emptySession() DocumentSession {
	return DocumentSession{
		Summary:    FetchState{Status: StatusIdle},
		Extraction: FetchState{Status: StatusIdle},
	}
}

// BeginUpload replaces the session with one for file. Any previous id and
// results are dropped and every earlier ticket or tag becomes stale.
func (d *DocumentState) BeginUpload(file FileInfo) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	session := emptySession()
	f := file
	session.File = &f
	d.session = session
	d.publishLocked()

	return Ticket{generation: d.generation}
}

// CompleteUpload records the backend id for the upload identified by ticket
// and marks both result views as loading. It reports false when a newer
// upload has superseded this one.
func (d *DocumentState) CompleteUpload(ticket Ticket, id string) (Tag, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ticket.generation != d.generation || id == "" {
		LogDebug("Discarding upload completion for superseded upload (id %q)", id)
		return Tag{}, false
	}

	d.session.ID = id
	d.session.UploadedAt = d.now()
	d.session.Summary = FetchState{Status: StatusLoading}
	d.session.Extraction = FetchState{Status: StatusLoading}
	d.publishLocked()

	return Tag{Generation: d.generation, ID: id}, true
}

// FailUpload rolls back to the empty, pre-upload state
func (d *DocumentState) FailUpload(ticket Ticket, reason string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ticket.generation != d.generation {
		return false
	}
	LogDebug("Upload failed, clearing document session: %s", reason)
	d.session = emptySession()
	d.publishLocked()
	return true
}

// Attach makes id the active document without an upload, for a document
// the backend already holds. Both views start idle; every earlier ticket or
// tag becomes stale.
func (d *DocumentState) Attach(file *FileInfo, id string) (Tag, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id == "" {
		return Tag{}, false
	}
	d.generation++
	session := emptySession()
	if file != nil {
		f := *file
		session.File = &f
	}
	session.ID = id
	session.UploadedAt = d.now()
	d.session = session
	d.publishLocked()

	return Tag{Generation: d.generation, ID: id}, true
}

// Refetch marks a result view as loading again for the current document
func (d *DocumentState) Refetch(view View) (Tag, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session.ID == "" {
		return Tag{}, false
	}
	state := d.viewLocked(view)
	if state == nil {
		return Tag{}, false
	}
	*state = FetchState{Status: StatusLoading}
	d.publishLocked()
	return Tag{Generation: d.generation, ID: d.session.ID}, true
}

// ReceiveSummary commits a summary fetched for tag
func (d *DocumentState) ReceiveSummary(tag Tag, result *AnalysisResult, attempts int) bool {
	return d.receive(tag, ViewSummary, result, attempts)
}

// ReceiveExtraction commits an extraction fetched for tag
func (d *DocumentState) ReceiveExtraction(tag Tag, result *AnalysisResult, attempts int) bool {
	return d.receive(tag, ViewExtract, result, attempts)
}

func (d *DocumentState) receive(tag Tag, view View, result *AnalysisResult, attempts int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.currentLocked(tag) {
		LogDebug("Discarding stale %s result for document %q", view, tag.ID)
		return false
	}
	state := d.viewLocked(view)
	*state = FetchState{Status: StatusReady, Result: result, Attempts: attempts}
	d.publishLocked()
	return true
}

// RecordAttempt updates the attempt counter of a loading view
func (d *DocumentState) RecordAttempt(tag Tag, view View, attempts int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.currentLocked(tag) {
		return false
	}
	state := d.viewLocked(view)
	if state == nil || state.Status != StatusLoading {
		return false
	}
	state.Attempts = attempts
	d.publishLocked()
	return true
}

// FailView marks a result view as failed for tag
func (d *DocumentState) FailView(tag Tag, view View, reason string, attempts int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.currentLocked(tag) {
		LogDebug("Discarding stale %s failure for document %q", view, tag.ID)
		return false
	}
	state := d.viewLocked(view)
	if state == nil {
		return false
	}
	*state = FetchState{Status: StatusFailed, Reason: reason, Attempts: attempts}
	d.publishLocked()
	return true
}

// Current reports whether tag still addresses the active document
func (d *DocumentState) Current(tag Tag) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentLocked(tag)
}

func (d *DocumentState) currentLocked(tag Tag) bool {
	return tag.ID != "" && tag.Generation == d.generation && tag.ID == d.session.ID
}

func (d *DocumentState) viewLocked(view View) *FetchState {
	switch view {
	case ViewSummary:
		return &d.session.Summary
	case ViewExtract:
		return &d.session.Extraction
	default:
		return nil
	}
}

// Snapshot returns a copy of the current session
func (d *DocumentState) Snapshot() DocumentSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.copyLocked()
}

func (d *DocumentState) copyLocked() DocumentSession {
	s := d.session
	if s.File != nil {
		f := *s.File
		s.File = &f
	}
	return s
}

// Subscribe returns a channel receiving the latest session after every
// change. Slow readers only see the most recent value.
func (d *DocumentState) Subscribe() (<-chan DocumentSession, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan DocumentSession, 1)
	id := d.nextSub
	d.nextSub++
	d.subscribers[id] = ch

	cancel := func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if c, ok := d.subscribers[id]; ok {
			delete(d.subscribers, id)
			close(c)
		}
	}
	return ch, cancel
}

func (d *DocumentState) publishLocked() {
	snapshot := d.copyLocked()
	for _, ch := range d.subscribers {
		// drop the stale value so the buffer always holds the latest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
