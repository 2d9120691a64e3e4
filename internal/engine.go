package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrSuperseded is returned by Upload when a newer upload replaced it
var ErrSuperseded = errors.New("upload superseded by a newer upload")

// AnalysisBackend is the remote service the engine sequences calls to
type AnalysisBackend interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	FetchSummary(ctx context.Context, id string) (*AnalysisResult, error)
	FetchExtraction(ctx context.Context, id string) (*AnalysisResult, error)
	Ask(ctx context.Context, question string) (string, error)
	AskDocument(ctx context.Context, id, question string) (string, error)
}

// EngineOptions configures an Engine
type EngineOptions struct {
	PollAttempts int
	PollInterval time.Duration
	Sleeper      Sleeper
	Notifier     Notifier
	Policy       ViewPolicy

	// ExplicitAsk pins every question to the active document id instead of
	// relying on the backend's notion of the current document
	ExplicitAsk bool
}

// Engine orchestrates one document across upload, summary and extraction
// polling, and the chat log. It owns the document state and the chat log;
// callers only read them.
type Engine struct {
	backend AnalysisBackend
	docs    *DocumentState
	chat    *ChatLog
	opts    EngineOptions
	tracer  trace.Tracer

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	pollCtx    context.Context
	pollCancel context.CancelFunc
	polls      sync.WaitGroup

	askMu sync.Mutex
}

// NewEngine wires backend, chat log and options together
func NewEngine(backend AnalysisBackend, chat *ChatLog, opts EngineOptions) *Engine {
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = DefaultPollAttempts
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Sleeper == nil {
		opts.Sleeper = TimerSleeper{}
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	if opts.Policy == nil {
		opts.Policy = PermissivePolicy{}
	}
	if chat == nil {
		chat = NewChatLog(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		backend: backend,
		docs:    NewDocumentState(),
		chat:    chat,
		opts:    opts,
		tracer:  otel.Tracer("legal-buddy/engine"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Upload opens the file at path and uploads it
func (e *Engine) Upload(ctx context.Context, path string) (Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tag{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Tag{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Tag{}, fmt.Errorf("%s is a directory", path)
	}

	file := NewFileInfo(info)
	file.Name = filepath.Base(path)
	return e.UploadReader(ctx, file, f)
}

// UploadReader uploads r as file and, on success, starts the summary and
// extraction polls for the new document. A pending upload or poll from a
// previous document is superseded.
func (e *Engine) UploadReader(ctx context.Context, file FileInfo, r io.Reader) (Tag, error) {
	ticket := e.docs.BeginUpload(file)
	e.cancelPolls()

	id, err := e.backend.Upload(ctx, file.Name, r)
	if err != nil {
		if e.docs.FailUpload(ticket, err.Error()) {
			e.opts.Notifier.Notify(Notification{Level: LevelError, Title: "Upload failed", Message: err.Error()})
			return Tag{}, &NotifiedError{Err: err}
		}
		return Tag{}, err
	}

	tag, ok := e.docs.CompleteUpload(ticket, id)
	if !ok {
		return Tag{}, ErrSuperseded
	}
	LogInfo("Uploaded %s as document %s", file.Name, id)

	pollCtx := e.newPollContext()
	e.startPoll(pollCtx, tag, ViewSummary)
	e.startPoll(pollCtx, tag, ViewExtract)
	return tag, nil
}

// Attach makes a document the backend already holds the active one. Polls
// of the previous document are cancelled; nothing is fetched until a view
// is opened.
func (e *Engine) Attach(id string) (Tag, error) {
	e.cancelPolls()
	tag, ok := e.docs.Attach(nil, id)
	if !ok {
		return Tag{}, &ValidationError{Field: "document id"}
	}
	return tag, nil
}

// Open applies the view policy to view and retriggers its fetch when the
// policy asks for it
func (e *Engine) Open(view View) Activation {
	a := e.opts.Policy.Activate(view, e.docs.Snapshot())
	if !a.Allowed || !a.Refetch {
		return a
	}
	if tag, ok := e.docs.Refetch(view); ok {
		e.startPoll(e.currentPollContext(), tag, view)
	}
	return a
}

// Ask appends question to the chat log, sends it and appends the answer.
// Blank questions change nothing and return a *ValidationError. A failed
// call appends no answer, emits one notification and returns a
// *NotifiedError.
func (e *Engine) Ask(ctx context.Context, question string) (ChatMessage, error) {
	e.askMu.Lock()
	defer e.askMu.Unlock()

	_, ok, err := e.chat.AppendUserMessage(question)
	if !ok {
		return ChatMessage{}, &ValidationError{Field: "question"}
	}
	if err != nil {
		e.opts.Notifier.Notify(Notification{Level: LevelWarning, Title: "Chat history not saved", Message: err.Error()})
	}

	var answer string
	session := e.docs.Snapshot()
	if e.opts.ExplicitAsk && session.HasDocument() {
		answer, err = e.backend.AskDocument(ctx, session.ID, question)
	} else {
		answer, err = e.backend.Ask(ctx, question)
	}
	if err != nil {
		e.opts.Notifier.Notify(Notification{Level: LevelError, Title: "Question failed", Message: err.Error()})
		return ChatMessage{}, &NotifiedError{Err: err}
	}

	msg, err := e.chat.AppendBotMessage(answer)
	if err != nil {
		e.opts.Notifier.Notify(Notification{Level: LevelWarning, Title: "Chat history not saved", Message: err.Error()})
	}
	return msg, nil
}

// Document returns a snapshot of the document session
func (e *Engine) Document() DocumentSession {
	return e.docs.Snapshot()
}

// Subscribe streams document session changes
func (e *Engine) Subscribe() (<-chan DocumentSession, func()) {
	return e.docs.Subscribe()
}

// Messages returns the chat log in display order
func (e *Engine) Messages() []ChatMessage {
	return e.chat.Messages()
}

// Wait blocks until every running poll finished or ctx is done
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.polls.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops all polls and waits for them to return
func (e *Engine) Close() {
	e.cancel()
	e.polls.Wait()
}

func (e *Engine) newPollContext() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pollCancel != nil {
		e.pollCancel()
	}
	e.pollCtx, e.pollCancel = context.WithCancel(e.ctx)
	return e.pollCtx
}

func (e *Engine) currentPollContext() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pollCtx == nil || e.pollCtx.Err() != nil {
		e.pollCtx, e.pollCancel = context.WithCancel(e.ctx)
	}
	return e.pollCtx
}

func (e *Engine) cancelPolls() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pollCancel != nil {
		e.pollCancel()
		e.pollCancel = nil
		e.pollCtx = nil
	}
}

func (e *Engine) startPoll(ctx context.Context, tag Tag, view View) {
	e.polls.Add(1)
	go func() {
		defer e.polls.Done()
		e.poll(ctx, tag, view)
	}()
}

func (e *Engine) poll(ctx context.Context, tag Tag, view View) {
	fetch := e.backend.FetchSummary
	label := "Summary"
	if view == ViewExtract {
		fetch = e.backend.FetchExtraction
		label = "Extraction"
	}

	ctx, span := e.tracer.Start(ctx, "poll."+string(view), trace.WithAttributes(attribute.String("document.id", tag.ID)))
	defer span.End()

	attempts := 0
	result, err := PollUntilReady(ctx, func(ctx context.Context) (*AnalysisResult, error) {
		return fetch(ctx, tag.ID)
	}, PollOptions[*AnalysisResult]{
		Op:          label,
		MaxAttempts: e.opts.PollAttempts,
		Interval:    e.opts.PollInterval,
		IsEmpty:     (*AnalysisResult).IsEmpty,
		Sleeper:     e.opts.Sleeper,
		Notifier:    &currentDocumentNotifier{inner: e.opts.Notifier, docs: e.docs, tag: tag},
		OnAttempt: func(attempt int, _ error) {
			attempts = attempt
			e.docs.RecordAttempt(tag, view, attempt)
		},
	})
	span.SetAttributes(attribute.Int("poll.attempts", attempts))

	switch {
	case err == nil:
		if view == ViewSummary {
			e.docs.ReceiveSummary(tag, result, attempts)
		} else {
			e.docs.ReceiveExtraction(tag, result, attempts)
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		LogDebug("%s poll for document %s cancelled", label, tag.ID)
	default:
		recordError(span, err)
		e.docs.FailView(tag, view, err.Error(), attempts)
	}
}

// currentDocumentNotifier drops notifications of polls whose document was
// replaced meanwhile
type currentDocumentNotifier struct {
	inner Notifier
	docs  *DocumentState
	tag   Tag
}

func (n *currentDocumentNotifier) Notify(note Notification) {
	if !n.docs.Current(n.tag) {
		return
	}
	n.inner.Notify(note)
}
