package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// NotificationLevel is the severity of a user-visible notification
type NotificationLevel int

const (
	LevelInfo NotificationLevel = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Notification is a single user-visible message
type Notification struct {
	Level   NotificationLevel
	Title   string
	Message string
}

// Notifier surfaces notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// TerminalNotifier prints notifications, styled when w is a terminal
type TerminalNotifier struct {
	mu  sync.Mutex
	Out io.Writer
}

// NewTerminalNotifier creates a notifier writing to w (stderr when nil)
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	if w == nil {
		w = os.Stderr
	}
	return &TerminalNotifier{Out: w}
}

// Notify prints one notification line
func (t *TerminalNotifier) Notify(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	text := n.Message
	if n.Title != "" {
		text = n.Title + ": " + n.Message
	}

	if !isTerminal(t.Out) {
		prefix := ""
		switch n.Level {
		case LevelWarning:
			prefix = "WARNING: "
		case LevelError:
			prefix = "ERROR: "
		}
		fmt.Fprintf(t.Out, "%s%s\n", prefix, text)
		return
	}

	var icon string
	switch n.Level {
	case LevelSuccess:
		icon = successStyle.Render("✓")
	case LevelWarning:
		icon = warningStyle.Render("⚠")
	case LevelError:
		icon = errorStyle.Render("✗")
	default:
		icon = progressStyle.Render("ℹ")
	}
	fmt.Fprintf(t.Out, "%s %s\n", icon, text)
}

// LogNotifier routes notifications to the log only
type LogNotifier struct{}

// Notify logs the notification at the matching level
func (LogNotifier) Notify(n Notification) {
	switch n.Level {
	case LevelError:
		LogError("%s: %s", n.Title, n.Message)
	case LevelWarning:
		LogWarn("%s: %s", n.Title, n.Message)
	default:
		LogInfo("%s: %s", n.Title, n.Message)
	}
}

// ShowProgress runs fn behind a spinner when stderr is a terminal
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}
	return showProgressSimple(ctx, message, fn)
}

// showProgressSimple uses a simple text-based spinner
func showProgressSimple(ctx context.Context, message string, fn func() error) error {
	spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	done := make(chan error, 1)
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				char := spinnerChars[i%len(spinnerChars)]
				fmt.Fprintf(os.Stderr, "\r%s %s", progressStyle.Render(char), message)
				i++
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		close(stop)
		<-spinnerDone
		if err != nil {
			fmt.Fprintf(os.Stderr, "\r%s %s\n", errorStyle.Render("✗"), message)
			return err
		}
		fmt.Fprintf(os.Stderr, "\r%s %s\n", successStyle.Render("✓"), message)
		return nil
	case <-ctx.Done():
		close(stop)
		<-spinnerDone
		return ctx.Err()
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
