package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/iksnae/legal-buddy/internal"
	"github.com/spf13/cobra"
)

const sessionHelp = `Commands:
  /upload <file>   upload a document (replaces the current one)
  /summary         show the summary
  /extract         show the extraction
  /chat            show the chat history
  /manual          show the manual
  /quit            leave the session
Anything else is sent as a question.`

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session [file]",
	Short: "Start an interactive session",
	Long: `Start an interactive session. Summary and extraction keep loading in the
background while you ask questions; a line is printed when either one is ready.

` + sessionHelp,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		mu := &sync.Mutex{}
		out := &syncWriter{mu: mu, w: cmd.OutOrStdout()}

		a, err := newApp(ctx, &syncWriter{mu: mu, w: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.Close()

		updates, unsubscribe := a.engine.Subscribe()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			watchSession(out, updates)
		}()
		defer wg.Wait()
		defer unsubscribe()

		s := &interactiveSession{app: a, out: out}
		if len(args) == 1 {
			s.upload(ctx, args[0])
		}
		return s.run(ctx, cmd.InOrStdin())
	},
}

type interactiveSession struct {
	app *app
	out io.Writer
}

func (s *interactiveSession) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, headerStyle.Render("⚖️  Legal Buddy"))
	fmt.Fprintln(s.out, sessionHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(s.out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if quit := s.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle executes one input line and reports whether the session should end
func (s *interactiveSession) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(s.out, sessionHelp)
	case "/manual":
		fmt.Fprintln(s.out, manualText)
	case "/upload":
		if arg == "" {
			fmt.Fprintln(s.out, "usage: /upload <file>")
			return false
		}
		s.upload(ctx, arg)
	case "/summary", "/extract":
		view, _ := internal.ParseView(strings.TrimPrefix(command, "/"))
		s.open(view)
	case "/chat", "/history":
		renderChat(s.out, s.app.engine.Messages())
	default:
		if strings.HasPrefix(command, "/") {
			fmt.Fprintf(s.out, "unknown command %s, type /help\n", command)
			return false
		}
		s.ask(ctx, line)
	}
	return false
}

func (s *interactiveSession) upload(ctx context.Context, path string) {
	fmt.Fprintf(s.out, "Uploading %s...\n", path)
	if _, err := s.app.engine.Upload(ctx, path); err != nil {
		if !internal.IsNotified(err) {
			fmt.Fprintln(s.out, err)
		}
		return
	}
	renderFileDetails(s.out, s.app.engine.Document())
}

func (s *interactiveSession) open(view internal.View) {
	a := s.app.engine.Open(view)
	if !a.Allowed {
		fmt.Fprintln(s.out, a.Err)
		return
	}
	renderView(s.out, view, s.app.engine.Document(), a)
}

func (s *interactiveSession) ask(ctx context.Context, question string) {
	msg, err := s.app.engine.Ask(ctx, question)
	if err != nil {
		return
	}
	renderMessage(s.out, msg)
}

// watchSession prints a line whenever summary or extraction settles
func watchSession(w io.Writer, updates <-chan internal.DocumentSession) {
	var last struct {
		id         string
		summary    internal.FetchStatus
		extraction internal.FetchStatus
	}
	for session := range updates {
		if session.ID != last.id {
			last.id = session.ID
			last.summary, last.extraction = "", ""
		}
		if session.Summary.Status != last.summary {
			last.summary = session.Summary.Status
			announce(w, "Summary", "/summary", session.Summary)
		}
		if session.Extraction.Status != last.extraction {
			last.extraction = session.Extraction.Status
			announce(w, "Extraction", "/extract", session.Extraction)
		}
	}
}

func announce(w io.Writer, label, command string, state internal.FetchState) {
	switch state.Status {
	case internal.StatusReady:
		fmt.Fprintf(w, "\n%s %s ready, type %s\n", successMark, label, command)
	case internal.StatusFailed:
		fmt.Fprintf(w, "\n%s %s unavailable, type %s to retry\n", failureMark, label, command)
	}
}

var (
	successMark = botMessageStyle.Render("✓")
	failureMark = dangerClauseStyle.Render("✗")
)

// syncWriter serializes writes from the input loop and the watcher
type syncWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
