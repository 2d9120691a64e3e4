package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Reply is one scripted backend response
type Reply struct {
	Status int
	Body   string
}

// OK returns a 200 reply with a JSON body
func OK(body string) Reply {
	return Reply{Status: http.StatusOK, Body: body}
}

// Fail returns a reply with status and an {"error": msg} body
func Fail(status int, msg string) Reply {
	return Reply{Status: status, Body: `{"error":"` + msg + `"}`}
}

// RecordedRequest is what the fake backend saw for one call
type RecordedRequest struct {
	Method    string
	Path      string
	Body      string
	Header    http.Header
	FieldName string // multipart field of an upload
	FileName  string // multipart file name of an upload
	FileData  string
}

// FakeBackend is an httptest server answering the upload, summary, extract
// and ask routes with scripted replies
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	scripts  map[string][]Reply
	calls    map[string]int
	requests map[string][]RecordedRequest
}

// NewFakeBackend starts a fake backend that is closed when t finishes.
// Unscripted routes answer 404.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		scripts:  make(map[string][]Reply),
		calls:    make(map[string]int),
		requests: make(map[string][]RecordedRequest),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// Script queues replies for route (upload, summary, extract, ask or root).
// Once the queue is drained the last reply repeats.
func (f *FakeBackend) Script(route string, replies ...Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[route] = append(f.scripts[route], replies...)
}

// Calls returns how many requests route received
func (f *FakeBackend) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// Requests returns the requests route received, in order
func (f *FakeBackend) Requests(route string) []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests[route]))
	copy(out, f.requests[route])
	return out
}

// LastRequest returns the most recent request of route
func (f *FakeBackend) LastRequest(route string) (RecordedRequest, bool) {
	reqs := f.Requests(route)
	if len(reqs) == 0 {
		return RecordedRequest{}, false
	}
	return reqs[len(reqs)-1], true
}

func (f *FakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	route := routeFor(r.URL.Path)
	rec := record(r)

	f.mu.Lock()
	f.calls[route]++
	f.requests[route] = append(f.requests[route], rec)
	reply, ok := f.nextLocked(route)
	f.mu.Unlock()

	if !ok {
		reply = Fail(http.StatusNotFound, "not found")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}

func (f *FakeBackend) nextLocked(route string) (Reply, bool) {
	queue := f.scripts[route]
	if len(queue) == 0 {
		return Reply{}, false
	}
	reply := queue[0]
	if len(queue) > 1 {
		f.scripts[route] = queue[1:]
	}
	return reply, true
}

func routeFor(path string) string {
	switch {
	case path == "/" || path == "":
		return "root"
	case strings.HasPrefix(path, "/upload"):
		return "upload"
	case strings.HasPrefix(path, "/summary"):
		return "summary"
	case strings.HasPrefix(path, "/extract"):
		return "extract"
	case strings.HasPrefix(path, "/ask"):
		return "ask"
	default:
		return strings.TrimPrefix(path, "/")
	}
}

func record(r *http.Request) RecordedRequest {
	rec := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err == nil {
			for field, files := range r.MultipartForm.File {
				if len(files) == 0 {
					continue
				}
				rec.FieldName = field
				rec.FileName = files[0].Filename
				if fh, err := files[0].Open(); err == nil {
					data, _ := io.ReadAll(fh)
					fh.Close()
					rec.FileData = string(data)
				}
			}
		}
		return rec
	}

	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		rec.Body = string(data)
	}
	return rec
}
