package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 4 << 10

// Routes holds the backend paths. Summary and extract may contain an {id}
// placeholder for the document id.
type Routes struct {
	Upload  string `yaml:"upload"`
	Summary string `yaml:"summary"`
	Extract string `yaml:"extract"`
	Ask     string `yaml:"ask"`
}

// GatewayConfig configures the backend client
type GatewayConfig struct {
	BaseURL     string
	Routes      Routes
	FetchMethod string // GET or POST for summary and extract
	UploadField string
	Timeout     time.Duration
}

// Gateway issues the four backend calls. Every call is exactly one HTTP
// round-trip; retries and caching live above it.
//
// Ask addresses whatever document the backend considers current: the
// backend keeps the context of the most recently uploaded document and the
// legacy /ask contract carries no document id. Concurrent sessions against
// the same backend are therefore not supported. AskDocument sends the id
// explicitly for backends that accept it.
type Gateway struct {
	cfg        GatewayConfig
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewGateway creates a gateway for cfg
func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.UploadField == "" {
		cfg.UploadField = "file"
	}
	if cfg.FetchMethod == "" {
		cfg.FetchMethod = http.MethodGet
	}
	cfg.FetchMethod = strings.ToUpper(cfg.FetchMethod)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer("legal-buddy/gateway"),
	}
}

// uploadResponse covers both upload response variants
type uploadResponse struct {
	Success        *bool    `json:"success"`
	FileID         string   `json:"fileId"`
	Message        string   `json:"message"`
	Status         string   `json:"status"`
	ProcessedFiles []string `json:"processed_files"`
	Error          string   `json:"error"`
}

// analysisResponse covers the free-form and structured summary/extract variants
type analysisResponse struct {
	Answer        string `json:"answer"`
	TimeTaken     string `json:"time_taken"`
	ContextChunks int    `json:"context_chunks"`
	Error         string `json:"error"`

	DocumentType string   `json:"documentType"`
	RiskLevel    string   `json:"riskLevel"`
	KeyDates     []string `json:"keyDates"`
	ActionItems  []string `json:"actionItems"`

	Parties         []string      `json:"parties"`
	Dates           ContractDates `json:"dates"`
	ContractValue   string        `json:"contractValue"`
	GoverningLaw    string        `json:"governingLaw"`
	CriticalClauses []Clause      `json:"criticalClauses"`
}

type askRequest struct {
	Query  string `json:"query"`
	FileID string `json:"fileId,omitempty"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error"`
}

// Upload sends the document as a single multipart file field and returns
// the backend-assigned id
func (g *Gateway) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.upload", trace.WithAttributes(attribute.String("file.name", name)))
	defer span.End()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(g.cfg.UploadField, name)
	if err != nil {
		return "", fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+g.cfg.Routes.Upload, body)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	data, status, err := g.do(req, "upload")
	if err != nil {
		recordError(span, err)
		return "", err
	}

	var out uploadResponse
	if err := json.Unmarshal(data, &out); err != nil {
		err = &ServerError{Op: "upload", Status: status, Body: "malformed upload response"}
		recordError(span, err)
		return "", err
	}

	if out.Success != nil && !*out.Success {
		err := &ServerError{Op: "upload", Status: status, Body: firstNonEmpty(out.Message, out.Error, "upload rejected")}
		recordError(span, err)
		return "", err
	}

	id := out.FileID
	if id == "" && (out.Status == "success" || out.Status == "partial_success") {
		// the backend tracks the document itself and returns no id
		id = firstNonEmpty(strings.Join(out.ProcessedFiles, ","), name)
	}
	if id == "" {
		err := &ServerError{Op: "upload", Status: status, Body: "response carried no fileId"}
		recordError(span, err)
		return "", err
	}

	span.SetAttributes(attribute.String("document.id", id))
	return id, nil
}

// FetchSummary fetches the summary of document id
func (g *Gateway) FetchSummary(ctx context.Context, id string) (*AnalysisResult, error) {
	return g.fetchAnalysis(ctx, "summary", g.cfg.Routes.Summary, id)
}

// FetchExtraction fetches the structured extraction of document id
func (g *Gateway) FetchExtraction(ctx context.Context, id string) (*AnalysisResult, error) {
	return g.fetchAnalysis(ctx, "extract", g.cfg.Routes.Extract, id)
}

func (g *Gateway) fetchAnalysis(ctx context.Context, op, route, id string) (*AnalysisResult, error) {
	ctx, span := g.tracer.Start(ctx, "gateway."+op, trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	path := route
	templated := strings.Contains(route, "{id}")
	if templated {
		path = strings.ReplaceAll(route, "{id}", url.PathEscape(id))
	}

	var reqBody io.Reader
	if g.cfg.FetchMethod == http.MethodPost {
		payload := map[string]string{}
		if !templated {
			payload["fileId"] = id
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, g.cfg.FetchMethod, g.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, _, err := g.do(req, op)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	result, err := normalizeAnalysis(op, data)
	if err != nil {
		span.SetAttributes(attribute.Bool("result.ready", false))
		return nil, err
	}
	span.SetAttributes(attribute.Bool("result.ready", true))
	return result, nil
}

// normalizeAnalysis maps either response variant onto AnalysisResult. A
// malformed or empty payload means the analysis is still running.
func normalizeAnalysis(op string, data []byte) (*AnalysisResult, error) {
	var raw analysisResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &NotReadyError{Op: op}
	}

	result := &AnalysisResult{
		Text:            raw.Answer,
		ElapsedTime:     raw.TimeTaken,
		ContextChunks:   raw.ContextChunks,
		DocumentType:    raw.DocumentType,
		RiskLevel:       raw.RiskLevel,
		KeyDates:        raw.KeyDates,
		ActionItems:     raw.ActionItems,
		Parties:         raw.Parties,
		Dates:           raw.Dates,
		ContractValue:   raw.ContractValue,
		GoverningLaw:    raw.GoverningLaw,
		CriticalClauses: raw.CriticalClauses,
	}
	if result.IsEmpty() {
		return nil, &NotReadyError{Op: op}
	}
	return result, nil
}

// Ask sends a question about the backend's current document
func (g *Gateway) Ask(ctx context.Context, question string) (string, error) {
	return g.ask(ctx, askRequest{Query: question})
}

// AskDocument sends a question pinned to document id
func (g *Gateway) AskDocument(ctx context.Context, id, question string) (string, error) {
	return g.ask(ctx, askRequest{Query: question, FileID: id})
}

func (g *Gateway) ask(ctx context.Context, payload askRequest) (string, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.ask", trace.WithAttributes(attribute.Bool("document.explicit", payload.FileID != "")))
	defer span.End()

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+g.cfg.Routes.Ask, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := g.do(req, "ask")
	if err != nil {
		recordError(span, err)
		return "", err
	}

	var out askResponse
	if err := json.Unmarshal(body, &out); err != nil {
		err = &ServerError{Op: "ask", Status: status, Body: "malformed ask response"}
		recordError(span, err)
		return "", err
	}
	if strings.TrimSpace(out.Answer) == "" {
		err := &ServerError{Op: "ask", Status: status, Body: firstNonEmpty(out.Error, "empty answer")}
		recordError(span, err)
		return "", err
	}
	return out.Answer, nil
}

// Ping checks that the backend answers at all. Any HTTP status counts as
// reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: "ping", Err: err}
	}
	resp.Body.Close()
	return nil
}

// do performs the round-trip and maps transport and status failures
func (g *Gateway) do(req *http.Request, op string) ([]byte, int, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		LogDebug("%s %s failed (request %s): %v", req.Method, req.URL.Path, requestID, err)
		return nil, 0, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &NetworkError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	LogDebug("%s %s -> %d in %s (request %s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond), requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &ServerError{Op: op, Status: resp.StatusCode, Body: errorMessage(body)}
	}
	return body, resp.StatusCode, nil
}

// errorMessage extracts {"error": "..."} when present, else a trimmed body
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := firstNonEmpty(payload.Error, payload.Message); msg != "" {
			return msg
		}
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
