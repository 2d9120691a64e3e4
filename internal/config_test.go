package internal

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LEGAL_BUDDY_BASE_URL",
		"LEGAL_BUDDY_FETCH_METHOD",
		"LEGAL_BUDDY_ASK_MODE",
		"LEGAL_BUDDY_VIEW_POLICY",
		"LEGAL_BUDDY_STORAGE",
		"LEGAL_BUDDY_LOG_FILE",
		"LEGAL_BUDDY_POLL_ATTEMPTS",
		"LEGAL_BUDDY_POLL_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := DefaultConfig()
	if cfg.BaseURL != want.BaseURL {
		t.Errorf("BaseURL = %v, want %v", cfg.BaseURL, want.BaseURL)
	}
	if cfg.Poll.MaxAttempts != 5 {
		t.Errorf("Poll.MaxAttempts = %d, want 5", cfg.Poll.MaxAttempts)
	}
	if cfg.Poll.Interval != 3*time.Second {
		t.Errorf("Poll.Interval = %v, want 3s", cfg.Poll.Interval)
	}
	if cfg.Routes.Summary != "/summary/{id}" {
		t.Errorf("Routes.Summary = %v", cfg.Routes.Summary)
	}
	if cfg.AskMode != "implicit" || cfg.ViewPolicy != "permissive" {
		t.Errorf("AskMode/ViewPolicy = %v/%v, want implicit/permissive", cfg.AskMode, cfg.ViewPolicy)
	}
}

func TestLoadConfig_File(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `base_url: http://backend:8080
routes:
  upload: /upload
  summary: /summary
  extract: /extract
  ask: /ask
fetch_method: POST
upload_field: files
request_timeout: 30s
poll:
  max_attempts: 8
  interval: 500ms
ask_mode: explicit
view_policy: strict
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.BaseURL != "http://backend:8080" {
		t.Errorf("BaseURL = %v", cfg.BaseURL)
	}
	if cfg.Routes.Summary != "/summary" {
		t.Errorf("Routes.Summary = %v, want /summary", cfg.Routes.Summary)
	}
	if cfg.FetchMethod != http.MethodPost {
		t.Errorf("FetchMethod = %v, want POST", cfg.FetchMethod)
	}
	if cfg.UploadField != "files" {
		t.Errorf("UploadField = %v, want files", cfg.UploadField)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.Poll.MaxAttempts != 8 || cfg.Poll.Interval != 500*time.Millisecond {
		t.Errorf("Poll = %+v, want 8 attempts every 500ms", cfg.Poll)
	}
	if cfg.AskMode != "explicit" || cfg.ViewPolicy != "strict" {
		t.Errorf("AskMode/ViewPolicy = %v/%v", cfg.AskMode, cfg.ViewPolicy)
	}

	gw := cfg.GatewayConfig()
	if gw.BaseURL != cfg.BaseURL || gw.UploadField != "files" || gw.Timeout != 30*time.Second {
		t.Errorf("GatewayConfig() = %+v", gw)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LEGAL_BUDDY_BASE_URL", "http://env:9000")
	t.Setenv("LEGAL_BUDDY_POLL_ATTEMPTS", "2")
	t.Setenv("LEGAL_BUDDY_POLL_INTERVAL", "10ms")
	t.Setenv("LEGAL_BUDDY_ASK_MODE", "explicit")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("base_url: http://file:8000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.BaseURL != "http://env:9000" {
		t.Errorf("BaseURL = %v, want env override", cfg.BaseURL)
	}
	if cfg.Poll.MaxAttempts != 2 || cfg.Poll.Interval != 10*time.Millisecond {
		t.Errorf("Poll = %+v", cfg.Poll)
	}
	if cfg.AskMode != "explicit" {
		t.Errorf("AskMode = %v, want explicit", cfg.AskMode)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "malformed yaml", content: "base_url: [unclosed"},
		{name: "bad base url", content: "base_url: not-a-url"},
		{name: "bad fetch method", content: "fetch_method: DELETE"},
		{name: "bad ask mode", content: "ask_mode: sometimes"},
		{name: "bad view policy", content: "view_policy: lenient"},
		{name: "zero attempts", content: "poll:\n  max_attempts: 0"},
		{name: "bad env attempts", env: map[string]string{"LEGAL_BUDDY_POLL_ATTEMPTS": "many"}},
		{name: "bad env interval", env: map[string]string{"LEGAL_BUDDY_POLL_INTERVAL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig() error = nil, want error")
			}
		})
	}
}
