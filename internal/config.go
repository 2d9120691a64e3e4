package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PollConfig configures summary and extraction polling
type PollConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Interval    time.Duration `yaml:"interval"`
}

// Config holds application configuration
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	Routes         Routes        `yaml:"routes"`
	FetchMethod    string        `yaml:"fetch_method"` // GET or POST
	UploadField    string        `yaml:"upload_field"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Poll           PollConfig    `yaml:"poll"`
	AskMode        string        `yaml:"ask_mode"`    // implicit or explicit
	ViewPolicy     string        `yaml:"view_policy"` // permissive or strict
	StoragePath    string        `yaml:"storage_path"`
	LogFile        string        `yaml:"log_file"`
	TraceFile      string        `yaml:"trace_file"`
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:5000",
		Routes: Routes{
			Upload:  "/upload",
			Summary: "/summary/{id}",
			Extract: "/extract/{id}",
			Ask:     "/ask",
		},
		FetchMethod:    http.MethodGet,
		UploadField:    "file",
		RequestTimeout: 120 * time.Second,
		Poll: PollConfig{
			MaxAttempts: DefaultPollAttempts,
			Interval:    DefaultPollInterval,
		},
		AskMode:    "implicit",
		ViewPolicy: "permissive",
	}
}

// LoadConfig layers defaults, the YAML file at path, a .env file and
// LEGAL_BUDDY_* environment variables. A missing file at path is not an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			LogDebug("No config file at %s, using defaults", path)
		default:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		LogWarn("Failed to load .env file: %v", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LEGAL_BUDDY_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("LEGAL_BUDDY_FETCH_METHOD"); v != "" {
		c.FetchMethod = v
	}
	if v := os.Getenv("LEGAL_BUDDY_ASK_MODE"); v != "" {
		c.AskMode = v
	}
	if v := os.Getenv("LEGAL_BUDDY_VIEW_POLICY"); v != "" {
		c.ViewPolicy = v
	}
	if v := os.Getenv("LEGAL_BUDDY_STORAGE"); v != "" {
		c.StoragePath = v
	}
	if v := os.Getenv("LEGAL_BUDDY_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("LEGAL_BUDDY_POLL_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse LEGAL_BUDDY_POLL_ATTEMPTS: %w", err)
		}
		c.Poll.MaxAttempts = n
	}
	if v := os.Getenv("LEGAL_BUDDY_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse LEGAL_BUDDY_POLL_INTERVAL: %w", err)
		}
		c.Poll.Interval = d
	}
	return nil
}

// Validate checks the configuration for values the client cannot work with
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	switch strings.ToUpper(c.FetchMethod) {
	case http.MethodGet, http.MethodPost:
	default:
		return fmt.Errorf("unsupported fetch_method: %s (supported: GET, POST)", c.FetchMethod)
	}
	switch c.AskMode {
	case "implicit", "explicit":
	default:
		return fmt.Errorf("unsupported ask_mode: %s (supported: implicit, explicit)", c.AskMode)
	}
	if _, err := NewViewPolicy(c.ViewPolicy); err != nil {
		return err
	}
	if c.Poll.MaxAttempts < 1 {
		return fmt.Errorf("poll.max_attempts must be at least 1, got %d", c.Poll.MaxAttempts)
	}
	if c.Poll.Interval < 0 {
		return fmt.Errorf("poll.interval must not be negative, got %s", c.Poll.Interval)
	}
	return nil
}

// GatewayConfig derives the backend client settings
func (c Config) GatewayConfig() GatewayConfig {
	return GatewayConfig{
		BaseURL:     c.BaseURL,
		Routes:      c.Routes,
		FetchMethod: c.FetchMethod,
		UploadField: c.UploadField,
		Timeout:     c.RequestTimeout,
	}
}
