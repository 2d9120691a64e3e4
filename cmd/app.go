package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/iksnae/legal-buddy/internal"
	"github.com/iksnae/legal-buddy/internal/telemetry"
)

// app holds what a command needs to talk to the backend and the local store
type app struct {
	cfg      internal.Config
	paths    internal.StoragePaths
	store    *internal.SQLiteStore
	chat     *internal.ChatLog
	gateway  *internal.Gateway
	engine   *internal.Engine
	notifier internal.Notifier
	shutdown telemetry.Shutdown
}

// loadConfig resolves storage paths and the layered configuration,
// applying the persistent flags last
func loadConfig() (internal.Config, internal.StoragePaths, error) {
	paths, err := internal.GetStoragePaths(storagePath)
	if err != nil {
		return internal.Config{}, internal.StoragePaths{}, fmt.Errorf("failed to get storage paths: %w", err)
	}

	path := configPath
	if path == "" {
		path = paths.ConfigPath
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return internal.Config{}, internal.StoragePaths{}, err
	}

	if cfg.StoragePath != "" && storagePath == "" {
		if paths, err = internal.GetStoragePaths(cfg.StoragePath); err != nil {
			return internal.Config{}, internal.StoragePaths{}, fmt.Errorf("failed to get storage paths: %w", err)
		}
	}
	if backendURL != "" {
		cfg.BaseURL = backendURL
		if err := cfg.Validate(); err != nil {
			return internal.Config{}, internal.StoragePaths{}, err
		}
	}
	if cfg.LogFile == "" {
		cfg.LogFile = paths.LogPath
	}
	if traceOut && cfg.TraceFile == "" {
		cfg.TraceFile = paths.TracePath
	}
	return cfg, paths, nil
}

// newApp opens the store, restores the chat log and wires the engine.
// Notifications go to out; opts adjust the engine options derived from
// config.
func newApp(ctx context.Context, out io.Writer, opts ...func(*internal.EngineOptions)) (*app, error) {
	cfg, paths, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := internal.SetLogFile(cfg.LogFile, false); err != nil {
		internal.LogWarn("Failed to open log file %s: %v", cfg.LogFile, err)
	}

	shutdown, err := telemetry.InitTracing(ctx, cfg.TraceFile, version)
	if err != nil {
		internal.LogWarn("Tracing disabled: %v", err)
		shutdown = func() error { return nil }
	}

	store, err := internal.OpenDatabase(paths.DatabasePath)
	if err != nil {
		_ = shutdown()
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	chat := internal.NewChatLog(store)
	chat.Restore()

	policy, err := internal.NewViewPolicy(cfg.ViewPolicy)
	if err != nil {
		store.Close()
		_ = shutdown()
		return nil, err
	}

	notifier := internal.NewTerminalNotifier(out)
	gateway := internal.NewGateway(cfg.GatewayConfig())
	engineOpts := internal.EngineOptions{
		PollAttempts: cfg.Poll.MaxAttempts,
		PollInterval: cfg.Poll.Interval,
		Notifier:     notifier,
		Policy:       policy,
		ExplicitAsk:  cfg.AskMode == "explicit",
	}
	for _, opt := range opts {
		opt(&engineOpts)
	}
	engine := internal.NewEngine(gateway, chat, engineOpts)

	return &app{
		cfg:      cfg,
		paths:    paths,
		store:    store,
		chat:     chat,
		gateway:  gateway,
		engine:   engine,
		notifier: notifier,
		shutdown: shutdown,
	}, nil
}

// Close stops polls and releases the store, log and trace files
func (a *app) Close() {
	a.engine.Close()
	if err := a.store.Close(); err != nil {
		internal.LogWarn("Failed to close local store: %v", err)
	}
	if err := a.shutdown(); err != nil {
		internal.LogWarn("Failed to flush traces: %v", err)
	}
	internal.CloseLogFile()
}
