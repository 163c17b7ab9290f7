package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wellman-connect/wellauth/internal/adapter/inbound/http"
	"github.com/wellman-connect/wellauth/internal/adapter/outbound/state"
	"github.com/wellman-connect/wellauth/internal/config"
	"github.com/wellman-connect/wellauth/internal/domain/auth"
	"github.com/wellman-connect/wellauth/internal/domain/ratelimit"
	"github.com/wellman-connect/wellauth/internal/domain/route"
	"github.com/wellman-connect/wellauth/internal/domain/security"
	"github.com/wellman-connect/wellauth/internal/domain/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	Long: `Start the wellauth HTTP service.

The service persists sessions and accounts as JSON files in the storage
directory and exposes the navigation, account, health, and metrics
endpoints.

Examples:
  # Start with config file settings
  wellauth serve

  # Start with a specific config file
  wellauth --config /path/to/config.yaml serve

  # Development mode (debug logging, relaxed security audit)
  wellauth serve --dev`,
	RunE: runServe,
}

var devMode bool

func init() {
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (debug logging, relaxed security audit)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration (without validation, so CLI flags can override first).
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Signal context for graceful shutdown. stop() restores default
	// handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	return run(ctx, cfg, logger)
}

// run wires all components together and serves until the context is done.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dir, err := storageDir(cfg)
	if err != nil {
		return err
	}
	storage, err := state.NewFileStorage(dir, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	logger.Info("storage ready", "dir", storage.Dir())

	ttl, err := cfg.SessionTTL()
	if err != nil {
		return err
	}
	refreshInterval, err := cfg.SessionRefreshInterval()
	if err != nil {
		return err
	}
	window, err := cfg.RateLimitWindow()
	if err != nil {
		return err
	}
	cleanupInterval, err := cfg.RateLimitCleanupInterval()
	if err != nil {
		return err
	}

	tokens := security.NewIDGenerator("wellauth/" + Version)
	sessions := session.NewStore(storage, tokens, logger,
		session.WithTTL(ttl),
		session.WithRefreshInterval(refreshInterval),
	)
	sessions.InitializeAuth()
	sessions.StartAutoRefresh()
	defer sessions.Stop()

	limiter := ratelimit.NewLimiterWithConfig(logger, cleanupInterval)
	limiter.StartCleanup()
	defer limiter.Stop()

	accounts := auth.NewAccounts(storage, logger)
	csrf := security.NewCSRFManager(storage, logger)
	guard := route.NewGuard(sessions, logger)

	registry := prometheus.NewRegistry()
	metrics := http.NewMetrics(registry)

	// Startup security audit of the configured environment.
	report := security.Audit(security.Environment{
		Protocol:              cfg.Security.Protocol,
		UserAgent:             "wellauth/" + Version,
		SecureCookies:         cfg.Security.SecureCookies,
		ContentSecurityPolicy: cfg.Security.ContentSecurityPolicy,
	}, csrf, time.Now().UTC(), logger)
	for _, rec := range report.Recommendations {
		logger.Warn("security recommendation", "message", rec)
	}

	handler := http.NewHandler(sessions, guard, accounts, limiter, csrf, metrics, logger,
		http.WithRateLimitPolicy(cfg.RateLimit.MaxAttempts, window),
	)
	health := http.NewHealthChecker(accounts, limiter, Version)

	mux := handler.Routes()
	mux.Handle("GET /healthz", health.Handler())
	mux.Handle("GET /metrics", http.MetricsHandler(registry))

	var root stdhttp.Handler = mux
	root = http.SecurityHeadersMiddleware(security.SecurityHeaders())(root)
	root = http.AccessLogMiddleware(logger)(root)
	root = http.RequestIDMiddleware(root)

	server := &stdhttp.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.HTTPAddr, "dev_mode", cfg.DevMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("wellauth stopped")
	return nil
}

// storageDir resolves the configured storage directory, defaulting to
// ~/.wellauth.
func storageDir(cfg *config.Config) (string, error) {
	if cfg.Storage.Dir != "" {
		return cfg.Storage.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".wellauth"), nil
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
