// Package main is the entry point for the negotiation gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vyrodovalexey/avnegotiate/internal/config"
	"github.com/vyrodovalexey/avnegotiate/internal/middleware"
	"github.com/vyrodovalexey/avnegotiate/internal/negotiate"
	"github.com/vyrodovalexey/avnegotiate/internal/observability"
	httpserver "github.com/vyrodovalexey/avnegotiate/internal/server/http"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)

	run(cfg, flags.configPath, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("GATEWAY_CONFIG_PATH", "configs/gateway.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("GATEWAY_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("GATEWAY_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("avnegotiate gateway\nversion: %s\nbuild time: %s\ngit commit: %s\n",
		version, buildTime, gitCommit)
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// initLogger creates the process logger. NEGOTIATE_TRACE forces debug
// level so negotiation trace diagnostics become visible without touching
// the configuration.
func initLogger(flags cliFlags) observability.Logger {
	level := flags.logLevel
	if traceEnabled() {
		level = "debug"
	}

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  level,
		Format: flags.logFormat,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// traceEnabled reports whether negotiation tracing was requested via the
// environment.
func traceEnabled() bool {
	switch os.Getenv("NEGOTIATE_TRACE") {
	case "", "0", "false":
		return false
	}
	return true
}

// loadAndValidateConfig loads the configuration or exits.
func loadAndValidateConfig(path string, logger observability.Logger) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Fatal("failed to load configuration",
			observability.String("path", path),
			observability.Error(err),
		)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			observability.String("path", path),
			observability.Error(err),
		)
	}

	logger.Info("configuration loaded",
		observability.String("path", path),
		observability.Int("formats", len(cfg.Negotiate.Formats)),
	)
	return cfg
}

// buildChain assembles the middleware chain for one configuration: the
// negotiation layer in front of the terminal 406 fallback, with request
// ID injection, panic recovery and request logging around it.
func buildChain(cfg *config.Config, logger observability.Logger) (http.Handler, error) {
	table, err := cfg.Negotiate.BuildTable()
	if err != nil {
		return nil, err
	}

	opts := []negotiate.Option{negotiate.WithLogger(logger)}
	if cfg.Negotiate.Parameter != "" {
		opts = append(opts, negotiate.WithParameter(cfg.Negotiate.Parameter))
	}
	if mode := cfg.Negotiate.ExtensionMode(); mode != negotiate.ExtensionOff {
		opts = append(opts, negotiate.WithExtension(mode))
	}
	if cfg.Negotiate.ExplicitOnly {
		opts = append(opts, negotiate.WithExplicitOnly())
	}

	n, err := negotiate.New(table, opts...)
	if err != nil {
		return nil, err
	}

	chain := middleware.Negotiate(n, logger)(
		middleware.Logging(logger)(
			middleware.NotAcceptable(),
		),
	)
	chain = middleware.Recovery(logger)(chain)
	chain = middleware.RequestID()(chain)
	return chain, nil
}

// run starts the gateway and blocks until shutdown.
func run(cfg *config.Config, configPath string, logger observability.Logger) {
	chain, err := buildChain(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build negotiation chain", observability.Error(err))
	}

	srv := httpserver.NewServer(cfg.Server, chain, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := startWatcher(ctx, configPath, srv, logger)
	if watcher != nil {
		defer watcher.Stop()
	}

	if cfg.Metrics.Enabled {
		startMetricsServer(cfg.Metrics, logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", observability.Error(err))
		}
	}

	if err := srv.Stop(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", observability.Error(err))
	}
}

// startWatcher enables configuration hot reload: each change builds a
// fresh immutable chain and swaps it into the running server.
func startWatcher(ctx context.Context, path string, srv *httpserver.Server, logger observability.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		chain, err := buildChain(cfg, logger)
		if err != nil {
			logger.Error("config reload rejected", observability.Error(err))
			return
		}
		srv.Swap(chain)
		logger.Info("negotiation chain reloaded")
	},
		config.WithWatcherLogger(logger),
	)
	if err != nil {
		logger.Warn("config watcher unavailable", observability.Error(err))
		return nil
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher failed to start", observability.Error(err))
		return nil
	}
	return watcher
}

// startMetricsServer serves Prometheus metrics on the dedicated
// listener.
func startMetricsServer(cfg config.MetricsConfig, logger observability.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	go func() {
		logger.Info("metrics server starting",
			observability.String("address", cfg.Address),
			observability.String("path", cfg.Path),
		)
		if err := http.ListenAndServe(cfg.Address, mux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", observability.Error(err))
		}
	}()
}
