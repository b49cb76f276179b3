// Package main implements the entry point for the Vigil API server, which
// exposes a signature scanner and service status over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/vigil-api/internal/config"
	"github.com/phrazzld/vigil-api/internal/platform/logger"
)

// main is the entry point for the vigil-api server.
func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration and the logger, then hands the production data
// source and scanner to runWith.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"rules_path", cfg.Scanner.RulesPath)

	return runWith(ctx, cfg, l, newDataSource(cfg, l), newScanner(cfg, l))
}

// runWith initializes the application from the given dependencies and serves
// it until shutdown. Under the testing environment the application is
// assembled but no listener is bound.
func runWith(ctx context.Context, cfg *config.Config, l *slog.Logger, ds dataSource, sc ruleScanner) error {
	app, err := newApplication(ctx, cfg, l, ds, sc)
	if err != nil {
		return err
	}

	if cfg.IsTesting() {
		l.Info("Testing environment, listener not started")
		app.cleanup()
		return nil
	}

	return app.Run(ctx)
}
