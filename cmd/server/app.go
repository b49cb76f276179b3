package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/vigil-api/internal/api"
	"github.com/phrazzld/vigil-api/internal/bootstrap"
	"github.com/phrazzld/vigil-api/internal/config"
	"github.com/phrazzld/vigil-api/internal/docs"
	"github.com/phrazzld/vigil-api/internal/platform/database"
	"github.com/phrazzld/vigil-api/internal/scanner"
)

// dataSource is the storage dependency of the application.
type dataSource interface {
	Connect(ctx context.Context) error
	Check(ctx context.Context) error
	Close() error
}

// ruleScanner is the scanning dependency of the application.
type ruleScanner interface {
	Activate(ctx context.Context) error
	Check(ctx context.Context) error
	Scan(ctx context.Context, data []byte) ([]scanner.Match, error)
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// application holds the initialized dependencies and the request pipeline.
type application struct {
	config *config.Config
	logger *slog.Logger

	dataSource dataSource
	scanner    ruleScanner
	handler    http.Handler

	stopWatch context.CancelFunc
	watchDone <-chan struct{}
}

func newDataSource(cfg *config.Config, logger *slog.Logger) *database.DataSource {
	return database.New(database.Config{
		Driver:          cfg.Database.Driver,
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		PingTimeout:     cfg.Database.PingTimeout,
		MigrationsDir:   cfg.Database.MigrationsDir,
	}, logger)
}

func newScanner(cfg *config.Config, logger *slog.Logger) *scanner.RuleScanner {
	return scanner.NewRuleScanner(cfg.Scanner.RulesPath, logger)
}

// newApplication runs the startup sequence and assembles the request
// pipeline. A data source failure aborts startup; a scanner failure does not.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	ds dataSource,
	sc ruleScanner,
) (*application, error) {
	app := &application{
		config:     cfg,
		logger:     logger,
		dataSource: ds,
		scanner:    sc,
	}

	handler, err := bootstrap.Initialize(ctx, logger, ds, sc, app.assemble)
	if err != nil {
		// The data source may have connected before a later step failed.
		if closeErr := ds.Close(); closeErr != nil {
			logger.Error("Error closing data source", "error", closeErr)
		}
		return nil, err
	}
	app.handler = handler

	if cfg.Scanner.Watch {
		app.startRuleWatcher(ctx)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// assemble builds the full pipeline around the API router.
func (app *application) assemble() (http.Handler, error) {
	spec, err := docs.Load(app.config.Docs.SpecPath)
	if err != nil {
		return nil, err
	}

	return api.NewPipeline(api.PipelineConfig{
		DocsSpec:             spec,
		DocsTitle:            app.config.Docs.Title,
		MaxBodyBytes:         app.config.HTTP.MaxBodyBytes,
		CORSAllowedOrigins:   app.config.HTTP.CORSAllowedOrigins,
		RateLimitRPS:         app.config.HTTP.RateLimitRPS,
		RateLimitBurst:       app.config.HTTP.RateLimitBurst,
		RedactInternalErrors: app.config.Server.RedactInternalErrors,
	}, app.setupRouter(), app.logger)
}

// startRuleWatcher reloads scanner rules on file changes until cleanup. A
// watcher that cannot start is logged and otherwise ignored.
func (app *application) startRuleWatcher(ctx context.Context) {
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done, err := app.scanner.Watch(watchCtx)
	if err != nil {
		cancel()
		app.logger.Warn("Rule watcher not started", "error", err)
		return
	}
	app.stopWatch = cancel
	app.watchDone = done
}

// Run serves the application on the configured port until ctx is cancelled
// or the process receives SIGINT or SIGTERM.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.stopWatch != nil {
		app.stopWatch()
		<-app.watchDone
		app.stopWatch = nil
	}

	if app.dataSource != nil {
		if err := app.dataSource.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
