package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	// Register the SQL drivers selectable through Config.Driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Supported driver names.
const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

var (
	// ErrNotConnected is returned when the pool is used before Connect.
	ErrNotConnected = errors.New("database: not connected")

	// ErrAlreadyConnected is returned when Connect is called twice.
	ErrAlreadyConnected = errors.New("database: already connected")

	// ErrUnsupportedDriver is returned when migrations are requested for a
	// driver without a known dialect.
	ErrUnsupportedDriver = errors.New("database: unsupported driver")
)

// Config contains the connection settings of a DataSource.
type Config struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	// MigrationsDir holds goose SQL migrations. Empty disables migrations.
	MigrationsDir string
}

// DataSource owns the process-wide connection pool.
type DataSource struct {
	cfg    Config
	logger *slog.Logger

	mu sync.RWMutex
	db *sql.DB
}

// New creates a DataSource. No connection is made until Connect.
func New(cfg Config, logger *slog.Logger) *DataSource {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 5 * time.Second
	}
	return &DataSource{
		cfg:    cfg,
		logger: logger.With("component", "database", "driver", cfg.Driver),
	}
}

// Connect opens the pool, verifies it and runs pending migrations. On any
// failure the pool is closed and the error returned.
func (d *DataSource) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		return ErrAlreadyConnected
	}

	db, err := sql.Open(d.cfg.Driver, d.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if d.cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(d.cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(d.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(d.cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, d.cfg.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		d.closeQuietly(db)
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if d.cfg.MigrationsDir != "" {
		if err := d.migrate(ctx, db); err != nil {
			d.closeQuietly(db)
			return err
		}
	}

	d.db = db
	d.logger.Info("Database connection established",
		"max_open_conns", d.cfg.MaxOpenConns,
		"migrations", d.cfg.MigrationsDir != "")
	return nil
}

// migrate applies every pending migration in MigrationsDir.
func (d *DataSource) migrate(ctx context.Context, db *sql.DB) error {
	dialect, err := dialectFor(d.cfg.Driver)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, db, os.DirFS(d.cfg.MigrationsDir))
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, res := range results {
		d.logger.Info("migration applied",
			"version", res.Source.Version,
			"path", res.Source.Path,
			"duration_ms", res.Duration.Milliseconds())
	}
	return nil
}

func dialectFor(driver string) (goose.Dialect, error) {
	switch driver {
	case DriverPostgres:
		return goose.DialectPostgres, nil
	case DriverMySQL:
		return goose.DialectMySQL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

func (d *DataSource) closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		d.logger.Warn("failed to close database pool", "error", err)
	}
}

// DB returns the connected pool.
func (d *DataSource) DB() (*sql.DB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return nil, ErrNotConnected
	}
	return d.db, nil
}

// Check pings the pool.
func (d *DataSource) Check(ctx context.Context) error {
	db, err := d.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the pool. Closing an unconnected DataSource is a no-op.
func (d *DataSource) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.logger.Info("Database connection closed")
	return nil
}
