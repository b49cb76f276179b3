package config

import "time"

// TestingEnvironment is the server.environment value under which the process
// assembles the application but never binds a network listener.
const TestingEnvironment = "testing"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Docs     DocsConfig     `mapstructure:"docs"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"required"`
	// RedactInternalErrors replaces the client-visible message of unclassified
	// failures with a redacted form of the error text.
	RedactInternalErrors bool          `mapstructure:"redact_internal_errors"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=pgx mysql"`
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout" validate:"gt=0"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// ScannerConfig configures the signature scanner.
type ScannerConfig struct {
	RulesPath string `mapstructure:"rules_path"`
	Watch     bool   `mapstructure:"watch"`
}

// HTTPConfig holds request pipeline settings.
type HTTPConfig struct {
	MaxBodyBytes       int64    `mapstructure:"max_body_bytes" validate:"gt=0"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	RateLimitRPS       float64  `mapstructure:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst     int      `mapstructure:"rate_limit_burst" validate:"gte=0"`
}

// DocsConfig points at the API document served under /docs.
// An empty SpecPath serves the document bundled with the binary.
type DocsConfig struct {
	SpecPath string `mapstructure:"spec_path"`
	Title    string `mapstructure:"title"`
}

// IsTesting reports whether the server runs under the test execution mode.
func (c *Config) IsTesting() bool {
	return c.Server.Environment == TestingEnvironment
}
