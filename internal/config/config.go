// Package config loads and validates the registry configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the SR_ prefix (e.g., SR_DATABASE_PATH
// overrides database.path in the YAML). The same binary runs with a
// config.yaml in local development and pure environment variables in
// containerized deployments.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/student-registry/student-registry/internal/audit"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the listen address in host:port form.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	// Path is the SQLite database file path. The file is created on first
	// startup if absent.
	Path string `mapstructure:"path"`
	// BusyTimeoutMs is how long a statement waits for a file lock held by
	// another process before failing with SQLITE_BUSY.
	BusyTimeoutMs int `mapstructure:"busy_timeout_ms"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// SessionTTL is the lifetime of issued JWTs.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// BootstrapAdmin, when non-empty, names an admin account created on
	// startup if the users table is empty. The generated password is printed
	// to the log once.
	BootstrapAdmin string `mapstructure:"bootstrap_admin"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// TelemetryConfig holds metrics configuration
type TelemetryConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
	// MetricsPort is the side-channel port serving GET /metrics, kept off the
	// main API listener so the scrape path bypasses auth and rate limiting.
	MetricsPort int `mapstructure:"metrics_port"`
}

// AuditConfig holds activity trail configuration
type AuditConfig struct {
	// QueryDefaultLimit caps /activity responses when the caller does not
	// pass an explicit limit.
	QueryDefaultLimit int `mapstructure:"query_default_limit"`
	// Shippers configures optional external mirrors of the trail.
	Shippers []audit.ShipperConfig `mapstructure:"shippers"`
}

// Load reads configuration from the given file path (or the default search
// locations when empty), layered with SR_-prefixed environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/student-registry")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("SR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not surface env-only keys through Unmarshal, so bind
	// every known key explicitly.
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration invariants that would otherwise only fail at
// first use.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Audit.QueryDefaultLimit < 0 {
		return fmt.Errorf("audit.query_default_limit must not be negative")
	}
	for i, s := range c.Audit.Shippers {
		if !s.Enabled {
			continue
		}
		switch s.Type {
		case "file":
			if s.File == nil || s.File.Path == "" {
				return fmt.Errorf("audit.shippers[%d]: file shipper requires a path", i)
			}
		case "webhook":
			if s.Webhook == nil || s.Webhook.URL == "" {
				return fmt.Errorf("audit.shippers[%d]: webhook shipper requires a url", i)
			}
		default:
			return fmt.Errorf("audit.shippers[%d]: unknown shipper type %q", i, s.Type)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("database.path", "./student_registry.db")
	v.SetDefault("database.busy_timeout_ms", 5000)

	v.SetDefault("auth.session_ttl", "24h")
	v.SetDefault("auth.bootstrap_admin", "admin")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("telemetry.metrics_enabled", true)
	v.SetDefault("telemetry.metrics_port", 9090)

	v.SetDefault("audit.query_default_limit", 50)
}

// bindEnvVars binds every known configuration key so environment-only values
// survive Unmarshal. viper.BindEnv only errors when called with zero keys;
// every key here is non-empty, so the error is impossible in practice but
// still checked.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"database.path",
		"database.busy_timeout_ms",
		"auth.session_ttl",
		"auth.bootstrap_admin",
		"logging.level",
		"logging.format",
		"telemetry.metrics_enabled",
		"telemetry.metrics_port",
		"audit.query_default_limit",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}
