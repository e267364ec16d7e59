package postgres

import (
	"fmt"
	"net/url"
	"time"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// DefaultHealthTimeout is applied to health checks when the caller's context
// carries no deadline.
const DefaultHealthTimeout = 5 * time.Second

// Config holds PostgreSQL connection settings. Fields are populated from the
// environment by the config loader; the struct tags define the variable
// names and defaults.
type Config struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	Database string `yaml:"database" env:"POSTGRES_DB" envDefault:"erp"`
	SSLMode  string `yaml:"ssl_mode" env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	MaxConns          int32         `yaml:"max_conns" env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns          int32         `yaml:"min_conns" env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime   time.Duration `yaml:"max_conn_lifetime" env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time" env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period" env:"POSTGRES_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// DefaultConfig returns a Config with local development defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:              "localhost",
		Port:              5432,
		User:              "postgres",
		Database:          "erp",
		SSLMode:           "disable",
		MaxConns:          10,
		MinConns:          2,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
}

// Validate checks the configuration for values that would produce a broken
// pool. Implements the loader's Validator interface.
func (c *Config) Validate() error {
	if c.Host == "" {
		return erperr.New(erperr.CodeValidationRequired, "postgres: host must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return erperr.Newf(erperr.CodeValidation, "postgres: port %d out of range", c.Port)
	}
	if c.User == "" {
		return erperr.New(erperr.CodeValidationRequired, "postgres: user must not be empty")
	}
	if c.Database == "" {
		return erperr.New(erperr.CodeValidationRequired, "postgres: database must not be empty")
	}
	switch c.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return erperr.Newf(erperr.CodeValidation, "postgres: unknown ssl mode %q", c.SSLMode)
	}
	if c.MaxConns <= 0 {
		return erperr.New(erperr.CodeValidation, "postgres: max_conns must be positive")
	}
	if c.MinConns < 0 || c.MinConns > c.MaxConns {
		return erperr.New(erperr.CodeValidation, "postgres: min_conns must be between 0 and max_conns")
	}
	return nil
}

// ConnectionString builds a pgx connection string from the configuration.
// The password is URL-escaped so special characters survive parsing.
func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host, c.Port, c.Database, c.SSLMode,
	)
}
