package authsvc

import (
	"time"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/token"
)

// Config holds the auth service settings. Populated from the environment
// by the config loader.
type Config struct {
	ListenAddr     string        `yaml:"listen_addr" env:"AUTH_LISTEN_ADDR" envDefault:":8001"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"AUTH_ALLOWED_ORIGINS" envDefault:"*"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"AUTH_REQUEST_TIMEOUT" envDefault:"30s"`

	Token    token.Config    `yaml:"token"`
	Postgres postgres.Config `yaml:"postgres"`
}

// DefaultConfig returns a Config with local development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":8001",
		AllowedOrigins: []string{"*"},
		RequestTimeout: 30 * time.Second,
		Token:          token.DefaultConfig(),
		Postgres:       *postgres.DefaultConfig(),
	}
}

// Validate checks the configuration. Implements the loader's Validator
// interface.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return erperr.New(erperr.CodeValidationRequired, "authsvc: listen_addr must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return erperr.New(erperr.CodeValidation, "authsvc: request_timeout must be positive")
	}
	if err := c.Token.Validate(); err != nil {
		return err
	}
	// Token issuance requires the private key; verification-only services
	// may omit it, this one may not.
	if c.Token.PrivateKeyPath == "" {
		return erperr.New(erperr.CodeInternalConfiguration,
			"authsvc: JWT_PRIVATE_KEY_PATH is required for token issuance")
	}
	return c.Postgres.Validate()
}
