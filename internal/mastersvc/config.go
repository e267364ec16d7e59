package mastersvc

import (
	"time"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/redis"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/token"
)

// Config holds the master service settings. Populated from the environment
// by the config loader.
type Config struct {
	ListenAddr     string        `yaml:"listen_addr" env:"MASTER_LISTEN_ADDR" envDefault:":8002"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"MASTER_ALLOWED_ORIGINS" envDefault:"*"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"MASTER_REQUEST_TIMEOUT" envDefault:"30s"`
	UserCacheTTL   time.Duration `yaml:"user_cache_ttl" env:"MASTER_USER_CACHE_TTL" envDefault:"5m"`

	Token    token.Config    `yaml:"token"`
	Postgres postgres.Config `yaml:"postgres"`
	Redis    redis.Config    `yaml:"redis"`
}

// DefaultConfig returns a Config with local development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":8002",
		AllowedOrigins: []string{"*"},
		RequestTimeout: 30 * time.Second,
		UserCacheTTL:   DefaultUserCacheTTL,
		Token:          token.DefaultConfig(),
		Postgres:       *postgres.DefaultConfig(),
		Redis:          *redis.DefaultConfig(),
	}
}

// Validate checks the configuration. The master service only verifies
// tokens, so the private key path may stay empty.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return erperr.New(erperr.CodeValidationRequired, "mastersvc: listen_addr must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return erperr.New(erperr.CodeValidation, "mastersvc: request_timeout must be positive")
	}
	if c.UserCacheTTL <= 0 {
		return erperr.New(erperr.CodeValidation, "mastersvc: user_cache_ttl must be positive")
	}
	if err := c.Token.Validate(); err != nil {
		return err
	}
	if err := c.Postgres.Validate(); err != nil {
		return err
	}
	return c.Redis.Validate()
}
