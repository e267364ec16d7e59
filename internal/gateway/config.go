package gateway

import (
	"net/url"
	"time"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/token"
)

// Config holds the gateway's listen address, backend targets, and the
// token verification settings. Populated from the environment by the
// config loader.
type Config struct {
	ListenAddr string `yaml:"listen_addr" env:"GATEWAY_LISTEN_ADDR" envDefault:":8000"`

	AuthServiceURL   string `yaml:"auth_service_url" env:"GATEWAY_AUTH_SERVICE_URL" envDefault:"http://localhost:8001"`
	MasterServiceURL string `yaml:"master_service_url" env:"GATEWAY_MASTER_SERVICE_URL" envDefault:"http://localhost:8002"`

	// ExcludedPaths pass through the trust middleware unverified: exact
	// matches for the credential endpoints, prefix matches for public
	// documentation.
	ExcludedExactPaths  []string `yaml:"excluded_exact_paths" env:"GATEWAY_EXCLUDED_EXACT_PATHS" envDefault:"/api/auth/login/,/api/auth/refresh/"`
	ExcludedPrefixPaths []string `yaml:"excluded_prefix_paths" env:"GATEWAY_EXCLUDED_PREFIX_PATHS" envDefault:"/api/master/api/docs/"`

	AllowedOrigins []string      `yaml:"allowed_origins" env:"GATEWAY_ALLOWED_ORIGINS" envDefault:"*"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"GATEWAY_REQUEST_TIMEOUT" envDefault:"30s"`

	Token token.Config `yaml:"token"`
}

// DefaultConfig returns a Config with local development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:          ":8000",
		AuthServiceURL:      "http://localhost:8001",
		MasterServiceURL:    "http://localhost:8002",
		ExcludedExactPaths:  []string{"/api/auth/login/", "/api/auth/refresh/"},
		ExcludedPrefixPaths: []string{"/api/master/api/docs/"},
		AllowedOrigins:      []string{"*"},
		RequestTimeout:      30 * time.Second,
		Token:               token.DefaultConfig(),
	}
}

// Validate checks the configuration. Implements the loader's Validator
// interface.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return erperr.New(erperr.CodeValidationRequired, "gateway: listen_addr must not be empty")
	}
	for name, raw := range map[string]string{
		"auth_service_url":   c.AuthServiceURL,
		"master_service_url": c.MasterServiceURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return erperr.Newf(erperr.CodeValidation, "gateway: %s %q is not an absolute URL", name, raw)
		}
	}
	if c.RequestTimeout <= 0 {
		return erperr.New(erperr.CodeValidation, "gateway: request_timeout must be positive")
	}
	return c.Token.Validate()
}
