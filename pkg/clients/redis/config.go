package redis

import (
	"time"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// Config holds Redis connection settings. Fields are populated from the
// environment by the config loader.
type Config struct {
	Host     string `yaml:"host" env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `yaml:"port" env:"REDIS_PORT" envDefault:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" envDefault:"0"`

	PoolSize     int           `yaml:"pool_size" env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// DefaultConfig returns a Config with local development defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Validate checks the configuration. Implements the loader's Validator
// interface.
func (c *Config) Validate() error {
	if c.Host == "" {
		return erperr.New(erperr.CodeValidationRequired, "redis: host must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return erperr.Newf(erperr.CodeValidation, "redis: port %d out of range", c.Port)
	}
	if c.DB < 0 || c.DB > 15 {
		return erperr.Newf(erperr.CodeValidation, "redis: db index %d out of range", c.DB)
	}
	if c.PoolSize <= 0 {
		return erperr.New(erperr.CodeValidation, "redis: pool_size must be positive")
	}
	return nil
}
