package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

type testConfig struct {
	Addr     string        `env:"ADDR" envDefault:":8000" yaml:"addr"`
	Debug    bool          `env:"DEBUG" envDefault:"false" yaml:"debug"`
	Lifetime time.Duration `env:"LIFETIME" envDefault:"1h" yaml:"lifetime"`
	Retries  int           `env:"RETRIES" envDefault:"3" yaml:"retries"`
	Origins  []string      `env:"ORIGINS" yaml:"origins"`
}

type nestedConfig struct {
	Name  string     `env:"NAME" envDefault:"gateway" yaml:"name"`
	Inner testConfig `env:"INNER" yaml:"inner"`
}

type requiredConfig struct {
	KeyPath string `env:"KEY_PATH" required:"true" yaml:"key_path"`
}

type validatedConfig struct {
	Port int `env:"PORT" envDefault:"8000" yaml:"port"`
}

func (c *validatedConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return erperr.Newf(erperr.CodeValidation,
			"config: port %d is out of range [1, 65535]", c.Port)
	}
	return nil
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, New().Load(&cfg))

	assert.Equal(t, ":8000", cfg.Addr)
	assert.False(t, cfg.Debug)
	assert.Equal(t, time.Hour, cfg.Lifetime)
	assert.Equal(t, 3, cfg.Retries)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("LIFETIME", "30s")
	t.Setenv("ORIGINS", "http://localhost:5173, http://127.0.0.1:5173")

	var cfg testConfig
	require.NoError(t, New().Load(&cfg))

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.Lifetime)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.Origins)
}

func TestLoad_EnvPrefix(t *testing.T) {
	t.Setenv("GATEWAY_ADDR", ":8080")
	t.Setenv("ADDR", ":9999") // Must be ignored when a prefix is set.

	var cfg testConfig
	require.NoError(t, New().WithEnvPrefix("gateway").Load(&cfg))

	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_NestedEnvPrefix(t *testing.T) {
	t.Setenv("INNER_ADDR", ":7000")

	var cfg nestedConfig
	require.NoError(t, New().Load(&cfg))

	assert.Equal(t, "gateway", cfg.Name)
	assert.Equal(t, ":7000", cfg.Inner.Addr)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":4000\"\nretries: 7\n"), 0o600))

	var cfg testConfig
	require.NoError(t, New().WithFile(path).Load(&cfg))

	assert.Equal(t, ":4000", cfg.Addr)
	assert.Equal(t, 7, cfg.Retries)
	// Defaults still apply to fields the file omits.
	assert.Equal(t, time.Hour, cfg.Lifetime)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":4000\"\n"), 0o600))

	t.Setenv("ADDR", ":5000")

	var cfg testConfig
	require.NoError(t, New().WithFile(path).Load(&cfg))

	assert.Equal(t, ":5000", cfg.Addr)
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	var cfg testConfig
	require.NoError(t, New().WithFile(filepath.Join(t.TempDir(), "absent.yaml")).Load(&cfg))
	assert.Equal(t, ":8000", cfg.Addr)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("addr = \":4000\"\n"), 0o600))

	var cfg testConfig
	err := New().WithFile(path).Load(&cfg)
	require.Error(t, err)
	assert.True(t, erperr.HasCode(err, erperr.CodeInternalConfiguration))
}

func TestLoad_DirectoryTraversalRejected(t *testing.T) {
	var cfg testConfig
	err := New().WithFile("../secrets/config.yaml").Load(&cfg)
	require.Error(t, err)
	assert.True(t, erperr.HasCode(err, erperr.CodeInternalConfiguration))
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := New().Load(&cfg)
	require.Error(t, err)
	assert.True(t, erperr.HasCode(err, erperr.CodeValidationRequired))
}

func TestLoad_RequiredFieldPresent(t *testing.T) {
	t.Setenv("KEY_PATH", "/etc/erp/keys/public.pem")

	var cfg requiredConfig
	require.NoError(t, New().Load(&cfg))
	assert.Equal(t, "/etc/erp/keys/public.pem", cfg.KeyPath)
}

func TestLoad_CustomValidatorFailure(t *testing.T) {
	t.Setenv("PORT", "99999")

	var cfg validatedConfig
	err := New().Load(&cfg)
	require.Error(t, err)
	assert.True(t, erperr.HasCode(err, erperr.CodeValidation))
}

func TestLoad_NonPointerRejected(t *testing.T) {
	var cfg testConfig
	err := New().Load(cfg)
	require.Error(t, err)
	assert.True(t, erperr.HasCode(err, erperr.CodeInternalConfiguration))
}

// Deployment variables express lifetimes as plain seconds; duration syntax
// keeps working for values that carry a unit.
func TestLoad_DurationFromBareSeconds(t *testing.T) {
	t.Setenv("LIFETIME", "7200")

	var cfg testConfig
	require.NoError(t, New().Load(&cfg))

	assert.Equal(t, 2*time.Hour, cfg.Lifetime)
}

func TestLoad_BadDurationValue(t *testing.T) {
	t.Setenv("LIFETIME", "not-a-duration")

	var cfg testConfig
	err := New().Load(&cfg)
	require.Error(t, err)
	assert.True(t, erperr.HasCode(err, erperr.CodeInternalConfiguration))
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	t.Setenv("RETRIES", "not-a-number")
	assert.Panics(t, func() {
		MustLoad[testConfig](New())
	})
}
