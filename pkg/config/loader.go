// Package config loads configuration for the ERP backend services from
// environment variables, an optional YAML file, and struct tag defaults.
// Values are resolved in priority order:
//
//	envDefault struct tags  (lowest priority)
//	YAML config file        (medium priority)
//	Environment variables   (highest priority)
//
// Defaults are baked into the config structs, a config file provides
// per-environment overrides, and env vars take final precedence.
//
// # Struct Tags
//
//   - `env:"VAR_NAME"` maps the field to an environment variable
//   - `envDefault:"value"` sets a default when the field is zero-valued
//   - `required:"true"` fails validation if the field remains zero
//
// Fields also need `yaml` tags for file-based loading.
//
// # Usage
//
//	type GatewayConfig struct {
//	    Addr          string   `env:"ADDR" envDefault:":8000" yaml:"addr"`
//	    AuthBase      string   `env:"AUTH_SERVICE_BASE" envDefault:"http://127.0.0.1:8001" yaml:"auth_service_base"`
//	    ExcludedPaths []string `env:"EXCLUDED_PATHS" yaml:"excluded_paths"`
//	}
//
//	cfg := config.MustLoad[GatewayConfig](
//	    config.New().WithEnvPrefix("GATEWAY").WithFile("gateway.yaml"),
//	)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// durationType caches the reflect.Type for time.Duration. Duration has
// Kind() == Int64, so it must be distinguished from plain int64 fields.
var durationType = reflect.TypeOf(time.Duration(0))

// Loader resolves configuration with the layered strategy described in the
// package documentation. Create one with [New], optionally configure it with
// [Loader.WithEnvPrefix] and [Loader.WithFile], then call [Loader.Load].
//
// A Loader is not safe for concurrent use.
type Loader struct {
	envPrefix string
	filePath  string
}

// New creates a Loader with default settings: environment variables only,
// no file, no prefix.
func New() *Loader {
	return &Loader{}
}

// WithEnvPrefix sets a prefix that is prepended (with an underscore) to all
// environment variable names derived from "env" struct tags. The prefix is
// uppercased; an empty prefix disables prefixing. Returns the Loader for
// chaining.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = strings.ToUpper(prefix)
	return l
}

// WithFile sets the path to an optional YAML configuration file (.yaml or
// .yml). A missing file is not an error; any other extension is. The path
// must not contain directory traversal sequences. Returns the Loader for
// chaining.
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// Load populates the given struct pointer, resolving values in priority
// order: envDefault tags, then the YAML file (if configured), then
// environment variables. After loading, fields tagged `required:"true"`
// must be non-zero, and if the struct implements [Validator] its Validate
// method is invoked.
//
// Returns a [*erperr.Error] with code [erperr.CodeInternalConfiguration]
// for loading failures, or a validation code for validation failures.
func (l *Loader) Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return erperr.New(erperr.CodeInternalConfiguration,
			"config: Load requires a non-nil pointer to a struct")
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return erperr.New(erperr.CodeInternalConfiguration,
			"config: Load requires a pointer to a struct")
	}

	if err := applyDefaults(rv); err != nil {
		return err
	}

	if l.filePath != "" {
		if err := l.loadFile(cfg); err != nil {
			return err
		}
	}

	if err := applyEnv(rv, l.envPrefix); err != nil {
		return err
	}

	return validate(cfg, rv)
}

// MustLoad creates a zero value of T, loads configuration into it, and
// returns it. It panics if loading fails. Use in service startup where a
// broken configuration must prevent the process from starting.
func MustLoad[T any](loader *Loader) T {
	var cfg T
	if err := loader.Load(&cfg); err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

// loadFile reads the YAML file and unmarshals it into cfg. A missing file
// is silently ignored.
func (l *Loader) loadFile(cfg any) error {
	if strings.Contains(l.filePath, "..") {
		return erperr.New(erperr.CodeInternalConfiguration,
			"config: file path must not contain directory traversal (..) sequences")
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return erperr.Wrapf(err, erperr.CodeInternalConfiguration,
			"config: failed to read file %q", l.filePath)
	}

	switch ext := strings.ToLower(filepath.Ext(l.filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return erperr.Wrapf(err, erperr.CodeInternalConfiguration,
				"config: failed to parse YAML file %q", l.filePath)
		}
	default:
		return erperr.Newf(erperr.CodeInternalConfiguration,
			"config: unsupported file extension %q (use .yaml or .yml)", ext)
	}

	return nil
}

// applyDefaults walks the struct and sets zero-valued fields to their
// envDefault tag values. Nested structs are traversed recursively.
func applyDefaults(rv reflect.Value) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && sf.Type != durationType {
			if err := applyDefaults(field); err != nil {
				return err
			}
			continue
		}

		tag := sf.Tag.Get("envDefault")
		if tag == "" || !field.IsZero() {
			continue
		}

		if err := setField(field, tag); err != nil {
			return erperr.Wrapf(err, erperr.CodeInternalConfiguration,
				"config: failed to apply default for field %q", sf.Name)
		}
	}

	return nil
}

// applyEnv walks the struct and sets fields from the environment variables
// named by their "env" tags. For nested structs, the parent's env tag is
// prepended (joined with "_") to the child's env tag, after the global
// prefix from [Loader.WithEnvPrefix].
func applyEnv(rv reflect.Value, prefix string) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)

		if !field.CanSet() {
			continue
		}

		envTag := sf.Tag.Get("env")

		if field.Kind() == reflect.Struct && sf.Type != durationType {
			nestedPrefix := prefix
			if envTag != "" {
				if nestedPrefix != "" {
					nestedPrefix = nestedPrefix + "_" + envTag
				} else {
					nestedPrefix = envTag
				}
			}
			if err := applyEnv(field, nestedPrefix); err != nil {
				return err
			}
			continue
		}

		if envTag == "" {
			continue
		}

		envKey := envTag
		if prefix != "" {
			envKey = prefix + "_" + envTag
		}

		val, ok := os.LookupEnv(envKey)
		if !ok {
			continue
		}

		if err := setField(field, val); err != nil {
			return erperr.Wrapf(err, erperr.CodeInternalConfiguration,
				"config: failed to set field %q from env var %q", sf.Name, envKey)
		}
	}

	return nil
}

// setField parses a string value into the field. Supported types: string
// (including named string types), bool, signed integers, time.Duration,
// and []string (comma-separated, whitespace-trimmed).
func setField(field reflect.Value, value string) error {
	// Duration before the int64 case: its underlying kind is int64 but it
	// needs time.ParseDuration. A unit-less value is plain seconds, which
	// is how the deployment variables express lifetimes.
	if field.Type() == durationType {
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(int64(time.Duration(secs) * time.Second))
			return nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("cannot parse duration %q: %w", value, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse bool %q: %w", value, err)
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse integer %q: %w", value, err)
		}
		field.SetInt(n)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			slice.Index(i).SetString(strings.TrimSpace(p))
		}
		field.Set(slice)

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}

	return nil
}
