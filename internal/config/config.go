// Package config loads the CLI configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default values for configuration fields.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultColor     = ColorAuto
)

// Config is the CLI configuration.
type Config struct {
	Log LogConfig `yaml:"log"`

	// AllowMissingImportLocations skips imports whose location cannot be found.
	AllowMissingImportLocations bool `yaml:"allow_missing_import_locations"`

	// Jobs bounds how many roots the check command compiles at once.
	Jobs int `yaml:"jobs"`

	// Color is one of auto, always or never.
	Color string `yaml:"color"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}
	if cfg.Color == "" {
		cfg.Color = DefaultColor
	}
}

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted YAML path, e.g. "log.level".
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError holds every field error found by Validate.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid configuration: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid configuration: %d errors", len(e.Errors))
	for _, fe := range e.Errors {
		sb.WriteString("; " + fe.Error())
	}
	return sb.String()
}

// Validate checks cfg after defaults were applied.
func Validate(cfg *Config) error {
	var errs []FieldError
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", cfg.Log.Level)})
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, FieldError{Field: "log.format", Message: fmt.Sprintf("unknown format %q", cfg.Log.Format)})
	}
	if cfg.Jobs < 1 {
		errs = append(errs, FieldError{Field: "jobs", Message: fmt.Sprintf("must be positive, got %d", cfg.Jobs)})
	}
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, FieldError{Field: "color", Message: fmt.Sprintf("unknown mode %q", cfg.Color)})
	}
	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// Parse decodes YAML, applies defaults and validates the result. Unknown
// fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty document decodes to io.EOF and means "all defaults"
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration file %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("configuration file %q: %w", path, err)
	}
	return cfg, nil
}
