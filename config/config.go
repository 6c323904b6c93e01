// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default locations of the schema, extensions and database.
const (
	DefaultSchema     = "/usr/share/racksdb/schemas/racksdb.yml"
	DefaultExtensions = "/etc/racksdb/extensions.yml"
	DefaultDatabase   = "/var/lib/racksdb"
)

// Config is the root configuration structure.
type Config struct {
	Schema   SchemaConfig   `yaml:"schema"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Dump     DumpConfig     `yaml:"dump"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Reload   ReloadConfig   `yaml:"reload"`
}

// SchemaConfig locates the schema and its extensions.
type SchemaConfig struct {
	// Path of the schema file. An empty or missing file selects the
	// embedded schema.
	Path       string `yaml:"path"`
	Extensions string `yaml:"extensions"`
}

// DatabaseConfig locates the database, a file or a directory tree.
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// DumpConfig sets the default output of dumps.
type DumpConfig struct {
	Format string `yaml:"format" validate:"oneof=yaml json console"`
	Fold   bool   `yaml:"fold"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"required_if=Enabled true"`
}

// ReloadConfig configures reloading the database on file changes.
type ReloadConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce" validate:"min=0"`
}

// Default returns the configuration used without a file, environment
// overrides applied.
func Default() (*Config, error) {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads the file when it exists, the defaults otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default()
}

// applyEnvOverrides applies RACKSDB_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RACKSDB_SCHEMA"); v != "" {
		cfg.Schema.Path = v
	}
	if v := os.Getenv("RACKSDB_EXTENSIONS"); v != "" {
		cfg.Schema.Extensions = v
	}
	if v := os.Getenv("RACKSDB_DB"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("RACKSDB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RACKSDB_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("RACKSDB_DUMP_FORMAT"); v != "" {
		cfg.Dump.Format = v
	}

	if v := os.Getenv("RACKSDB_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("RACKSDB_RELOAD_ENABLED"); v != "" {
		cfg.Reload.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Schema.Path == "" {
		cfg.Schema.Path = DefaultSchema
	}
	if cfg.Schema.Extensions == "" {
		cfg.Schema.Extensions = DefaultExtensions
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultDatabase
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Dump.Format == "" {
		cfg.Dump.Format = "yaml"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "racksdb"
	}

	if cfg.Reload.Debounce == 0 {
		cfg.Reload.Debounce = 500 * time.Millisecond
	}
}

var structValidator = validator.New()

func validate(cfg *Config) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// fieldMessage renders a validation failure with the YAML path of the field:
// "logging.level must be one of debug info warn error, got \"trace\"".
func fieldMessage(fe validator.FieldError) string {
	path := yamlPath(fe.StructNamespace())
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", path)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", path, fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s must not be negative", path)
	}
	return fmt.Sprintf("%s is invalid (%s)", path, fe.Tag())
}

var yamlNames = map[string]string{
	"Schema":     "schema",
	"Path":       "path",
	"Extensions": "extensions",
	"Database":   "database",
	"Logging":    "logging",
	"Level":      "level",
	"Format":     "format",
	"Dump":       "dump",
	"Fold":       "fold",
	"Metrics":    "metrics",
	"Enabled":    "enabled",
	"Namespace":  "namespace",
	"Reload":     "reload",
	"Debounce":   "debounce",
}

func yamlPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		if name, ok := yamlNames[p]; ok {
			parts[i] = name
		}
	}
	return strings.Join(parts, ".")
}
