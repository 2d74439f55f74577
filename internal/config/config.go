// Package config loads dupecheck settings from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Browse  BrowseConfig  `yaml:"browse"`
	Export  ExportConfig  `yaml:"export"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format"`

	// File receives log output. Empty discards logs in interactive mode and
	// uses stderr in headless mode.
	File string `yaml:"file"`
}

// BrowseConfig holds file picker settings.
type BrowseConfig struct {
	// StartDir is where the file picker opens (default: working directory)
	StartDir string `yaml:"start_dir"`
}

// ExportConfig holds result export settings.
type ExportConfig struct {
	// Format is the export file type: xlsx or csv (default: xlsx)
	Format string `yaml:"format"`
}

// Environment variables read by Load.
const (
	EnvConfigFile   = "DUPCHECK_CONFIG"
	EnvLogLevel     = "DUPCHECK_LOG_LEVEL"
	EnvLogFormat    = "DUPCHECK_LOG_FORMAT"
	EnvLogFile      = "DUPCHECK_LOG_FILE"
	EnvStartDir     = "DUPCHECK_START_DIR"
	EnvExportFormat = "DUPCHECK_EXPORT_FORMAT"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Export:  ExportConfig{Format: "xlsx"},
	}
}

// Load builds the configuration and validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	setFromEnv(&c.Logging.Level, EnvLogLevel)
	setFromEnv(&c.Logging.Format, EnvLogFormat)
	setFromEnv(&c.Logging.File, EnvLogFile)
	setFromEnv(&c.Browse.StartDir, EnvStartDir)
	setFromEnv(&c.Export.Format, EnvExportFormat)
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

// Validate checks that all settings hold known values.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging format %q is not one of text, json", c.Logging.Format))
	}

	switch strings.ToLower(c.Export.Format) {
	case "xlsx", "csv":
	default:
		errs = append(errs, fmt.Errorf("export format %q is not one of xlsx, csv", c.Export.Format))
	}

	if c.Browse.StartDir != "" {
		info, err := os.Stat(c.Browse.StartDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("start dir: %w", err))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("start dir %q is not a directory", c.Browse.StartDir))
		}
	}

	return errors.Join(errs...)
}
