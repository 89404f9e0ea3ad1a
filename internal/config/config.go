// Package config loads the server settings: identity, logging, the HTTP
// listen address and engine limits. Settings come from an optional YAML
// file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/ctp-mcp/internal/engine"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvLogLevel = "CTP_MCP_LOG_LEVEL"
	EnvHTTPAddr = "CTP_MCP_HTTP_ADDR"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DefaultName is the server name announced to MCP clients.
const DefaultName = "ctp-mcp"

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the complete server configuration.
type Config struct {
	Name      string       `yaml:"name"`
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
	HTTPAddr  string       `yaml:"http_addr"`
	Engine    EngineConfig `yaml:"engine"`
}

// EngineConfig holds engine settings that tool requests cannot change.
type EngineConfig struct {
	// MaxFileSize is the largest file, in bytes, read into a prompt.
	MaxFileSize int64 `yaml:"max_file_size"`
	// ExtraIgnoreDirs are directory names skipped in addition to the
	// built-in list when .gitignore handling is on.
	ExtraIgnoreDirs []string `yaml:"extra_ignore_dirs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Name:      DefaultName,
		LogLevel:  "info",
		LogFormat: LogFormatText,
		HTTPAddr:  "127.0.0.1:8080",
		Engine: EngineConfig{
			MaxFileSize: engine.DefaultMaxFileSize,
		},
	}
}

// DefaultPath returns <user config dir>/ctp-mcp/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, DefaultName, "config.yaml"), nil
}

// Load reads the configuration at path over the defaults and applies
// environment overrides. An empty path means DefaultPath; a missing
// default file is not an error, a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			// No config file: defaults apply.
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHTTPAddr)); v != "" {
		c.HTTPAddr = v
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !contains(logLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("log_level must be one of %s, got %q", strings.Join(logLevels, ", "), c.LogLevel))
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("log_format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat))
	}
	if c.Engine.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("engine.max_file_size must not be negative, got %d", c.Engine.MaxFileSize))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// EngineOptions returns the engine settings as base engine options.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		MaxFileSize:     c.Engine.MaxFileSize,
		ExtraIgnoreDirs: c.Engine.ExtraIgnoreDirs,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
