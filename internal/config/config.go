// Package config provides configuration management for gasmap.
//
// Config file locations (priority order):
//  1. $GASMAP_CONFIG
//  2. ./gasmap.yaml
//  3. $XDG_CONFIG_HOME/gasmap/config.yaml
//  4. ~/.config/gasmap/config.yaml
//  5. /etc/gasmap/config.yaml
//
// A missing file is not an error: the defaults are used.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gasmap/internal/domain"
)

// Defaults
const (
	DefaultAddr            = ":3000"
	DefaultDatabase        = "./gasmap.db"
	DefaultStorageDir      = "."
	DefaultDebounce        = 500 * time.Millisecond
	DefaultShutdownTimeout = 10 * time.Second
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultStorageDir
	}
	if c.Storage.Database == "" {
		c.Storage.Database = DefaultDatabase
	}
	if c.Editor.SourceCapacity == 0 {
		c.Editor.SourceCapacity = domain.DefaultSourceCapacity
	}
	if c.Editor.ConsumerDemand == 0 {
		c.Editor.ConsumerDemand = domain.DefaultConsumerDemand
	}
	if c.Editor.SourceErrorP == 0 {
		c.Editor.SourceErrorP = domain.DefaultErrorP
	}
	if c.Editor.PipeErrorP == 0 {
		c.Editor.PipeErrorP = domain.DefaultErrorP
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(DefaultDebounce)
	}
}

// Validate checks values that have no usable default
func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q must be file or sqlite", c.Storage.Backend))
	}
	if c.Editor.SourceCapacity < 0 {
		problems = append(problems, "editor.source_capacity must not be negative")
	}
	if c.Editor.ConsumerDemand < 0 {
		problems = append(problems, "editor.consumer_demand must not be negative")
	}
	if c.Editor.SourceErrorP < 0 || c.Editor.SourceErrorP > 1 {
		problems = append(problems, "editor.source_error_p must be within [0, 1]")
	}
	if c.Editor.PipeErrorP < 0 || c.Editor.PipeErrorP > 1 {
		problems = append(problems, "editor.pipe_error_p must be within [0, 1]")
	}
	if c.Editor.PipePrice < 0 {
		problems = append(problems, "editor.pipe_price must not be negative")
	}
	if c.Watch.Debounce < 0 {
		problems = append(problems, "watch.debounce must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Server: %s, Storage: %s", c.Server.Addr, c.Storage.Backend)
	if c.Storage.Backend == BackendSQLite {
		summary += fmt.Sprintf(" (%s)", c.Storage.Database)
	} else if c.Storage.Dir != DefaultStorageDir {
		summary += fmt.Sprintf(" (%s)", c.Storage.Dir)
	}
	if c.Watch.Path != "" {
		summary += fmt.Sprintf(", Watching: %s", c.Watch.Path)
	}
	summary += fmt.Sprintf(", Metrics: %v", c.Metrics.IsEnabled())
	return summary
}
