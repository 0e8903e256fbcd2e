package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version int           `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Editor  EditorConfig  `yaml:"editor"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout,omitempty"`
	// AllowedOrigins lists browser origins besides the server's own that
	// may call the API
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// Backend selects where load and export read and write documents
type Backend string

const (
	// BackendFile stores .mj5 (or .yaml) files under Storage.Dir
	BackendFile Backend = "file"
	// BackendSQLite stores named networks in the Storage.Database library
	BackendSQLite Backend = "sqlite"
)

// StorageConfig holds document storage settings
type StorageConfig struct {
	Backend  Backend `yaml:"backend"`
	Dir      string  `yaml:"dir,omitempty"` // every file location must resolve under it
	Database string  `yaml:"database"`
}

// EditorConfig holds the attributes given to new nodes and pipes. Zero
// values are replaced by the stock defaults, except PipePrice.
type EditorConfig struct {
	SourceCapacity float64 `yaml:"source_capacity"`
	ConsumerDemand float64 `yaml:"consumer_demand"`
	SourceErrorP   float64 `yaml:"source_error_p"`
	PipeErrorP     float64 `yaml:"pipe_error_p"`
	PipePrice      float64 `yaml:"pipe_price"`
}

// WatchConfig holds live-reload settings. An empty path disables watching.
type WatchConfig struct {
	Path     string   `yaml:"path,omitempty"`
	Debounce Duration `yaml:"debounce"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"` // nil = enabled
}

// IsEnabled reports whether /metrics is served
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
