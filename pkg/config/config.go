package config

import (
	"fmt"
	"os"
	"time"
)

// Config represents the main configuration for a feedhub server
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Feed    FeedConfig    `yaml:"feed"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains the HTTP/WebSocket server configuration
type ServerConfig struct {
	ListenAddress   string        `yaml:"listen_address"`   // host:port for the gateway
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // HTTP read timeout
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // HTTP write timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // graceful shutdown budget
}

// BackendConfig contains the ledger store configuration
type BackendConfig struct {
	// Path is the SQLite database file; ":memory:" is accepted for testing.
	Path string `yaml:"path"`
}

// FeedConfig contains the publication engine configuration
type FeedConfig struct {
	// Executor selects the delivery executor: "sync" runs sends inline on
	// the publisher, "pool" uses a fixed worker pool.
	Executor string `yaml:"executor"`

	// Workers is the pool size when Executor is "pool".
	Workers int `yaml:"workers"`

	// SendQueueSize is the per-session outbound buffer; payloads beyond it
	// are dropped for that session.
	SendQueueSize int `yaml:"send_queue_size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Colors bool   `yaml:"colors"` // colored console output
	File   string `yaml:"file"`   // optional log file; stdout when empty
}

// DefaultConfig returns a configuration with sane defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   ":6006",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Backend: BackendConfig{
			Path: "feedhub.db",
		},
		Feed: FeedConfig{
			Executor:      "pool",
			Workers:       4,
			SendQueueSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Colors: true,
		},
	}
}

// LoadFromFile reads and strictly decodes a YAML config file on top of the
// defaults, then validates the result.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	if err := DecodeStrict(f, cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config %s: %v", path, errs[0])
	}
	return cfg, nil
}
