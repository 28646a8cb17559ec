package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if errs := DefaultConfig().Validate(); len(errs) != 0 {
		t.Errorf("default config invalid: %v", errs)
	}
}

func TestLoadFromFileAppliesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":7007"
feed:
  executor: sync
logging:
  level: debug
  colors: false
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.ListenAddress != ":7007" {
		t.Errorf("listen_address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("read_timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Feed.Executor != "sync" {
		t.Errorf("executor = %q", cfg.Feed.Executor)
	}
	// untouched fields keep their defaults
	if cfg.Backend.Path != "feedhub.db" {
		t.Errorf("backend.path = %q", cfg.Backend.Path)
	}
	if cfg.Feed.SendQueueSize != 256 {
		t.Errorf("send_queue_size = %d", cfg.Feed.SendQueueSize)
	}
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":7007"
  bogus_knob: true
`)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
		{"not host:port", func(c *Config) { c.Server.ListenAddress = "nonsense" }, "server.listen_address"},
		{"empty backend path", func(c *Config) { c.Backend.Path = "" }, "backend.path"},
		{"bad executor", func(c *Config) { c.Feed.Executor = "fibers" }, "feed.executor"},
		{"pool without workers", func(c *Config) { c.Feed.Workers = 0 }, "feed.workers"},
		{"zero queue", func(c *Config) { c.Feed.SendQueueSize = 0 }, "feed.send_queue_size"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(errs[0].Error(), tc.path) {
				t.Errorf("error %q does not mention %s", errs[0], tc.path)
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
