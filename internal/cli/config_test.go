package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aunovis/secure-sum/pkg/errors"
)

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got, want := defaultDataDir(), filepath.Join("/tmp/xdg-data", dataDirName); got != want {
		t.Errorf("defaultDataDir() = %q, want %q", got, want)
	}

	t.Setenv("XDG_DATA_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got, want := defaultDataDir(), filepath.Join(home, ".local", "share", dataDirName); got != want {
		t.Errorf("defaultDataDir() = %q, want %q", got, want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig(newViper(), "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Runner.Path != "scorecard" {
		t.Errorf("Runner.Path = %q", cfg.Runner.Path)
	}
	if cfg.Runner.Timeout != 10*time.Minute {
		t.Errorf("Runner.Timeout = %v", cfg.Runner.Timeout)
	}
	if cfg.Runner.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("Runner.Workers = %d", cfg.Runner.Workers)
	}
	if cfg.Lookup.Backend != lookupFile || cfg.Lookup.TTL != 24*time.Hour || cfg.Lookup.Rate != time.Second {
		t.Errorf("Lookup = %+v", cfg.Lookup)
	}
	if cfg.History.Backend != "none" {
		t.Errorf("History.Backend = %q", cfg.History.Backend)
	}
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SECURE_SUM_RUNNER_TIMEOUT", "30s")
	t.Setenv("SECURE_SUM_DATA_DIR", "/srv/secure-sum")
	t.Setenv("SECURE_SUM_HISTORY_BACKEND", "sqlite")

	cfg, err := loadConfig(newViper(), "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Runner.Timeout != 30*time.Second {
		t.Errorf("Runner.Timeout = %v, want 30s", cfg.Runner.Timeout)
	}
	if cfg.probeDir() != filepath.Join("/srv/secure-sum", "probes") {
		t.Errorf("probeDir = %q", cfg.probeDir())
	}
	if cfg.historyDSN() != filepath.Join("/srv/secure-sum", "history.db") {
		t.Errorf("historyDSN = %q", cfg.historyDSN())
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	data := "runner:\n  path: /opt/scorecard\n  workers: 3\nlookup:\n  backend: none\n"
	if err := os.WriteFile(filepath.Join(dir, "secure-sum.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(newViper(), "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Runner.Path != "/opt/scorecard" || cfg.Runner.Workers != 3 || cfg.Lookup.Backend != lookupNone {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(newViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("loadConfig error = %v, want invalid config", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DataDir: "/data",
			Runner:  RunnerConfig{Path: "scorecard", Timeout: time.Minute, Workers: 2},
			Lookup:  LookupConfig{Backend: lookupFile},
			History: HistoryConfig{Backend: "none"},
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no data dir", func(c *Config) { c.DataDir = "" }, true},
		{"no runner", func(c *Config) { c.Runner.Path = "" }, true},
		{"no workers", func(c *Config) { c.Runner.Workers = 0 }, true},
		{"negative timeout", func(c *Config) { c.Runner.Timeout = -time.Second }, true},
		{"redis without url", func(c *Config) { c.Lookup.Backend = lookupRedis }, true},
		{"redis with url", func(c *Config) { c.Lookup.Backend = lookupRedis; c.Lookup.RedisURL = "redis://localhost:6379/0" }, false},
		{"unknown lookup backend", func(c *Config) { c.Lookup.Backend = "memcached" }, true},
		{"unknown history backend", func(c *Config) { c.History.Backend = "oracle" }, true},
		{"mongo history", func(c *Config) { c.History.Backend = "mongo" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() error code = %s", errors.GetCode(err))
			}
		})
	}
}
