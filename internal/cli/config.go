package cli

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/history"
)

// Config is the merged result of defaults, config file and SECURE_SUM_*
// environment variables.
type Config struct {
	DataDir     string        `mapstructure:"data_dir"`
	MetricsFile string        `mapstructure:"metrics_file"`
	Runner      RunnerConfig  `mapstructure:"runner"`
	Lookup      LookupConfig  `mapstructure:"lookup"`
	History     HistoryConfig `mapstructure:"history"`
}

// RunnerConfig configures the scorecard runner.
type RunnerConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
	Workers int           `mapstructure:"workers"`
}

// LookupConfig configures the cache of package registry responses.
type LookupConfig struct {
	Backend  string        `mapstructure:"backend"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
	Rate     time.Duration `mapstructure:"rate"`
}

// HistoryConfig selects where evaluation runs are recorded.
type HistoryConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

// Lookup cache backends.
const (
	lookupFile  = "file"
	lookupRedis = "redis"
	lookupNone  = "none"
)

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SECURE_SUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("metrics_file", "")

	// -- Runner --
	v.SetDefault("runner.path", "scorecard")
	v.SetDefault("runner.timeout", "10m")
	v.SetDefault("runner.workers", runtime.GOMAXPROCS(0))

	// -- Lookup cache --
	v.SetDefault("lookup.backend", lookupFile)
	v.SetDefault("lookup.redis_url", "")
	v.SetDefault("lookup.ttl", "24h")
	v.SetDefault("lookup.rate", "1s")

	// -- History --
	v.SetDefault("history.backend", string(history.BackendNone))
	v.SetDefault("history.dsn", "")
}

// loadConfig reads the optional config file and decodes the result. An
// explicit file that does not exist is an error, a missing default file is
// not.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(appName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return errors.New(errors.ErrCodeInvalidConfig, "data_dir must not be empty")
	case c.Runner.Path == "":
		return errors.New(errors.ErrCodeInvalidConfig, "runner.path must not be empty")
	case c.Runner.Timeout < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "runner.timeout must not be negative")
	case c.Runner.Workers <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "runner.workers must be a positive integer")
	}

	switch c.Lookup.Backend {
	case lookupFile, lookupNone:
	case lookupRedis:
		if c.Lookup.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "lookup.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported lookup.backend %q (want file, redis or none)", c.Lookup.Backend)
	}

	if !slices.Contains(history.Backends, history.Backend(c.History.Backend)) {
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported history.backend %q", c.History.Backend)
	}
	return nil
}

// probeDir holds one probe record per target.
func (c *Config) probeDir() string {
	return filepath.Join(c.DataDir, "probes")
}

// lookupDir holds the file backend of the registry lookup cache.
func (c *Config) lookupDir() string {
	return filepath.Join(c.DataDir, "lookup")
}

// historyDSN defaults the sqlite database into the data directory.
func (c *Config) historyDSN() string {
	if c.History.DSN == "" && c.History.Backend == string(history.BackendSQLite) {
		return filepath.Join(c.DataDir, "history.db")
	}
	return c.History.DSN
}

// defaultDataDir follows the XDG base directory layout
// (~/.local/share/aunovis_secure_sum/).
func defaultDataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, dataDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), dataDirName)
	}
	return filepath.Join(home, ".local", "share", dataDirName)
}
