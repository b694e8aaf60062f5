// Package config provides connection configuration for the livy client.
// Values come from built-in defaults, an optional YAML file and LIVYC_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AltairaLabs/livy-mcp/internal/livy/poll"
)

// KindPySpark is the only interpreter kind the client drives
const KindPySpark = "pyspark"

// DefaultIvyDir is the ivy cache directory passed to the gateway with the jar list
const DefaultIvyDir = "/opt/bitnami/spark/ivy/"

// Config is the root client configuration.
type Config struct {
	// URL is the gateway address, with or without a scheme
	URL string `mapstructure:"url"`
	// Port is appended to URL when non-empty
	Port string `mapstructure:"port"`
	// Jars are the dependency identifiers handed to the remote environment
	Jars []string `mapstructure:"jars"`
	// IvyDir is the remote ivy cache directory
	IvyDir string `mapstructure:"ivy_dir"`
	// Kind is the interpreter kind; only "pyspark" is accepted
	Kind string `mapstructure:"kind"`

	Poll PollConfig `mapstructure:"poll"`
	Read ReadConfig `mapstructure:"read"`
	Log  LogConfig  `mapstructure:"log"`
}

// PollConfig holds the backoff used while waiting on remote state
type PollConfig struct {
	Seed        []time.Duration `mapstructure:"seed"`
	Fallback    time.Duration   `mapstructure:"fallback"`
	MaxDuration time.Duration   `mapstructure:"max_duration"`
}

// ReadConfig controls value reads
type ReadConfig struct {
	// ReleaseBindings deletes the temporary remote name after every read
	ReleaseBindings bool `mapstructure:"release_bindings"`
	// AllowGenericJSON returns raw JSON data for type tags with no registered reconstruction
	AllowGenericJSON bool `mapstructure:"allow_generic_json"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: text or json
	Format string `mapstructure:"format"`
	// File, when set, receives log output through a rotating writer
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ConfigurationError reports a missing or invalid connection parameter.
// It is always raised before any network call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Default returns a Config populated with defaults. URL is left empty on purpose.
func Default() Config {
	return Config{
		IvyDir: DefaultIvyDir,
		Kind:   KindPySpark,
		Poll: PollConfig{
			Seed:        append([]time.Duration(nil), DefaultPollSeed...),
			Fallback:    DefaultPollFallback,
			MaxDuration: DefaultPollMaxDuration,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// FromArgs builds a Config from the three connection parameters. URL and port
// are both required.
func FromArgs(url, port string, jars []string) (Config, error) {
	cfg := Default()
	cfg.URL = url
	cfg.Port = port
	cfg.Jars = jars
	if port == "" {
		return cfg, &ConfigurationError{Field: "port", Reason: "required"}
	}
	return cfg, cfg.Validate()
}

// Load reads configuration from the provided path (if non-empty), otherwise
// it searches ./livyc.yaml and ~/.livyc/livyc.yaml. Environment variables use
// the prefix LIVYC and `.` is replaced with `_`, e.g. LIVYC_POLL_MAX_DURATION=5m.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LIVYC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults so env-only configs work
	v.SetDefault("url", cfg.URL)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("jars", cfg.Jars)
	v.SetDefault("ivy_dir", cfg.IvyDir)
	v.SetDefault("kind", cfg.Kind)
	v.SetDefault("poll.seed", cfg.Poll.Seed)
	v.SetDefault("poll.fallback", cfg.Poll.Fallback)
	v.SetDefault("poll.max_duration", cfg.Poll.MaxDuration)
	v.SetDefault("read.release_bindings", cfg.Read.ReleaseBindings)
	v.SetDefault("read.allow_generic_json", cfg.Read.AllowGenericJSON)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
	v.SetDefault("log.compress", cfg.Log.Compress)

	if path == "" {
		path = os.Getenv("LIVYC_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("livyc")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".livyc"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the parameters needed to open a session.
func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return &ConfigurationError{Field: "url", Reason: "required"}
	}
	if c.Kind != KindPySpark {
		return &ConfigurationError{Field: "kind", Reason: fmt.Sprintf("unsupported interpreter kind %q", c.Kind)}
	}
	for _, jar := range c.Jars {
		if strings.TrimSpace(jar) == "" {
			return &ConfigurationError{Field: "jars", Reason: "empty dependency identifier"}
		}
	}
	if err := c.Schedule().Validate(); err != nil {
		return &ConfigurationError{Field: "poll", Reason: err.Error()}
	}
	return nil
}

// Schedule converts the poll settings into a polling schedule
func (c Config) Schedule() poll.Schedule {
	return poll.Schedule{
		Seed:        c.Poll.Seed,
		Fallback:    c.Poll.Fallback,
		MaxDuration: c.Poll.MaxDuration,
	}
}
