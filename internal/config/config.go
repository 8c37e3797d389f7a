// Package config resolves runtime settings from defaults, an optional YAML
// file, a .env file and LOVEJOURNEY_* environment variables, in that order.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/lovejourney/internal/store"
)

// Environment variables read by Load.
const (
	EnvDB          = "LOVEJOURNEY_DB"
	EnvDriver      = "LOVEJOURNEY_DRIVER"
	EnvOpenTimeout = "LOVEJOURNEY_OPEN_TIMEOUT"
	EnvFormat      = "LOVEJOURNEY_FORMAT"
	EnvLogLevel    = "LOVEJOURNEY_LOG_LEVEL"
	EnvLogFormat   = "LOVEJOURNEY_LOG_FORMAT"
	EnvConfig      = "LOVEJOURNEY_CONFIG"
)

// Config is the resolved runtime configuration.
type Config struct {
	DBPath      string        `yaml:"db"`
	Driver      string        `yaml:"driver"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
	Format      string        `yaml:"format"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	Watch       WatchConfig   `yaml:"watch"`
}

// WatchConfig tunes the long-running watch session.
type WatchConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	// CheckInterval re-evaluates reminders so exact-time plans fire the
	// same day.
	CheckInterval time.Duration `yaml:"check_interval"`
	// Terminal prints notifications to stdout; Log writes them to the logger.
	Terminal bool `yaml:"terminal"`
	Log      bool `yaml:"log"`
	Async    bool `yaml:"async"`
}

// Dir is the per-user data directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lovejourney")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:      filepath.Join(Dir(), "lovejourney.db"),
		Driver:      store.DriverSQLite,
		OpenTimeout: store.DefaultOpenTimeout,
		Format:      "json",
		LogLevel:    "warn",
		LogFormat:   "text",
		Watch: WatchConfig{
			TickInterval:  time.Second,
			CheckInterval: time.Minute,
			Terminal:      true,
		},
	}
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	// File is a YAML config path. Empty means $LOVEJOURNEY_CONFIG, then
	// ~/.lovejourney/config.yaml if it exists.
	File string
	// EnvFiles are .env files; missing ones are skipped. Empty means ".env".
	EnvFiles []string
}

// Load builds the configuration. An explicitly named config file that cannot
// be read is an error; the default one is optional.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	envFiles := opts.EnvFiles
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	file, explicit := opts.File, opts.File != ""
	if !explicit {
		if file = os.Getenv(EnvConfig); file != "" {
			explicit = true
		} else {
			file = filepath.Join(Dir(), "config.yaml")
		}
	}
	if err := cfg.readFile(file, explicit); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := getenv(EnvDriver); v != "" {
		c.Driver = v
	}
	if v := getenv(EnvOpenTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOpenTimeout, err)
		}
		c.OpenTimeout = d
	}
	if v := getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Driver {
	case store.DriverSQLite, store.DriverBolt:
	default:
		return fmt.Errorf("invalid driver %q (valid: sqlite, bolt)", c.Driver)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid format %q (valid: json, text)", c.Format)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q (valid: json, text)", c.LogFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// StoreOptions maps the config onto store.Open options.
func (c *Config) StoreOptions(log *slog.Logger) store.Options {
	return store.Options{
		Driver:      c.Driver,
		Path:        c.DBPath,
		OpenTimeout: c.OpenTimeout,
		Logger:      log,
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
