package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "transakce.yaml"

// EnvPrefix prefixes environment overrides, e.g. TRANSAKCE_DATABASE_DSN.
const EnvPrefix = "TRANSAKCE"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the top-level transakce.yaml configuration.
type Config struct {
	Database Database     `yaml:"database" mapstructure:"database"`
	Import   ImportConfig `yaml:"import" mapstructure:"import"`
	Watch    WatchConfig  `yaml:"watch" mapstructure:"watch"`
	Log      LogConfig    `yaml:"log" mapstructure:"log"`
}

// Database selects the storage backend.
type Database struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	// DSN is a file path for sqlite and a postgres:// URL for postgres.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// ImportConfig controls bank statement imports.
type ImportConfig struct {
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	User      string `yaml:"user" mapstructure:"user"`
	// MaxErrors caps the row errors stored on a batch; 0 keeps all.
	MaxErrors int `yaml:"max_errors" mapstructure:"max_errors"`
}

// WatchConfig controls the import directory watcher.
type WatchConfig struct {
	Schedule string `yaml:"schedule" mapstructure:"schedule"` // cron spec
}

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// Load reads a transakce.yaml file from disk and applies TRANSAKCE_*
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("import.delimiter", d.Import.Delimiter)
	v.SetDefault("import.user", d.Import.User)
	v.SetDefault("import.max_errors", d.Import.MaxErrors)
	v.SetDefault("watch.schedule", d.Watch.Schedule)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config for a new workspace backed by a local sqlite file.
func Default() *Config {
	return &Config{
		Database: Database{
			Driver: DriverSQLite,
			DSN:    filepath.Join("data", "transakce.db"),
		},
		Import: ImportConfig{
			Delimiter: ";",
			User:      "system",
		},
		Watch: WatchConfig{
			Schedule: "@every 5m",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatConsole,
		},
	}
}

// Validate checks the driver, delimiter and log format.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if utf8.RuneCountInString(c.Import.Delimiter) != 1 {
		return fmt.Errorf("import.delimiter must be a single character, got %q", c.Import.Delimiter)
	}
	if c.Import.MaxErrors < 0 {
		return fmt.Errorf("import.max_errors must not be negative")
	}
	switch c.Log.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log.format %q", c.Log.Format)
	}
	return nil
}

// DelimiterRune returns the configured field delimiter.
func (c ImportConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Resolve makes a relative sqlite path absolute against root.
func (d Database) Resolve(root string) Database {
	if d.Driver == DriverSQLite && !filepath.IsAbs(d.DSN) {
		d.DSN = filepath.Join(root, d.DSN)
	}
	return d
}
