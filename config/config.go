/*
Package config loads bentobox settings.

PURPOSE:
  One Config for the server and the CLI, layered as:
  defaults < YAML file < .env < BENTOBOX_* environment variables.

KEYS:
  server.listen_addr       ":8080"
  server.allowed_origins   ["*"]
  storage.driver           sqlite | s3 | memory
  storage.key              board key inside the store
  storage.sqlite_path      SQLite file
  storage.s3.*             bucket, region, endpoint, path_style, prefix
  calendar.timezone        IANA zone the grid is drawn in
  calendar.week_start      monday | sunday
  calendar.time_format     12h | 24h
  status.tick              cron spec of the status ticker
  logging.level            debug | info | warn | error
  logging.format           text | json

  Nested keys map to env vars with "_": storage.s3.bucket is
  BENTOBOX_STORAGE_S3_BUCKET.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/warp/bentobox/generic"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BENTOBOX"

// Config holds all configuration for bentobox.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Status   StatusConfig   `mapstructure:"status"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	ListenAddr     string   `mapstructure:"listen_addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects and configures the BlobStore.
type StorageConfig struct {
	Driver     string   `mapstructure:"driver"`
	Key        string   `mapstructure:"key"`
	SQLitePath string   `mapstructure:"sqlite_path"`
	S3         S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
	Prefix    string `mapstructure:"prefix"`
}

// CalendarConfig controls how the grid is drawn.
type CalendarConfig struct {
	Timezone   string `mapstructure:"timezone"`
	WeekStart  string `mapstructure:"week_start"`
	TimeFormat string `mapstructure:"time_format"`
}

// Location resolves Timezone. Validate has already rejected bad names.
func (c CalendarConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StatusConfig drives the derived-status ticker.
type StatusConfig struct {
	Tick string `mapstructure:"tick"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// Load reads configuration. path may be empty, in which case
// ./bentobox.yaml is used when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bentobox")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.key", generic.DefaultStoreKey)
	v.SetDefault("storage.sqlite_path", "./data/bentobox.db")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.path_style", false)
	v.SetDefault("storage.s3.prefix", "")

	v.SetDefault("calendar.timezone", "UTC")
	v.SetDefault("calendar.week_start", "monday")
	v.SetDefault("calendar.time_format", string(generic.TimeFormat12h))

	v.SetDefault("status.tick", "@every 60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path must not be empty for the sqlite driver")
		}
	case DriverS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket must not be empty for the s3 driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q must be sqlite, s3 or memory", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("calendar.timezone: %w", err)
	}
	switch strings.ToLower(c.Calendar.WeekStart) {
	case "monday", "sunday":
	default:
		return fmt.Errorf("calendar.week_start %q must be monday or sunday", c.Calendar.WeekStart)
	}
	if !generic.TimeFormat(c.Calendar.TimeFormat).IsValid() {
		return fmt.Errorf("calendar.time_format %q must be 12h or 24h", c.Calendar.TimeFormat)
	}
	if c.Status.Tick == "" {
		return fmt.Errorf("status.tick must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}
	return nil
}
