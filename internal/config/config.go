// Package config provides configuration loading and validation for the placement API.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver        string `yaml:"driver,omitempty"`
	DatabaseURL   string `yaml:"database_url,omitempty"`
	MongoURI      string `yaml:"mongo_uri,omitempty"`
	MongoDatabase string `yaml:"mongo_database,omitempty"`
}

// TPOConfig is the placement office account created by seed-tpo.
type TPOConfig struct {
	Name     string `yaml:"name,omitempty"`
	Email    string `yaml:"email,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Config is the service configuration. Values come from an optional YAML
// file, then environment variables, then defaults.
type Config struct {
	Port      int         `yaml:"port,omitempty"`
	Store     StoreConfig `yaml:"store"`
	NATSURL   string      `yaml:"nats_url,omitempty"`  // optional notification fan-out
	RedisURL  string      `yaml:"redis_url,omitempty"` // optional shared rate limiter
	LogLevel  string      `yaml:"log_level,omitempty"`
	LogFormat string      `yaml:"log_format,omitempty"` // text or json
	TPO       TPOConfig   `yaml:"tpo"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port: 8080,
		Store: StoreConfig{
			Driver:        DriverPostgres,
			MongoDatabase: "placementdb",
		},
		LogLevel:  "info",
		LogFormat: "text",
		TPO: TPOConfig{
			Name: "Placement Office",
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &cfg, nil
}

// Load reads the optional file at path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields with any of the recognised environment variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}

	overrides := []struct {
		env string
		dst *string
	}{
		{"STORE_DRIVER", &c.Store.Driver},
		{"DATABASE_URL", &c.Store.DatabaseURL},
		{"MONGO_URI", &c.Store.MongoURI},
		{"MONGO_DB", &c.Store.MongoDatabase},
		{"NATS_URL", &c.NATSURL},
		{"RATE_LIMIT_REDIS_URL", &c.RedisURL},
		{"LOG_LEVEL", &c.LogLevel},
		{"LOG_FORMAT", &c.LogFormat},
		{"TPO_NAME", &c.TPO.Name},
		{"TPO_EMAIL", &c.TPO.Email},
		{"TPO_PASSWORD", &c.TPO.Password},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config error: 'store.database_url' (DATABASE_URL) is required for the postgres driver")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("config error: 'store.mongo_uri' (MONGO_URI) is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config error: unknown store driver %q", c.Store.Driver)
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json, got %q", c.LogFormat)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Store.Driver == "" {
		result.Store.Driver = defaults.Store.Driver
	}
	if result.Store.DatabaseURL == "" {
		result.Store.DatabaseURL = defaults.Store.DatabaseURL
	}
	if result.Store.MongoURI == "" {
		result.Store.MongoURI = defaults.Store.MongoURI
	}
	if result.Store.MongoDatabase == "" {
		result.Store.MongoDatabase = defaults.Store.MongoDatabase
	}
	if result.NATSURL == "" {
		result.NATSURL = defaults.NATSURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.TPO.Name == "" {
		result.TPO.Name = defaults.TPO.Name
	}
	if result.TPO.Email == "" {
		result.TPO.Email = defaults.TPO.Email
	}
	if result.TPO.Password == "" {
		result.TPO.Password = defaults.TPO.Password
	}

	return result
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config error: invalid 'log_level' %q", s)
	}
	return level, nil
}
