package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "placement.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearEnv blanks every variable ApplyEnv reads so the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "STORE_DRIVER", "DATABASE_URL", "MONGO_URI", "MONGO_DB", "NATS_URL",
		"RATE_LIMIT_REDIS_URL", "LOG_LEVEL", "LOG_FORMAT", "TPO_NAME", "TPO_EMAIL", "TPO_PASSWORD",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
port: 9090
store:
  driver: mongo
  mongo_uri: mongodb://localhost:27017
  mongo_database: campus
nats_url: nats://localhost:4222
log_format: json
tpo:
  email: tpo@uni.edu
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	assert.Equal(t, "campus", cfg.Store.MongoDatabase)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "tpo@uni.edu", cfg.TPO.Email)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "config path is empty")

	_, err = LoadConfig("/nonexistent/placement.yaml")
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, "port: [not a number"))
	assert.ErrorContains(t, err, "failed to parse config YAML")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: 9090
store:
  driver: postgres
  database_url: postgres://file/db
`)
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "postgres://env/db", cfg.Store.DatabaseURL)
	assert.Equal(t, "placementdb", cfg.Store.MongoDatabase)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_WithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")

	_, err := Load("")
	assert.ErrorContains(t, err, "invalid PORT")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := Defaults()
		c.Store.DatabaseURL = "postgres://localhost/placement"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with database url", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.Store.DatabaseURL = "" }, "database_url"},
		{"mongo without uri", func(c *Config) { c.Store.Driver = DriverMongo }, "mongo_uri"},
		{"memory needs nothing", func(c *Config) { c.Store = StoreConfig{Driver: DriverMemory} }, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, "unknown store driver"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "port"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9000, Store: StoreConfig{Driver: DriverMemory}}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, DriverMemory, merged.Store.Driver)
	assert.Equal(t, "placementdb", merged.Store.MongoDatabase)
	assert.Equal(t, "text", merged.LogFormat)
	assert.Equal(t, "Placement Office", merged.TPO.Name)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
}
