package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/campus-placement/internal/config"
	"github.com/jonathan/campus-placement/internal/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "placement.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\nstore:\n  driver: memory\n"), 0o600))

	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")
	configPath = path
	t.Cleanup(func() { configPath = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
}

func TestLoadConfig_EnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "placement.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: memory\n"), 0o600))

	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PLACEMENT_CONFIG", path)
	configPath = ""

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
}

func TestOpenStore(t *testing.T) {
	cfg := config.Defaults()
	cfg.Store.Driver = config.DriverMemory

	st, err := openStore(context.Background(), &cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, st)
	assert.NoError(t, st.Ping(context.Background()))

	cfg.Store.Driver = "sqlite"
	_, err = openStore(context.Background(), &cfg, discardLogger())
	assert.Error(t, err)
}

func TestSeedTPOCommand(t *testing.T) {
	t.Setenv("STORE_DRIVER", config.DriverMemory)
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("TPO_EMAIL", "office@college.edu")
	t.Setenv("TPO_PASSWORD", "office-secret")
	configPath = ""

	var out bytes.Buffer
	seedTPOCmd.SetOut(&out)
	seedTPOCmd.SetContext(context.Background())
	require.NoError(t, runSeedTPO(seedTPOCmd, nil))
	assert.Contains(t, out.String(), "Created TPO account office@college.edu")
}

func TestSeedTPOCommand_MissingCredentials(t *testing.T) {
	t.Setenv("STORE_DRIVER", config.DriverMemory)
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("TPO_EMAIL", "")
	t.Setenv("TPO_PASSWORD", "")
	configPath = ""
	seedEmail, seedPassword = "", ""

	seedTPOCmd.SetContext(context.Background())
	assert.Error(t, runSeedTPO(seedTPOCmd, nil))
}
