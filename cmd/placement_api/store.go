package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonathan/campus-placement/internal/config"
	"github.com/jonathan/campus-placement/internal/db"
	"github.com/jonathan/campus-placement/internal/memstore"
	"github.com/jonathan/campus-placement/internal/mongodb"
	"github.com/jonathan/campus-placement/internal/store"
)

const connectTimeout = 10 * time.Second

// openStore connects to the backend selected by cfg.Store.Driver.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		st, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("connected to postgres")
		return st, nil
	case config.DriverMongo:
		st, err := mongodb.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		logger.Info("connected to mongo", slog.String("database", cfg.Store.MongoDatabase))
		return st, nil
	case config.DriverMemory:
		logger.Warn("using the in-memory store; data is lost on exit")
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// loadConfig reads --config (or PLACEMENT_CONFIG), the environment and defaults.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("PLACEMENT_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
