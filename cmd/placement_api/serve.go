package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/campus-placement/internal/accounts"
	"github.com/jonathan/campus-placement/internal/analytics"
	"github.com/jonathan/campus-placement/internal/config"
	"github.com/jonathan/campus-placement/internal/metrics"
	"github.com/jonathan/campus-placement/internal/notify"
	"github.com/jonathan/campus-placement/internal/placement"
	"github.com/jonathan/campus-placement/internal/server"
	"github.com/jonathan/campus-placement/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the placement REST endpoints, /health and /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply the schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if serveMigrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	notifyOpts := []notify.Option{notify.WithMetrics(m), notify.WithLogger(logger)}
	if cfg.NATSURL != "" {
		nc, err := notify.ConnectNATS(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		notifyOpts = append(notifyOpts, notify.WithPublisher(nc))
		logger.Info("publishing notifications to NATS", slog.String("url", nc.ConnectedUrl()))
	}
	dispatcher := notify.New(st, notifyOpts...)

	limiterOpts := []ratelimit.Option{}
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiterOpts = append(limiterOpts, ratelimit.WithCounter(ratelimit.NewRedisCounter(rdb), func(err error) {
			logger.Warn("shared rate limit unavailable, allowing request", slog.String("error", err.Error()))
		}))
		logger.Info("rate limits shared through redis")
	}
	limiter := ratelimit.NewLimiter(ratelimit.LoadConfig(), limiterOpts...)

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	acct := accounts.NewService(st, passwords, dispatcher, accounts.WithLogger(logger))
	if cfg.TPO.Email != "" && cfg.TPO.Password != "" {
		_, created, err := acct.SeedTPO(ctx, cfg.TPO.Name, cfg.TPO.Email, cfg.TPO.Password)
		if err != nil {
			return fmt.Errorf("failed to seed TPO account: %w", err)
		}
		if created {
			logger.Info("seeded TPO account", slog.String("email", cfg.TPO.Email))
		}
	}

	srv, err := server.New(server.Config{Port: cfg.Port}, server.Deps{
		Store:     st,
		Placement: placement.New(st, dispatcher, placement.WithMetrics(m), placement.WithLogger(logger)),
		Accounts:  acct,
		Analytics: analytics.New(st),
		Notify:    dispatcher,
		JWT:       server.NewJWTService(jwtConfig),
		Limiter:   limiter,
		Metrics:   m,
		Gatherer:  registry,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
