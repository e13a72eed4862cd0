package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/hpms-api/internal/config"
	"github.com/jwalitptl/hpms-api/internal/email"
	"github.com/jwalitptl/hpms-api/internal/handler/health"
	"github.com/jwalitptl/hpms-api/internal/repository"
	"github.com/jwalitptl/hpms-api/internal/repository/memory"
	"github.com/jwalitptl/hpms-api/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/hpms-api/internal/repository/redis"
	"github.com/jwalitptl/hpms-api/internal/router"
	"github.com/jwalitptl/hpms-api/internal/service/notification"
	"github.com/jwalitptl/hpms-api/internal/sms"
	"github.com/jwalitptl/hpms-api/pkg/metrics"
)

func serveCmd(load configLoader) *cobra.Command {
	var inMemory, migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, inMemory, migrate)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "Keep all data in process memory instead of PostgreSQL")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

// openStore returns the repositories plus the readiness checks and a cleanup
// func for whatever it connected to.
func openStore(ctx context.Context, cfg *config.Config, inMemory bool) (*repository.Store, []health.Check, func(), error) {
	if inMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil, func() {}, nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	checks := []health.Check{health.DatabaseCheck(db)}
	closers := []func() error{db.Close}

	tokens := memory.NewTokenRepository()
	if cfg.Redis.Addr != "" {
		client, err := redisrepo.NewClient(ctx, cfg.Redis)
		if err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		tokens = redisrepo.NewTokenRepository(client)
		checks = append(checks, health.RedisCheck(client))
		closers = append(closers, client.Close)
	} else {
		log.Warn().Msg("redis not configured, revoked tokens are kept in memory")
	}

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("failed to close connection")
			}
		}
	}
	return postgres.NewStore(db, tokens), checks, cleanup, nil
}

func serve(ctx context.Context, cfg *config.Config, inMemory, migrate bool) error {
	if migrate && !inMemory {
		if err := runMigrations(ctx, cfg); err != nil {
			return err
		}
	}

	store, checks, cleanup, err := openStore(ctx, cfg, inMemory)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("hpms", reg)

	notifier := notification.NewDispatcher(
		email.NewSender(cfg.Notification.SMTP),
		sms.NewSender(cfg.Notification.SMS),
		cfg.Notification.Timeout,
		m,
	)

	r := router.NewRouter(cfg, router.Dependencies{
		Store:    store,
		Notifier: notifier,
		Metrics:  m,
		Gatherer: reg,
		Checks:   checks,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("environment", cfg.Environment).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}
