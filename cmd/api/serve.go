package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-queue/internal/adapters/events/kafka"
	"hospital-queue/internal/adapters/events/metricsink"
	"hospital-queue/internal/adapters/events/redisstream"
	"hospital-queue/internal/adapters/notify/logsink"
	"hospital-queue/internal/adapters/notify/webhook"
	mem "hospital-queue/internal/adapters/storage/memory"
	pg "hospital-queue/internal/adapters/storage/postgres"
	"hospital-queue/internal/config"
	"hospital-queue/internal/domain/queue"
	"hospital-queue/internal/platform/logger"
	"hospital-queue/internal/platform/metrics"
	"hospital-queue/internal/ports/notify"
	"hospital-queue/internal/router"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	col := metrics.New()

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	sinks := []queue.EventSink{
		metricsink.Track(col, "persist", queue.PersistSink(repo)),
	}

	if cfg.RedisURL != "" {
		rdb, err := redisstream.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		sinks = append(sinks, metricsink.Track(col, "redis",
			redisstream.NewPublisher(rdb, cfg.RedisStream, cfg.RedisStreamMaxLen)))
		log.Info("redis stream enabled", map[string]any{"stream": cfg.RedisStream})
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := kafka.NewPublisher(kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("kafka writer close failed", map[string]any{"error": err.Error()})
			}
		}()

		sinks = append(sinks, metricsink.Track(col, "kafka", pub))
		log.Info("kafka publisher enabled", map[string]any{"topic": cfg.KafkaTopic})
	}

	// Shards por departamento: el orden de eventos de una cola se conserva.
	dispatch := newDispatcher(
		cfg.DispatchWorkers,
		cfg.DispatchBuffer,
		queue.FanOut(sinks...),
		metricsink.Track(col, "notify", queue.NotifySink(buildNotifier(cfg, log))),
		col,
		log,
	)
	dispatch.Start()
	defer dispatch.Stop()

	m := queue.NewManager(
		queue.WithLogger(log),
		queue.WithDefaultServiceTime(cfg.DefaultServiceTime),
		queue.WithSinks(metricsink.New(col), dispatch),
	)
	if err := m.Restore(ctx, repo); err != nil {
		return errors.Wrap(err, "restore queues")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(router.Options{Manager: m, Logger: log, Metrics: col}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// openRepository: sin DB_DSN el historial vive solo en memoria.
func openRepository(ctx context.Context, cfg *config.Config, log logger.Logger) (queue.Repository, func(), error) {
	if cfg.DatabaseDSN == "" {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
		return mem.NewVisitRepo(), func() {}, nil
	}

	db, err := pg.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return pg.NewVisitsRepo(db), func() { _ = db.Close() }, nil
}

func buildNotifier(cfg *config.Config, log logger.Logger) notify.Notifier {
	n, err := webhook.New(webhook.Config{
		URL:     cfg.NotifyWebhookURL,
		APIKey:  cfg.NotifyWebhookAPIKey,
		Timeout: 5 * time.Second,
		Retries: 2,
	})
	if err != nil {
		return logsink.New(log)
	}
	return n
}
