package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/schedcu/surgical-scheduler/internal/api"
	"github.com/schedcu/surgical-scheduler/internal/config"
	"github.com/schedcu/surgical-scheduler/internal/engine"
	"github.com/schedcu/surgical-scheduler/internal/job"
	"github.com/schedcu/surgical-scheduler/internal/metrics"
	"github.com/schedcu/surgical-scheduler/internal/obslog"
	"github.com/schedcu/surgical-scheduler/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := obslog.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	metricsRegistry := metrics.New()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("connect to database", "error", err)
	}
	defer db.Close()
	logger.Info("connected to database")
	repo := postgres.NewRepository(db.DB)

	e := engine.New(repo, cfg.EngineConfig(), engine.WithLogger(logger), engine.WithMetrics(metricsRegistry))

	router := api.NewRouter(e)
	router.RegisterMetrics(metricsRegistry.Handler())

	go func() {
		logger.Infow("starting server", "port", cfg.Port)
		if err := router.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server error", "error", err)
		}
	}()

	// The job worker only starts when a queue is configured; a solo
	// HTTP deployment can still serve optimize/emergency requests
	// synchronously through the engine.
	var asynqServer *asynq.Server
	if cfg.RedisURL != "" {
		handlers := job.NewHandlers(e, logger)
		mux := asynq.NewServeMux()
		handlers.RegisterHandlers(mux)

		asynqServer = asynq.NewServer(
			asynq.RedisClientOpt{Addr: cfg.RedisURL},
			asynq.Config{Concurrency: cfg.WorkerPoolSize},
		)
		go func() {
			logger.Info("starting job worker")
			if err := asynqServer.Run(mux); err != nil {
				logger.Fatalw("job worker error", "error", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if asynqServer != nil {
		asynqServer.Shutdown()
	}
	if err := router.Shutdown(); err != nil {
		logger.Fatalw("server shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
