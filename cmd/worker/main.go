// Package main is the entry point for the background worker. It runs the
// scheduled balance reconciliation over every account.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"weavebooks/internal/bootstrap"
	"weavebooks/internal/config"
	"weavebooks/internal/infrastructure/jobs"
	"weavebooks/internal/infrastructure/metrics"
	"weavebooks/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if !cfg.RedisEnabled() {
		log.Fatal("REDIS_ADDR must be set for the worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infow("starting weavebooks worker", "store", cfg.StoreDriver, "cron", cfg.ReconcileCron)

	backend, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open store", "error", err)
	}
	defer backend.Close(context.Background())

	services, closeLocker, err := bootstrap.Services(ctx, cfg, backend)
	if err != nil {
		log.Fatalw("failed to wire services", "error", err)
	}
	defer func() { _ = closeLocker() }()

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	m := metrics.New()
	reconciler := jobs.NewReconciler(backend.Repos.Accounts, services.Auditor, client, m)

	task, err := jobs.NewReconcileAllTask(cfg.ReconcileRepair)
	if err != nil {
		log.Fatalw("failed to build reconcile task", "error", err)
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		Redis:       redisOpt,
		Concurrency: cfg.WorkerConcurrency,
		Cron:        []jobs.CronEntry{{Spec: cfg.ReconcileCron, Task: task}},
		Register:    reconciler.Register,
		BaseContext: func() context.Context {
			return logger.WithLogger(context.Background(), log.WithComponent("worker"))
		},
	})
	if err != nil {
		log.Fatalw("failed to create worker", "error", err)
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server failed", "error", err)
		}
	}()

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("shutting down worker...")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			log.Errorw("worker stopped", "error", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer stop()
	_ = metricsServer.Shutdown(shutdownCtx)

	log.Info("worker stopped")
}
