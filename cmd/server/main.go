// Package main is the entry point for the billing API server.
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

	"github.com/klauspost/compress/gzhttp"

	"weavebooks/internal/bootstrap"
	"weavebooks/internal/config"
	"weavebooks/internal/domain/auth"
	v1 "weavebooks/internal/infrastructure/http/v1"
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

	ctx := context.Background()
	log.Infow("starting weavebooks server", "env", cfg.AppEnv, "store", cfg.StoreDriver)

	// --- Store ---
	backend, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open store", "error", err)
	}
	defer backend.Close(context.Background())

	// --- Services ---
	services, closeLocker, err := bootstrap.Services(ctx, cfg, backend)
	if err != nil {
		log.Fatalw("failed to wire services", "error", err)
	}
	defer func() { _ = closeLocker() }()

	// --- Router ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	router := v1.NewRouter(v1.RouterConfig{
		Services:     services,
		Logger:       log,
		JWTValidator: jwtService,
		Metrics:      metrics.New(),
		CORSOrigins:  cfg.CORSAllowedOrigins,
		Production:   cfg.IsProduction(),
		Ping:         backend.Ping,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           gzhttp.GzipHandler(router),
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
