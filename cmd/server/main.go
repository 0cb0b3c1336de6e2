// Package main is the entry point for the Stockfolio HTTP server.
//
// The server exposes portfolio management, valuation and analytics over a
// JSON API and runs scheduled database maintenance in the background.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/stockfolio/internal/config"
	"github.com/aristath/stockfolio/internal/di"
	"github.com/aristath/stockfolio/internal/scheduler"
	"github.com/aristath/stockfolio/internal/server"
	"github.com/aristath/stockfolio/pkg/logger"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
		App:    "stockfolio-server",
	})
	logger.SetGlobalLogger(log)

	version := getEnv("VERSION", "dev")
	log.Info().Str("version", version).Str("data_dir", cfg.DataDir).Msg("Starting Stockfolio")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	sched := scheduler.New(log)
	if err := di.ScheduleJobs(sched, jobs, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule jobs")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
		Scheduler: sched,
		Version:   version,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	sched.Stop()

	log.Info().Msg("Server stopped")
}
