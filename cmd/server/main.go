package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/api"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/checkpoint"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/config"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/database"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/jobs"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/runner"
	"github.com/ArtAhmetaj/adaptive-backfill/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	config.InitLogger(cfg)

	slog.Info("Starting Adaptive Backfill Service", "version", version)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			slog.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	// Create indexes
	if err := database.CreateIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Initialize stores and repositories
	checkpointStore := checkpoint.NewMongo(db)
	historyRepo := runner.NewHistoryRepository(db)

	// Register jobs
	registry := runner.NewRegistry()
	if err := jobs.RegisterRetention(registry, db, checkpointStore, cfg); err != nil {
		slog.Error("Failed to register built-in jobs", "error", err)
		os.Exit(1)
	}

	// Initialize runner
	run := runner.New(registry, historyRepo)

	// Initialize scheduler
	var sched *runner.Scheduler
	if cfg.SchedulerEnabled {
		sched = runner.NewScheduler(registry, run, cfg.SchedulerTickInterval, cfg.SchedulerConcurrency)
		sched.Start(ctx)
	} else {
		slog.Info("Scheduler is disabled by configuration")
	}

	// Initialize handlers
	jobHandler := api.NewJobHandler(registry, run)
	runHandler := api.NewRunHandler(run, historyRepo)
	healthHandler := api.NewHealthHandler(db, version)

	corsConfig := middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: cfg.CORSAllowedMethods,
		AllowedHeaders: cfg.CORSAllowedHeaders,
		MaxAge:         cfg.CORSMaxAge,
	}

	router := api.NewRouter(jobHandler, runHandler, healthHandler, corsConfig)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop scheduler first (wait for in-flight runs)
	if sched != nil {
		sched.Stop(shutdownCtx)
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Adaptive Backfill Service stopped")
}
