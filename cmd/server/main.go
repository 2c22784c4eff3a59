package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oilgas-dashboard/internal/config"
	"oilgas-dashboard/internal/handlers"
	"oilgas-dashboard/internal/models"
	"oilgas-dashboard/internal/repository"
	"oilgas-dashboard/internal/services"
	"oilgas-dashboard/pkg/logging"
	"oilgas-dashboard/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("oilgas-dashboard", version, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting oil & gas dashboard server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"candidates":  cfg.Data.Candidates,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("oilgas_dashboard", prometheus.DefaultRegisterer)

	// Initialize repository
	datasetRepo := repository.NewDatasetRepository(repository.NewCache(), logger, metricsCollector)

	// Initialize services
	dashboardService := services.NewDashboardService(datasetRepo, cfg.Data.Candidates, logger, metricsCollector)

	// Warm the cache; a missing file is reported per request, not fatal
	if loaded, err := dashboardService.Current(ctx); err != nil {
		var notFound *models.SourceNotFoundError
		if errors.As(err, &notFound) {
			logger.Warn(ctx, "[STARTUP_WARNING] No data file found, run the cleaner or sampler first", logging.Fields{
				"candidates": notFound.Candidates,
			})
		} else {
			logger.Error(ctx, "[STARTUP_ERROR] Failed to load dataset", logging.Fields{}, err)
		}
	} else {
		logger.Info(ctx, "[STARTUP] Dataset loaded", logging.Fields{
			"path":        loaded.Path,
			"rows":        loaded.Dataset.Len(),
			"diagnostics": len(loaded.Diagnostics),
		})
	}

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()
	router.Use(handlers.RequestID, handlers.Recoverer(logger), handlers.Instrument(logger, metricsCollector))

	// Register routes
	dashboardHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
