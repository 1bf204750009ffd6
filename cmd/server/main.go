package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/api"
	"github.com/FilipposDe/shopify-fields-app/internal/cache"
	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/logging"
	"github.com/FilipposDe/shopify-fields-app/internal/metrics"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/store"
	"github.com/FilipposDe/shopify-fields-app/internal/service"
	"github.com/FilipposDe/shopify-fields-app/internal/shopify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting custom fields server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
	)

	// Initialize store, applying migrations
	repos, closeStore, err := store.Open(context.Background(), cfg, true, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer closeStore()

	sessions, err := cache.NewSessionRepository(repos.Session, cache.DefaultConfig(cfg.Cache.SessionTTL), logger)
	if err != nil {
		logger.Fatal("Failed to create session cache", zap.Error(err))
	}
	defer sessions.Close()
	repos.Session = sessions

	retry := shopify.NewBackoffPolicy(cfg.Retry, logger)

	// Initialize router
	router := api.NewRouter(cfg, api.Dependencies{
		Repos:   repos,
		Admin:   service.NewAdminAPIFactory(cfg.Shopify, retry, logger),
		OAuth:   shopify.NewOAuthClient(cfg.Shopify, logger),
		Metrics: metrics.New(),
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr), zap.String("host", cfg.Host))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
