package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"advisor360/internal/amqp"
	"advisor360/internal/config"
	apphttp "advisor360/internal/http"
	"advisor360/internal/log"
	"advisor360/internal/services"
	"advisor360/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose data backend (default: memory).
	var (
		commissionRepo storage.CommissionRepository
		partnerRepo    storage.PartnerRepository
	)

	switch cfg.DataBackend {
	case "sqlite":
		// NewSQLiteRepository runs migrations before returning.
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		commissionRepo, partnerRepo = repo, repo.Partners()
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	case "supabase":
		client, err := storage.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			logger.Error("Failed to initialize Supabase client", "error", err)
			os.Exit(1)
		}
		commissionRepo, partnerRepo = client, client.Partners()
		logger.Info("Initialized Supabase backend", "backend", cfg.DataBackend)
	default:
		store := storage.NewMemoryStore()
		commissionRepo, partnerRepo = store, store.Partners()
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	// Initialize AMQP publisher for sync messages (optional). The memory
	// backend has no durable state to sync, so it never publishes.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" && cfg.DataBackend == "sqlite" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, sync messages disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	commissions := services.NewCommissionService(commissionRepo, partnerRepo, publisher)
	partners := services.NewPartnerService(partnerRepo, commissionRepo)
	dashboard := services.NewDashboardService(commissionRepo, partnerRepo)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:              ":" + cfg.Port,
		AllowedOrigins:    cfg.AllowedOrigins,
		RequestsPerMinute: cfg.RateLimitRPM,
	}, commissions, partners, dashboard)

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting advisor360 server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
