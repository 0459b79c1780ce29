package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pawhaven-donation-engine/internal/api"
	"github.com/pawhaven-donation-engine/internal/config"
	"github.com/pawhaven-donation-engine/internal/data/mongo"
	"github.com/pawhaven-donation-engine/internal/data/postgres"
	"github.com/pawhaven-donation-engine/internal/logger"
	"github.com/pawhaven-donation-engine/internal/platform/payment"
	"github.com/pawhaven-donation-engine/internal/platform/persistence"
	"github.com/pawhaven-donation-engine/internal/reconciliation/components"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Donation API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	donationRepo := postgres.NewDonationRepository(log, postgresDB)
	animalRepo := postgres.NewAnimalRepository(log, postgresDB)
	campaignRepo := postgres.NewCampaignRepository(log, postgresDB)
	donorRepo := postgres.NewDonorRepository(log, postgresDB)
	rewardRepo := postgres.NewRewardRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())

	// Initialize payment processor client
	processor := payment.NewHTTPClient(log, &cfg.Payment)

	// Initialize donation service with separated concerns
	donationService := components.CreateDonationService(
		postgresDB,
		donationRepo,
		animalRepo,
		campaignRepo,
		donorRepo,
		rewardRepo,
		outboxRepo,
		processor,
		cfg,
		log,
	)

	// Initialize REST server
	server := api.NewServer(log, cfg, donationService, auditRepo)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("Service exited with error", "error", serverErr)
		os.Exit(1)
	}

	log.Info("Graceful shutdown complete")
}
