package main

import (
	"context"
	"log"
	"time"

	"github.com/checkfox/go_reassign/internal/client"
	"github.com/checkfox/go_reassign/internal/config"
	"github.com/checkfox/go_reassign/internal/database"
	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/queue"
	"github.com/checkfox/go_reassign/internal/repository"
	"github.com/checkfox/go_reassign/internal/worker"
)

func main() {
	// Load configuration first so LOG_LEVEL from .env reaches the logger
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init()
	ctx := context.Background()

	logger.Info(ctx, "Activity delivery worker starting",
		"poll_interval", cfg.Worker.PollInterval.String(),
		"max_attempts", cfg.Retry.MaxAttempts)

	// Initialize database connection
	dbWrapper, err := database.InitFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbWrapper.Close()

	logger.Info(ctx, "Database connection established")

	// Initialize queue client
	jobQueue, err := queue.NewDBQueue(dbWrapper.DB)
	if err != nil {
		log.Fatalf("Failed to initialize queue: %v", err)
	}
	defer jobQueue.Close()

	// Initialize repositories
	auditRepo := repository.NewAuditRepository(dbWrapper.DB)
	attemptRepo := repository.NewActivityAttemptRepository(dbWrapper.DB)

	// Initialize CRM backend client
	crmClient := client.New(
		cfg.CRMAPI.URL,
		cfg.CRMAPI.LegacyURL,
		cfg.CRMAPI.Token,
		cfg.CRMAPI.Timeout,
	)

	// Doubling delays starting at the configured base
	backoffDelays := make([]time.Duration, cfg.Retry.MaxAttempts)
	for i := range backoffDelays {
		backoffDelays[i] = cfg.Retry.BackoffBase * (1 << i)
	}

	processor := worker.NewProcessor(worker.ProcessorConfig{
		Queue:                    jobQueue,
		AuditRepo:                auditRepo,
		AttemptRepo:              attemptRepo,
		Backend:                  crmClient,
		PollInterval:             cfg.Worker.PollInterval,
		MaxDeliveryAttempts:      cfg.Retry.MaxAttempts,
		ExponentialBackoffDelays: backoffDelays,
	})

	// Schedule queue maintenance alongside the polling loop
	janitor := worker.NewJanitor(jobQueue, cfg.Worker.JobRetention)
	if err := janitor.Start(ctx); err != nil {
		log.Fatalf("Failed to start queue janitor: %v", err)
	}
	defer janitor.Stop()

	// Start the worker; Start blocks until a shutdown signal arrives
	workerErrors := make(chan error, 1)
	go func() {
		workerErrors <- processor.Start(ctx)
	}()

	if err := <-workerErrors; err != nil {
		log.Fatalf("Worker error: %v", err)
	}

	logger.Info(ctx, "Worker shutdown complete")
}
