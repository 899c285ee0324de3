package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/checkfox/go_reassign/internal/client"
	"github.com/checkfox/go_reassign/internal/config"
	"github.com/checkfox/go_reassign/internal/database"
	"github.com/checkfox/go_reassign/internal/handlers"
	"github.com/checkfox/go_reassign/internal/logger"
	"github.com/checkfox/go_reassign/internal/queue"
	"github.com/checkfox/go_reassign/internal/repository"
	"github.com/checkfox/go_reassign/internal/services"
)

func main() {
	// Load configuration first so LOG_LEVEL from .env reaches the logger
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init()
	ctx := context.Background()

	logger.Info(ctx, "Reassignment gateway starting",
		"host", cfg.API.Host,
		"port", cfg.API.Port,
		"auth_enabled", cfg.Auth.Enabled,
		"legacy_fallback", cfg.CRMAPI.LegacyURL != "")

	// Initialize database connection
	dbWrapper, err := database.InitFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbWrapper.Close()

	logger.Info(ctx, "Database connection established")

	// Run database migrations
	if err := database.RunMigrations(dbWrapper, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	logger.Info(ctx, "Database migrations completed")

	// Initialize queue client
	jobQueue, err := queue.NewDBQueue(dbWrapper.DB)
	if err != nil {
		log.Fatalf("Failed to initialize queue: %v", err)
	}
	defer jobQueue.Close()

	logger.Info(ctx, "Queue initialized")

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

	// Initialize workflow services
	phones := services.NewPhoneValidator()
	lookup := services.NewDuplicateLookup(crmClient, phones)
	calculator := services.NewCalculator()
	sessions := services.NewSessionStore()
	dispatcher := services.NewDispatcher(crmClient, auditRepo, jobQueue, sessions)

	// Initialize handlers and middleware
	lookupHandler := handlers.NewLookupHandler(lookup, calculator, sessions)
	reassignmentHandler := handlers.NewReassignmentHandler(dispatcher)
	statsHandler := handlers.NewStatsHandler(auditRepo, attemptRepo)
	authMiddleware := handlers.NewAuthMiddleware(cfg)
	recoveryMiddleware := handlers.NewRecoveryMiddleware()

	router := handlers.NewRouter(lookupHandler, reassignmentHandler, statsHandler, authMiddleware, recoveryMiddleware)

	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "address", addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)

	case sig := <-sigChan:
		logger.Info(ctx, "Received shutdown signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown error", "error", err.Error())
			server.Close()
		}

		logger.Info(ctx, "Server shutdown complete")
	}
}
