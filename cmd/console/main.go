package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/banking-fraud-console/internal/batch"
	"github.com/banking-fraud-console/internal/config"
	"github.com/banking-fraud-console/internal/console"
	"github.com/banking-fraud-console/internal/console/handler"
	"github.com/banking-fraud-console/internal/logger"
	"github.com/banking-fraud-console/internal/platform/messaging"
	"github.com/banking-fraud-console/internal/platform/metrics"
	"github.com/banking-fraud-console/internal/platform/txapi"
	"github.com/banking-fraud-console/internal/riskgate"
	"github.com/banking-fraud-console/internal/session"
	"github.com/banking-fraud-console/internal/synth"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("console")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Metrics collector backing the /metrics endpoint
	collector := metrics.NewCollector(cfg.Metrics.Namespace)

	// Batch-run audit publisher, Kafka-backed when enabled
	var audit messaging.AuditPublisher = messaging.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaAudit, err := messaging.NewKafkaAuditPublisher(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize Kafka audit publisher", "error", err)
			os.Exit(1)
		}
		audit = kafkaAudit
	}

	// Session-independent client for login requests
	authClient := txapi.NewClient(log, &cfg.TxAPI, nil)

	// Each session gets its own upstream client bound to its token and a
	// breaker-protected status lookup feeding its risk gate.
	clientFor := func(tokens txapi.TokenSource) *txapi.Client {
		return txapi.NewClient(log, &cfg.TxAPI, tokens)
	}

	sessions := session.NewManager(func(creds session.Credentials) riskgate.FieldGate {
		lookup := txapi.NewBreakerLookup(log, clientFor(creds), &cfg.RiskGate, collector)
		return riskgate.New(log, lookup, creds.Authenticated, cfg.RiskGate.Debounce)
	})

	// Bounded pool of concurrent batch runs
	pool, err := batch.NewPool(log, cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize batch run pool", "error", err)
		os.Exit(1)
	}

	// Per-session runner: fresh synthesizer, shared throttle setting
	runnerFor := func(tokens txapi.TokenSource) batch.Runner {
		source := synth.NewEnforcer(synth.NewGenerator(nil))
		return batch.NewOrchestrator(log, source, clientFor(tokens), cfg.Batch.Throttle)
	}

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(log, sessions, authClient, collector)
	transactionHandler := handler.NewTransactionHandler(log, sessions, func(tokens txapi.TokenSource) handler.Submitter {
		return clientFor(tokens)
	}, collector)
	generateHandler := handler.NewGenerateHandler(log, sessions, pool, runnerFor, audit, collector)
	dashboardHandler := handler.NewDashboardHandler(log, sessions, func(tokens txapi.TokenSource) handler.DashboardSource {
		return clientFor(tokens)
	})

	// Initialize REST server
	server := console.NewServer(log, cfg, sessionHandler, transactionHandler, generateHandler, dashboardHandler, collector.Handler())
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

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	pool.Shutdown()
	sessions.CloseAll()

	if err = audit.Close(); err != nil {
		log.Error("Error closing audit publisher", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
