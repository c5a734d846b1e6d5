// Package main is the entry point for the publishplane worker.
// The worker owns the auto-publish loop: it evaluates ready articles,
// claims due schedules, pushes them through the publish transport, and
// applies retry backoff.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"publishplane/internal/config"
	"publishplane/internal/logger"
	"publishplane/internal/observability"
	"publishplane/internal/orchestrator"
	"publishplane/internal/publisher"
	"publishplane/internal/store/postgres"
)

func main() {
	// Parse flags
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	configPath := flag.String("config", "", "Path to config file (default: publishplane.yaml in current directory)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogger := logger.New()

	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer store.Close()

	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(store.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "publishplane-worker", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Select publish transport based on configuration
	var pub publisher.Publisher
	switch cfg.Publisher {
	case "webhook":
		pub = publisher.NewWebhook(cfg.WebhookURL, cfg.WebhookSecret)
		log.Printf("Using webhook transport (%s)", cfg.WebhookURL)
	case "wordpress":
		fallthrough
	default:
		pub = publisher.NewWordPress(cfg.WordPressURL, cfg.WordPressUsername, cfg.WordPressAppPassword)
		log.Printf("Using wordpress transport (%s)", cfg.WordPressURL)
	}

	// Reminders go to the notify webhook when configured, the log otherwise.
	var notifier orchestrator.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = orchestrator.NewWebhookNotifier(cfg.NotifyWebhookURL)
	}

	orch := orchestrator.New(store, pub, notifier, slogger, orchestrator.Config{
		Concurrency:  cfg.WorkerConcurrency,
		PollInterval: cfg.WorkerPollInterval,
		MaxBackoff:   cfg.WorkerMaxBackoff,
		BatchSize:    cfg.WorkerBatchSize,
	})

	log.Printf("Worker started with concurrency %d", cfg.WorkerConcurrency)
	go orch.Run(ctx)

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	err = observability.RegisterScheduleMetrics(store.CountPending, func(err error) {
		log.Printf("Failed to count pending schedules: %v", err)
	})
	if err != nil {
		log.Printf("Failed to register pending schedules metric: %v", err)
	}

	// Start a dedicated metrics server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		log.Printf("Worker metrics listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	cancel()

	<-orch.Done()
}
