package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oasis/internal/adapters/config"
	"oasis/internal/adapters/discovery"
	noopTracker "oasis/internal/adapters/errors/noop"
	sentryTracker "oasis/internal/adapters/errors/sentry"
	"oasis/internal/adapters/kafka"
	"oasis/internal/adapters/postgres"
	"oasis/internal/adapters/redis"
	"oasis/internal/agents"
	"oasis/internal/api"
	"oasis/internal/api/handlers"
	"oasis/internal/api/health"
	"oasis/internal/events"
	repo "oasis/internal/repository/postgres"
	"oasis/internal/services/marketsetup"
	"oasis/internal/services/pricing"
	syncsvc "oasis/internal/services/sync"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Databases
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	log.Info("Databases initialized")

	// Repositories
	listingRepo := repo.NewListingRepository(pgClient.DB())
	calendarRepo := repo.NewCalendarRepository(pgClient.DB())
	eventRepo := repo.NewEventSignalRepository(pgClient.DB())
	proposalRepo := repo.NewProposalRepository(pgClient.DB())

	// Event publishing (optional)
	var publisher *events.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		defer producer.Close()
		publisher = events.NewPublisher(producer)
		log.Info("Kafka publisher initialized")
	} else {
		log.Info("Kafka publishing disabled")
	}

	// External event discovery
	searcher, err := discovery.NewOpenAISearcher(cfg.Discovery)
	if err != nil {
		log.Fatalf("Failed to initialize event discovery: %v", err)
	}

	// Services
	var proposalPublisher pricing.Publisher
	var completionNotifier marketsetup.CompletionNotifier
	if publisher != nil {
		proposalPublisher = publisher
		completionNotifier = publisher
	}

	pricingService := pricing.NewService(
		listingRepo, calendarRepo, eventRepo, proposalRepo,
		proposalPublisher, cfg.Pricing,
	)
	pipeline := marketsetup.NewPipeline(
		listingRepo, eventRepo, searcher,
		redisClient, completionNotifier, cfg.Pricing,
	)
	syncService := syncsvc.NewService(listingRepo, cfg.Sync)

	coordinator := agents.NewCoordinator(pricingService, pipeline, syncService)

	log.Info("Services initialized")

	// HTTP server
	server := api.NewServer(
		api.ServerConfig{
			Port:        cfg.HTTP.Port,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
		},
		api.Handlers{
			Health:      health.New(log, pgClient.DB(), redisClient.Client(), cfg.App.Name, cfg.App.Version),
			Proposals:   handlers.NewProposalsHandler(coordinator, pricingService),
			MarketSetup: handlers.NewMarketSetupHandler(pipeline),
			Sync:        handlers.NewSyncHandler(coordinator),
		},
		log,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	waitForShutdown(server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noopTracker.New()
	}

	tracker, err := sentryTracker.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noopTracker.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
