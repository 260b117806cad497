// Package main provides the entrypoint for the CareMate API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/caremate/caremate/internal/api"
	"github.com/caremate/caremate/internal/api/handler"
	"github.com/caremate/caremate/internal/api/middleware"
	"github.com/caremate/caremate/internal/assistant"
	"github.com/caremate/caremate/internal/assistant/anthropic"
	"github.com/caremate/caremate/internal/assistant/gemini"
	"github.com/caremate/caremate/internal/assistant/openai"
	"github.com/caremate/caremate/internal/cache"
	"github.com/caremate/caremate/internal/config"
	"github.com/caremate/caremate/internal/consultation"
	"github.com/caremate/caremate/internal/conversation"
	"github.com/caremate/caremate/internal/database"
	"github.com/caremate/caremate/internal/emergency"
	"github.com/caremate/caremate/internal/medication"
	"github.com/caremate/caremate/internal/notify"
	"github.com/caremate/caremate/internal/record"
	"github.com/caremate/caremate/internal/safety"
	"github.com/caremate/caremate/internal/telemetry"
	"github.com/caremate/caremate/internal/user"
	"github.com/caremate/caremate/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "caremate-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CareMate API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize domain repositories and services
	userService := user.NewService(user.NewPostgresRepository(pool))
	recordService := record.NewService(record.NewPostgresRepository(pool))
	medicationService := medication.NewService(medication.NewPostgresRepository(pool))
	conversationService := conversation.NewService(conversation.NewPostgresRepository(pool))
	log.Info().Msg("domain services initialized")

	// Load assistant configuration
	var cfg *config.Config
	if path := os.Getenv("CAREMATE_CONFIG"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load assistant configuration")
	}

	// Build provider clients and registry
	clients, err := buildClients(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build provider clients")
	}
	registry := assistant.NewRegistry(clients...)
	log.Info().Int("providers", registry.Len()).Msg("provider registry initialized")

	// Notification channels for state changes
	var notifiers []notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:    cfg.Notify.WebhookURL,
			Logger: log,
		}))
		log.Info().Msg("webhook notifier initialized")
	}
	if cfg.Notify.PubSubProject != "" && cfg.Notify.PubSubTopic != "" {
		publisher, pubErr := notify.NewPubSubPublisher(ctx, notify.PubSubConfig{
			ProjectID: cfg.Notify.PubSubProject,
			TopicName: cfg.Notify.PubSubTopic,
			Logger:    log,
		})
		if pubErr != nil {
			log.Fatal().Err(pubErr).Msg("failed to initialize pubsub publisher")
		}
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub publisher")
			}
		}()
		notifiers = append(notifiers, publisher)
		log.Info().Str("topic", cfg.Notify.PubSubTopic).Msg("pubsub publisher initialized")
	}
	dispatcher := notify.NewDispatcher(log, notifiers...)

	monitor := worker.NewMonitorJob(worker.MonitorJobConfig{
		Registry:   registry,
		Dispatcher: dispatcher,
		Logger:     log,
	})

	// Prober: one awaited sweep so routing starts with fresh states, then
	// the periodic loop.
	prober := assistant.NewProber(assistant.ProberConfig{
		Registry:      registry,
		Logger:        log,
		Interval:      cfg.Prober.Interval,
		ProbeTimeout:  cfg.Prober.ProbeTimeout,
		OnStateChange: monitor.HandleStateChange,
	})
	prober.Sweep(ctx)
	prober.Start(ctx)
	defer prober.Stop()
	log.Info().Msg("health prober started")

	orchestrator := assistant.NewOrchestrator(assistant.OrchestratorConfig{
		Registry:          registry,
		Prober:            prober,
		Logger:            log,
		DefaultMaxRetries: cfg.Orchestrator.MaxRetries,
		SweepStaleAfter:   cfg.Orchestrator.SweepStaleAfter,
	})

	// Optional Redis response cache
	var responseCache consultation.ResponseCache
	readyChecks := []handler.ReadyCheck{
		{Name: "database", Check: pool.Ping},
	}
	if cfg.Cache.Enabled {
		redisCache := cache.New(cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		})
		defer func() {
			if closeErr := redisCache.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close response cache")
			}
		}()
		responseCache = redisCache
		readyChecks = append(readyChecks, handler.ReadyCheck{Name: "cache", Check: redisCache.Ping})
		log.Info().Str("addr", cfg.Cache.Addr).Msg("response cache initialized")
	}

	consultationService := consultation.NewService(consultation.ServiceConfig{
		Conversations: conversationService,
		Detector:      emergency.NewDetector(),
		Validator:     safety.NewValidator(),
		Generator:     orchestrator,
		Cache:         responseCache,
		Logger:        log,
	})
	log.Info().Msg("consultation service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:             Version,
		BuildTime:           BuildTime,
		Logger:              log,
		ServiceName:         serviceName,
		Metrics:             metrics,
		UserService:         userService,
		ConversationService: conversationService,
		ConsultationService: consultationService,
		RecordService:       recordService,
		MedicationService:   medicationService,
		StatusReporter:      orchestrator,
		ReadyChecks:         readyChecks,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// buildClients turns provider configuration into concrete backend clients.
// The provider name selects the backend implementation.
func buildClients(cfg *config.Config, log zerolog.Logger) ([]assistant.Client, error) {
	clients := make([]assistant.Client, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		switch p.Name {
		case "openai":
			clients = append(clients, openai.NewClient(openai.ClientConfig{
				APIKey:  p.Key(),
				BaseURL: p.BaseURL,
				Model:   p.Model,
				Kind:    assistant.Kind(p.Kind),
				Timeout: p.Timeout,
				Logger:  log,
			}))
		case "anthropic":
			clients = append(clients, anthropic.NewClient(anthropic.ClientConfig{
				APIKey:  p.Key(),
				BaseURL: p.BaseURL,
				Model:   p.Model,
				Kind:    assistant.Kind(p.Kind),
				Timeout: p.Timeout,
				Logger:  log,
			}))
		case "gemini":
			clients = append(clients, gemini.NewClient(gemini.ClientConfig{
				APIKey:  p.Key(),
				BaseURL: p.BaseURL,
				Model:   p.Model,
				Kind:    assistant.Kind(p.Kind),
				Timeout: p.Timeout,
				Logger:  log,
			}))
		default:
			return nil, fmt.Errorf("unknown provider backend %q", p.Name)
		}
	}
	return clients, nil
}
