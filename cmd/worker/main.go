// Package main provides the entrypoint for the CareMate monitoring worker.
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

	"github.com/caremate/caremate/internal/assistant"
	"github.com/caremate/caremate/internal/assistant/anthropic"
	"github.com/caremate/caremate/internal/assistant/gemini"
	"github.com/caremate/caremate/internal/assistant/openai"
	"github.com/caremate/caremate/internal/config"
	"github.com/caremate/caremate/internal/notify"
	"github.com/caremate/caremate/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "caremate-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CareMate worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load assistant configuration
	var cfg *config.Config
	var err error
	if path := os.Getenv("CAREMATE_CONFIG"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load assistant configuration")
	}

	clients, err := buildClients(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build provider clients")
	}
	registry := assistant.NewRegistry(clients...)
	log.Info().Int("providers", registry.Len()).Msg("provider registry initialized")

	// Notification channels
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

	// Pub/Sub job subscription (optional)
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscriptionName := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscriptionName != "" {
		pubsubHandler, psErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscriptionName,
			Prober:           prober,
			Monitor:          monitor,
			Logger:           log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to initialize pubsub handler")
		}
		defer func() {
			if closeErr := pubsubHandler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub handler")
			}
		}()

		go func() {
			if recvErr := pubsubHandler.Start(ctx); recvErr != nil && ctx.Err() == nil {
				log.Error().Err(recvErr).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub subscription not configured, running prober only")
	}

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// buildClients turns provider configuration into concrete backend clients.
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
