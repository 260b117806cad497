package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/caremate/caremate/internal/assistant"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	prober           *assistant.Prober
	monitor          *MonitorJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Prober           *assistant.Prober
	Monitor          *MonitorJob
	Logger           zerolog.Logger
}

// JobMessage represents a monitoring job message.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		prober:           cfg.Prober,
		monitor:          cfg.Monitor,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	// Parse message.
	var jobMsg JobMessage
	if err := json.Unmarshal(msg.Data, &jobMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	// Handle based on job type.
	var err error
	switch jobMsg.JobType {
	case "health_sweep":
		err = h.handleHealthSweep(ctx)
	case "status_report":
		err = h.handleStatusReport(ctx)
	default:
		logger.Warn().Str("job_type", jobMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", jobMsg.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleHealthSweep(ctx context.Context) error {
	h.logger.Info().Msg("starting on-demand health sweep")

	h.prober.Sweep(ctx)

	summary := h.monitor.Summary()
	h.logger.Info().
		Int("total", summary.Total).
		Int("eligible", summary.Eligible).
		Msg("health sweep completed")

	// A fleet with no routable provider is worth a redelivery so the next
	// sweep runs soon.
	if summary.Eligible == 0 && summary.Total > 0 {
		return fmt.Errorf("no eligible providers after sweep: 0/%d", summary.Total)
	}

	return nil
}

func (h *PubSubHandler) handleStatusReport(_ context.Context) error {
	summary := h.monitor.Summary()
	metrics := h.monitor.GetMetrics()

	event := h.logger.Info().
		Int("total", summary.Total).
		Int("eligible", summary.Eligible).
		Int64("transitions", metrics.TotalTransitions).
		Int64("degradations", metrics.Degradations).
		Int64("recoveries", metrics.Recoveries)
	for state, count := range summary.ByState {
		event = event.Int(string(state), count)
	}
	event.Msg("provider fleet status")

	return nil
}
