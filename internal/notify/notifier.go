// Package notify delivers provider state change events to operational
// channels such as webhooks and Pub/Sub topics.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/caremate/caremate/internal/assistant"
)

// Event describes a provider health state transition.
type Event struct {
	Provider   string                `json:"provider"`
	Kind       assistant.Kind        `json:"kind"`
	From       assistant.HealthState `json:"from"`
	To         assistant.HealthState `json:"to"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// Notifier delivers a single event to one channel.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Dispatcher fans an event out to every configured notifier. Delivery
// failures are logged and do not block the other channels.
type Dispatcher struct {
	notifiers []Notifier
	logger    zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given notifiers.
func NewDispatcher(logger zerolog.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		logger:    logger.With().Str("component", "notify_dispatcher").Logger(),
	}
}

// Dispatch sends the event to all notifiers sequentially. An unreachable
// channel must not prevent the rest from being told about a provider
// outage, so errors are logged rather than returned.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			d.logger.Error().
				Err(err).
				Str("provider", event.Provider).
				Str("from", string(event.From)).
				Str("to", string(event.To)).
				Msg("failed to deliver state change event")
		}
	}
}

// Len reports the number of configured notifiers.
func (d *Dispatcher) Len() int {
	return len(d.notifiers)
}
