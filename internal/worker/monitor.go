// Package worker provides background monitoring jobs for CareMate.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/caremate/caremate/internal/assistant"
	"github.com/caremate/caremate/internal/notify"
)

// dispatchTimeout bounds outbound notification delivery for one transition.
const dispatchTimeout = 10 * time.Second

// MonitorJob observes provider health state transitions and forwards them to
// the notification channels. It is wired as the prober's OnStateChange hook.
type MonitorJob struct {
	registry   *assistant.Registry
	dispatcher *notify.Dispatcher
	kinds      map[string]assistant.Kind
	logger     zerolog.Logger

	metrics *MonitorMetrics
}

// MonitorMetrics tracks monitoring statistics.
type MonitorMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalTransitions int64
	Degradations     int64
	Recoveries       int64

	// Timings
	LastTransitionAt time.Time
}

// MonitorJobConfig holds configuration for creating a MonitorJob.
type MonitorJobConfig struct {
	Registry *assistant.Registry
	Logger   zerolog.Logger

	// Dispatcher may be nil; transitions are then only logged.
	Dispatcher *notify.Dispatcher
}

// NewMonitorJob creates a new monitor job.
func NewMonitorJob(cfg MonitorJobConfig) *MonitorJob {
	kinds := make(map[string]assistant.Kind)
	if cfg.Registry != nil {
		for _, c := range cfg.Registry.Clients() {
			kinds[c.Name()] = c.Kind()
		}
	}

	return &MonitorJob{
		registry:   cfg.Registry,
		dispatcher: cfg.Dispatcher,
		kinds:      kinds,
		logger:     cfg.Logger,
		metrics:    &MonitorMetrics{},
	}
}

// HandleStateChange records a provider transition and dispatches it to the
// notification channels. Satisfies assistant.StateChangeFunc; called from the
// prober's sweep goroutines.
func (j *MonitorJob) HandleStateChange(provider string, from, to assistant.HealthState) {
	occurredAt := time.Now()

	j.logger.Info().
		Str("provider", provider).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("provider state changed")

	j.updateMetrics(from, to, occurredAt)

	if j.dispatcher == nil {
		return
	}

	// The prober hook carries no context; delivery gets its own deadline so
	// a slow channel cannot stall the sweep path.
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	j.dispatcher.Dispatch(ctx, notify.Event{
		Provider:   provider,
		Kind:       j.kinds[provider],
		From:       from,
		To:         to,
		OccurredAt: occurredAt,
	})
}

// FleetSummary describes the provider fleet at a point in time.
type FleetSummary struct {
	Total    int
	Eligible int
	ByState  map[assistant.HealthState]int
}

// Summary reports the current fleet composition from the registry.
func (j *MonitorJob) Summary() FleetSummary {
	summary := FleetSummary{
		ByState: make(map[assistant.HealthState]int),
	}
	if j.registry == nil {
		return summary
	}

	for _, snap := range j.registry.Snapshots() {
		summary.Total++
		summary.ByState[snap.State]++
		if snap.State.Eligible() {
			summary.Eligible++
		}
	}
	return summary
}

func (j *MonitorJob) updateMetrics(from, to assistant.HealthState, at time.Time) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalTransitions++
	j.metrics.LastTransitionAt = at

	switch {
	case from.Eligible() && !to.Eligible():
		j.metrics.Degradations++
	case !from.Eligible() && to.Eligible():
		j.metrics.Recoveries++
	}
}

// GetMetrics returns a copy of the current metrics.
func (j *MonitorJob) GetMetrics() MonitorMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return MonitorMetrics{
		TotalTransitions: j.metrics.TotalTransitions,
		Degradations:     j.metrics.Degradations,
		Recoveries:       j.metrics.Recoveries,
		LastTransitionAt: j.metrics.LastTransitionAt,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *MonitorJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_transitions":  m.TotalTransitions,
		"degradations":       m.Degradations,
		"recoveries":         m.Recoveries,
		"last_transition_at": m.LastTransitionAt,
	}
}
