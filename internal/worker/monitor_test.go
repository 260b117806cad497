package worker_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caremate/caremate/internal/assistant"
	"github.com/caremate/caremate/internal/notify"
	"github.com/caremate/caremate/internal/worker"
)

// fakeClient is a minimal provider whose probe outcome is scriptable.
type fakeClient struct {
	name    string
	kind    assistant.Kind
	healthy bool
}

func (f *fakeClient) Name() string         { return f.name }
func (f *fakeClient) Kind() assistant.Kind { return f.kind }
func (f *fakeClient) Model() string        { return "fake-model" }

func (f *fakeClient) Generate(_ context.Context, _ assistant.GenerationRequest) (*assistant.GenerationResult, error) {
	return &assistant.GenerationResult{Text: "ok", Provider: f.name, Kind: f.kind}, nil
}

func (f *fakeClient) HealthCheck(_ context.Context) bool { return f.healthy }

// captureNotifier records every event it is handed.
type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureNotifier) Notify(_ context.Context, event notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureNotifier) captured() []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notify.Event, len(c.events))
	copy(out, c.events)
	return out
}

func TestMonitorJob_HandleStateChangeDispatches(t *testing.T) {
	logger := zerolog.New(io.Discard)
	registry := assistant.NewRegistry(
		&fakeClient{name: "openai", kind: assistant.KindPrimary, healthy: true},
		&fakeClient{name: "anthropic", kind: assistant.KindSecondary, healthy: true},
	)
	capture := &captureNotifier{}

	job := worker.NewMonitorJob(worker.MonitorJobConfig{
		Registry:   registry,
		Logger:     logger,
		Dispatcher: notify.NewDispatcher(logger, capture),
	})

	job.HandleStateChange("anthropic", assistant.StateHealthy, assistant.StateUnavailable)

	events := capture.captured()
	require.Len(t, events, 1)
	assert.Equal(t, "anthropic", events[0].Provider)
	assert.Equal(t, assistant.KindSecondary, events[0].Kind)
	assert.Equal(t, assistant.StateHealthy, events[0].From)
	assert.Equal(t, assistant.StateUnavailable, events[0].To)
	assert.WithinDuration(t, time.Now(), events[0].OccurredAt, time.Minute)
}

func TestMonitorJob_NilDispatcherOnlyLogs(t *testing.T) {
	job := worker.NewMonitorJob(worker.MonitorJobConfig{
		Registry: assistant.NewRegistry(&fakeClient{name: "openai", kind: assistant.KindPrimary}),
		Logger:   zerolog.New(io.Discard),
	})

	// Must not panic without a dispatcher.
	job.HandleStateChange("openai", assistant.StateHealthy, assistant.StateDegraded)

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalTransitions)
}

func TestMonitorJob_MetricsClassifyTransitions(t *testing.T) {
	job := worker.NewMonitorJob(worker.MonitorJobConfig{
		Logger: zerolog.New(io.Discard),
	})

	job.HandleStateChange("openai", assistant.StateHealthy, assistant.StateUnavailable)
	job.HandleStateChange("openai", assistant.StateUnavailable, assistant.StateDegraded)
	job.HandleStateChange("openai", assistant.StateDegraded, assistant.StateHealthy)

	metrics := job.GetMetrics()
	assert.Equal(t, int64(3), metrics.TotalTransitions)
	assert.Equal(t, int64(1), metrics.Degradations)
	assert.Equal(t, int64(1), metrics.Recoveries)
	assert.False(t, metrics.LastTransitionAt.IsZero())
}

func TestMonitorJob_SummaryCountsFleet(t *testing.T) {
	logger := zerolog.New(io.Discard)
	healthyClient := &fakeClient{name: "openai", kind: assistant.KindPrimary, healthy: true}
	brokenClient := &fakeClient{name: "gemini", kind: assistant.KindTertiary, healthy: false}
	registry := assistant.NewRegistry(healthyClient, brokenClient)

	prober := assistant.NewProber(assistant.ProberConfig{
		Registry:     registry,
		Logger:       logger,
		ProbeTimeout: time.Second,
	})

	// Drive gemini to unavailable via consecutive probe failures.
	for i := 0; i < 3; i++ {
		prober.Sweep(context.Background())
	}

	job := worker.NewMonitorJob(worker.MonitorJobConfig{
		Registry: registry,
		Logger:   logger,
	})

	summary := job.Summary()
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Eligible)
	assert.Equal(t, 1, summary.ByState[assistant.StateHealthy])
	assert.Equal(t, 1, summary.ByState[assistant.StateUnavailable])
}
