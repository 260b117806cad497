package assistant_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caremate/caremate/internal/assistant"
)

func TestProber_SweepProbesAllProviders(t *testing.T) {
	primary := &stubClient{name: "openai", kind: assistant.KindPrimary}
	secondary := &stubClient{name: "anthropic", kind: assistant.KindSecondary}
	secondary.healthFn = func() bool { return false }
	registry := assistant.NewRegistry(primary, secondary)

	prober := assistant.NewProber(assistant.ProberConfig{
		Registry:     registry,
		Logger:       zerolog.Nop(),
		ProbeTimeout: time.Second,
	})

	prober.Sweep(context.Background())

	assert.Equal(t, 1, primary.probeCount())
	assert.Equal(t, 1, secondary.probeCount())
	assert.Equal(t, assistant.StateHealthy, registry.Tracker("openai").State())
	// One failed probe from Unknown leaves the provider ineligible but not
	// tripped to Unavailable.
	assert.NotEqual(t, assistant.StateHealthy, registry.Tracker("anthropic").State())
	assert.False(t, prober.LastSweep().IsZero())
}

func TestProber_SweepRunsProbesConcurrently(t *testing.T) {
	delay := 50 * time.Millisecond
	slow := func() bool {
		time.Sleep(delay)
		return true
	}

	clients := make([]assistant.Client, 0, 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		clients = append(clients, &stubClient{name: name, healthFn: slow})
	}
	registry := assistant.NewRegistry(clients...)

	prober := assistant.NewProber(assistant.ProberConfig{
		Registry:     registry,
		Logger:       zerolog.Nop(),
		ProbeTimeout: time.Second,
	})

	start := time.Now()
	prober.Sweep(context.Background())
	elapsed := time.Since(start)

	// Four sequential probes would take 4x the delay.
	assert.Less(t, elapsed, 3*delay, "sweep must probe providers in parallel")
}

func TestProber_StateChangeCallback(t *testing.T) {
	primary := &stubClient{name: "openai", kind: assistant.KindPrimary}
	registry := assistant.NewRegistry(primary)

	var mu sync.Mutex
	type change struct {
		provider string
		from, to assistant.HealthState
	}
	var changes []change

	prober := assistant.NewProber(assistant.ProberConfig{
		Registry:     registry,
		Logger:       zerolog.Nop(),
		ProbeTimeout: time.Second,
		OnStateChange: func(provider string, from, to assistant.HealthState) {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, change{provider, from, to})
		},
	})

	prober.Sweep(context.Background())
	// Second clean probe: no transition, no callback.
	prober.Sweep(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 1)
	assert.Equal(t, "openai", changes[0].provider)
	assert.Equal(t, assistant.StateUnknown, changes[0].from)
	assert.Equal(t, assistant.StateHealthy, changes[0].to)
}

func TestProber_StartStop(t *testing.T) {
	primary := &stubClient{name: "openai", kind: assistant.KindPrimary}
	registry := assistant.NewRegistry(primary)

	prober := assistant.NewProber(assistant.ProberConfig{
		Registry:     registry,
		Logger:       zerolog.Nop(),
		Interval:     10 * time.Millisecond,
		ProbeTimeout: time.Second,
	})

	prober.Start(context.Background())
	defer prober.Stop()

	require.Eventually(t, func() bool {
		return primary.probeCount() >= 2
	}, time.Second, 5*time.Millisecond)

	prober.Stop()
	count := primary.probeCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, count, primary.probeCount(), "no probes after Stop")
}
