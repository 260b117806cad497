package assistant

import (
	"sync"
	"time"
)

// HealthState classifies a provider's availability for routing.
type HealthState string

const (
	// StateUnknown is the initial state before any observation.
	StateUnknown HealthState = "unknown"

	// StateHealthy means the provider is performing well and is preferred.
	StateHealthy HealthState = "healthy"

	// StateDegraded means the provider is usable but suspect.
	StateDegraded HealthState = "degraded"

	// StateUnavailable means the provider is excluded from routing.
	StateUnavailable HealthState = "unavailable"
)

// Thresholds for the health state machine.
const (
	// ewmaAlpha is the weight of the newest outcome in the success rate.
	ewmaAlpha = 0.1

	// healthyRate is the success rate above which a provider is Healthy.
	healthyRate = 0.8

	// degradedRate is the success rate above which a provider is Degraded.
	degradedRate = 0.5

	// failureTrip is the consecutive-failure count that forces Unavailable
	// regardless of historical success rate.
	failureTrip = 3
)

// HealthSnapshot is an immutable copy of a tracker's state.
type HealthSnapshot struct {
	Provider            string      `json:"provider"`
	State               HealthState `json:"state"`
	SuccessRate         float64     `json:"successRate"`
	ConsecutiveFailures int         `json:"consecutiveFailures"`
	TotalErrors         int64       `json:"totalErrors"`
	LastLatency         time.Duration `json:"lastLatencyMs"`
	LastError           string      `json:"lastError,omitempty"`
	LastCheckedAt       time.Time   `json:"lastCheckedAt"`
}

// Eligible reports whether the state permits routing a new request.
func (s HealthState) Eligible() bool {
	return s == StateHealthy || s == StateDegraded
}

// HealthTracker holds the mutable health state for one provider. It is shared
// by every concurrent request touching that provider plus the background
// prober, so all mutation happens under a single mutex. State is only ever
// derived by the transition functions below, never set directly.
type HealthTracker struct {
	mu sync.Mutex

	provider            string
	state               HealthState
	successRate         float64
	consecutiveFailures int
	totalErrors         int64
	lastLatency         time.Duration
	lastError           string
	lastCheckedAt       time.Time
	observed            bool
}

// NewHealthTracker creates a tracker in the Unknown state.
func NewHealthTracker(provider string) *HealthTracker {
	return &HealthTracker{
		provider: provider,
		state:    StateUnknown,
	}
}

// Record applies one generation-attempt outcome.
//
// The success rate is an EWMA (rate = 0.9*rate + 0.1*outcome, clamped to
// [0,1]) giving long-run trend sensitivity, while the consecutive-failure
// counter gives fast protection against a provider that has just gone down:
// three failures in a row force Unavailable regardless of history. A single
// failure against a good history leaves the state unchanged so one-off errors
// do not cause flapping.
func (t *HealthTracker) Record(success bool, latency time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.observe(success, latency, err)

	if success {
		t.state = t.classifyByRate()
		return
	}

	switch {
	case t.consecutiveFailures >= failureTrip:
		t.state = StateUnavailable
	case t.successRate < degradedRate:
		t.state = StateDegraded
	default:
		// Hysteresis: keep the current state on an isolated failure.
	}
}

// RecordProbe applies one health-probe outcome. It runs the same transition
// function as Record with two probe-specific overrides: a clean probe promotes
// Unavailable/Unknown directly to Healthy (fast recovery path), and a failed
// probe demotes Healthy to Degraded, since probes are not retried and one bad
// probe is enough to flag suspicion without marking the provider fully out.
func (t *HealthTracker) RecordProbe(success bool, latency time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.state
	t.observe(success, latency, err)

	if success {
		if prev == StateUnavailable || prev == StateUnknown {
			t.state = StateHealthy
			return
		}
		t.state = t.classifyByRate()
		return
	}

	switch {
	case t.consecutiveFailures >= failureTrip:
		t.state = StateUnavailable
	case prev == StateHealthy:
		t.state = StateDegraded
	case t.successRate < degradedRate:
		t.state = StateDegraded
	}
}

// State returns the current routing state.
func (t *HealthTracker) State() HealthState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Snapshot returns an immutable copy of the tracker's state.
func (t *HealthTracker) Snapshot() HealthSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return HealthSnapshot{
		Provider:            t.provider,
		State:               t.state,
		SuccessRate:         t.successRate,
		ConsecutiveFailures: t.consecutiveFailures,
		TotalErrors:         t.totalErrors,
		LastLatency:         t.lastLatency,
		LastError:           t.lastError,
		LastCheckedAt:       t.lastCheckedAt,
	}
}

// observe updates the EWMA and counters for one outcome. Must hold mu.
func (t *HealthTracker) observe(success bool, latency time.Duration, err error) {
	outcome := 0.0
	if success {
		outcome = 1.0
	}

	if !t.observed {
		// Seed the average with the first observation instead of the zero
		// value, so a provider is not born at rate 0.
		t.successRate = outcome
		t.observed = true
	} else {
		t.successRate = (1-ewmaAlpha)*t.successRate + ewmaAlpha*outcome
	}
	t.successRate = clamp01(t.successRate)

	if success {
		t.consecutiveFailures = 0
		t.lastError = ""
	} else {
		t.consecutiveFailures++
		t.totalErrors++
		if err != nil {
			t.lastError = err.Error()
		}
	}

	t.lastLatency = latency
	t.lastCheckedAt = time.Now()
}

// classifyByRate maps the current success rate to a state. Must hold mu.
func (t *HealthTracker) classifyByRate() HealthState {
	switch {
	case t.successRate > healthyRate:
		return StateHealthy
	case t.successRate > degradedRate:
		return StateDegraded
	default:
		return StateUnavailable
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
