package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// OrchestratorConfig holds configuration for the orchestrator.
type OrchestratorConfig struct {
	Registry *Registry
	Prober   *Prober
	Logger   zerolog.Logger

	// DefaultMaxRetries is the per-provider retry budget used when a request
	// does not specify one. Default: 3.
	DefaultMaxRetries int

	// BackoffUnit is the base of the exponential backoff between retries of
	// the same provider (1x, 2x, 4x, ...). Default: 1s.
	BackoffUnit time.Duration

	// SweepStaleAfter triggers a synchronous health sweep before routing when
	// the last sweep is older than this. Default: 5m.
	SweepStaleAfter time.Duration

	// SweepCeiling bounds the pre-routing sweep so it never becomes the
	// dominant latency contributor of a user-facing request. Default: 6s.
	SweepCeiling time.Duration
}

// ServiceStatus is a read-only diagnostic snapshot for operations endpoints.
type ServiceStatus struct {
	Providers     []HealthSnapshot `json:"providers"`
	EligibleCount int              `json:"eligibleCount"`
	TotalCount    int              `json:"totalCount"`
	LastSweepAt   time.Time        `json:"lastSweepAt"`
}

// Orchestrator produces one successful generation result per request, or a
// terminal failure, by trying providers in registry order with bounded
// retries. It is safe for concurrent use: each call runs its own sequential
// provider/attempt loop and the per-provider trackers are the only shared
// state.
type Orchestrator struct {
	registry        *Registry
	prober          *Prober
	logger          zerolog.Logger
	maxRetries      int
	backoffUnit     time.Duration
	sweepStaleAfter time.Duration
	sweepCeiling    time.Duration
}

// NewOrchestrator creates an orchestrator over the given registry and prober.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	maxRetries := cfg.DefaultMaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoffUnit := cfg.BackoffUnit
	if backoffUnit == 0 {
		backoffUnit = time.Second
	}
	staleAfter := cfg.SweepStaleAfter
	if staleAfter == 0 {
		staleAfter = 5 * time.Minute
	}
	ceiling := cfg.SweepCeiling
	if ceiling == 0 {
		ceiling = 6 * time.Second
	}

	return &Orchestrator{
		registry:        cfg.Registry,
		prober:          cfg.Prober,
		logger:          cfg.Logger,
		maxRetries:      maxRetries,
		backoffUnit:     backoffUnit,
		sweepStaleAfter: staleAfter,
		sweepCeiling:    ceiling,
	}
}

// Generate routes a request through the fallback chain: eligible providers in
// registry order, up to the retry budget per provider, exponential backoff
// between attempts on the same provider and none between providers. The first
// success wins. Every attempt outcome is recorded in the provider's tracker;
// eligibility is evaluated once per request, so a provider pushed to
// Unavailable by this very call still finishes its started retry budget.
func (o *Orchestrator) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("message must not be empty")
	}

	o.sweepIfStale(ctx)

	eligible := o.registry.Eligible()
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAllProvidersUnavailable, o.lastKnownError())
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = o.maxRetries
	}

	var lastErr error
	for _, client := range eligible {
		result, err := o.tryProvider(ctx, client, req, maxRetries)
		if err == nil {
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("generation aborted: %w", ctxErr)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: last error: %v", ErrAllProvidersFailed, lastErr)
}

// tryProvider runs one provider's retry budget and returns its first success
// or the last attempt error.
func (o *Orchestrator) tryProvider(ctx context.Context, client Client, req GenerationRequest, maxRetries int) (*GenerationResult, error) {
	tracker := o.registry.Tracker(client.Name())

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = o.backoffUnit
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = o.backoffUnit << 10
	bo.MaxElapsedTime = 0
	bo.Reset()

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		start := time.Now()
		result, err := client.Generate(ctx, req)
		latency := time.Since(start)

		if tracker != nil {
			tracker.Record(err == nil, latency, err)
		}

		event := o.logger.Debug().
			Str("provider", client.Name()).
			Int("attempt", attempt).
			Dur("latency", latency)
		if err == nil {
			event.Msg("generation attempt succeeded")
			result.Latency = latency
			return result, nil
		}
		event.Err(err).Msg("generation attempt failed")
		lastErr = err

		if ctx.Err() != nil {
			return nil, lastErr
		}

		// Back off before the next attempt on this provider only; moving to
		// the next provider happens immediately.
		if attempt < maxRetries {
			if err := sleepContext(ctx, bo.NextBackOff()); err != nil {
				return nil, lastErr
			}
		}
	}

	return nil, lastErr
}

// ServiceStatus returns a read-only snapshot of provider health for the
// operations endpoint.
func (o *Orchestrator) ServiceStatus() ServiceStatus {
	snaps := o.registry.Snapshots()

	eligible := 0
	for _, s := range snaps {
		if s.State.Eligible() {
			eligible++
		}
	}

	var lastSweep time.Time
	if o.prober != nil {
		lastSweep = o.prober.LastSweep()
	}

	return ServiceStatus{
		Providers:     snaps,
		EligibleCount: eligible,
		TotalCount:    len(snaps),
		LastSweepAt:   lastSweep,
	}
}

// sweepIfStale runs a bounded synchronous health sweep when the last full
// sweep is older than the configured staleness window.
func (o *Orchestrator) sweepIfStale(ctx context.Context) {
	if o.prober == nil {
		return
	}
	if time.Since(o.prober.LastSweep()) < o.sweepStaleAfter {
		return
	}

	sweepCtx, cancel := context.WithTimeout(ctx, o.sweepCeiling)
	defer cancel()

	o.logger.Debug().Msg("provider health is stale, sweeping before routing")
	o.prober.Sweep(sweepCtx)
}

// lastKnownError surfaces the most recent tracker error for diagnostics on
// the all-unavailable path.
func (o *Orchestrator) lastKnownError() string {
	var latest time.Time
	msg := "no providers configured"
	for _, s := range o.registry.Snapshots() {
		msg = "all providers unhealthy"
		if s.LastError != "" && s.LastCheckedAt.After(latest) {
			latest = s.LastCheckedAt
			msg = s.LastError
		}
	}
	return msg
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
