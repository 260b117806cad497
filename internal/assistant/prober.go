package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// StateChangeFunc is invoked after a probe moves a provider between health
// states. Called from the prober's sweep goroutines; implementations must be
// safe for concurrent use.
type StateChangeFunc func(provider string, from, to HealthState)

// ProberConfig holds configuration for the periodic health prober.
type ProberConfig struct {
	Registry *Registry
	Logger   zerolog.Logger

	// Interval between health sweeps. Default: 60s.
	Interval time.Duration

	// ProbeTimeout bounds each individual provider probe. Default: 5s.
	ProbeTimeout time.Duration

	// OnStateChange is called when a probe transitions a provider's state.
	OnStateChange StateChangeFunc
}

// Prober periodically probes every registered provider and feeds the results
// into the same health-tracker path used by request-driven outcomes. Probe
// failures are data, not faults: they adjust routing state and never stop the
// loop.
type Prober struct {
	registry      *Registry
	logger        zerolog.Logger
	interval      time.Duration
	probeTimeout  time.Duration
	onStateChange StateChangeFunc

	mu        sync.Mutex
	lastSweep time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewProber creates a prober. Start must be called to begin the periodic loop;
// Sweep can also be invoked directly for an on-demand sweep.
func NewProber(cfg ProberConfig) *Prober {
	interval := cfg.Interval
	if interval == 0 {
		interval = 60 * time.Second
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout == 0 {
		probeTimeout = 5 * time.Second
	}

	return &Prober{
		registry:      cfg.Registry,
		logger:        cfg.Logger,
		interval:      interval,
		probeTimeout:  probeTimeout,
		onStateChange: cfg.OnStateChange,
	}
}

// Start launches the periodic probe loop. It returns immediately; the loop
// runs until Stop is called or ctx is cancelled.
func (p *Prober) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				p.Sweep(loopCtx)
			}
		}
	}()
}

// Stop terminates the periodic loop and waits for it to exit.
func (p *Prober) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Sweep probes all providers concurrently, each bounded by the probe timeout,
// so total sweep time stays near one probe timeout regardless of provider
// count. Safe to call from multiple goroutines.
func (p *Prober) Sweep(ctx context.Context) {
	start := time.Now()

	var wg sync.WaitGroup
	for _, client := range p.registry.Clients() {
		wg.Add(1)
		go func(c Client) {
			defer wg.Done()
			p.probe(ctx, c)
		}(client)
	}
	wg.Wait()

	p.mu.Lock()
	p.lastSweep = time.Now()
	p.mu.Unlock()

	p.logger.Debug().
		Dur("duration", time.Since(start)).
		Int("providers", p.registry.Len()).
		Msg("health sweep completed")
}

// LastSweep returns when the most recent sweep finished, zero if none has run.
func (p *Prober) LastSweep() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSweep
}

func (p *Prober) probe(ctx context.Context, c Client) {
	tracker := p.registry.Tracker(c.Name())
	if tracker == nil {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	before := tracker.State()
	start := time.Now()
	ok := c.HealthCheck(probeCtx)
	latency := time.Since(start)

	var probeErr error
	if !ok {
		probeErr = NewProviderError(c.Name(), context.DeadlineExceeded)
		if probeCtx.Err() == nil {
			probeErr = NewProviderError(c.Name(), errHealthCheckFailed)
		}
	}
	tracker.RecordProbe(ok, latency, probeErr)
	after := tracker.State()

	p.logger.Debug().
		Str("provider", c.Name()).
		Bool("ok", ok).
		Dur("latency", latency).
		Str("state", string(after)).
		Msg("provider probed")

	if before != after && p.onStateChange != nil {
		p.onStateChange(c.Name(), before, after)
	}
}

var errHealthCheckFailed = errors.New("health check failed")
