package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"lattice-hq/hermes/pkg/config"
)

// probeScheduleDisabled is the schedule value that turns the prober off,
// alongside the empty string. Environments cannot express an empty override,
// so the literal word is accepted too.
const probeScheduleDisabled = "none"

// HealthRecorder receives health transitions for metric export.
type HealthRecorder interface {
	SetUpstreamHealthy(healthy bool)
}

// Prober schedules reachability probes against the upstream client and
// tracks consecutive-failure health state. The upstream starts healthy and
// is marked unhealthy only after the configured number of consecutive
// failures, so a single flaky probe does not flip readiness.
type Prober struct {
	client   Client
	cfg      config.ProbeConfig
	cron     *cron.Cron
	logger   *slog.Logger
	recorder HealthRecorder

	mu      sync.RWMutex
	running bool
	health  Health
}

// NewProber creates a prober for the given upstream client. recorder may be
// nil when no metrics sink is wired.
func NewProber(client Client, cfg config.ProbeConfig, logger *slog.Logger, recorder HealthRecorder) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		client:   client,
		cfg:      cfg,
		cron:     cron.New(),
		logger:   logger.With("component", "upstream.prober"),
		recorder: recorder,
		health:   Health{Healthy: true},
	}
}

// Start begins scheduled probing and runs one probe immediately so that
// readiness reflects reality before the first tick. A disabled schedule
// leaves the upstream permanently healthy.
func (p *Prober) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	schedule := p.cfg.Schedule
	if schedule == "" || schedule == probeScheduleDisabled {
		p.logger.Info("upstream probe disabled")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}

	if _, err := p.cron.AddFunc(schedule, func() {
		p.runProbe(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule upstream probe: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("upstream prober started",
		"schedule", schedule,
		"failure_threshold", p.cfg.FailureThreshold,
	)

	go p.runProbe(ctx)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// runProbe executes a single probe cycle and updates health state.
func (p *Prober) runProbe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := p.client.Probe(probeCtx)
	latency := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			// Shutting down; the aborted probe is not a failure.
			return
		}
		p.recordFailure(err)
		p.logger.Warn("upstream probe failed",
			"error", err,
			"latency", latency,
			"consecutive_failures", p.ConsecutiveFailures(),
		)
		return
	}

	p.recordSuccess()
	p.logger.Debug("upstream probe passed", "latency", latency)
}

// recordFailure counts a failed probe and flips health at the threshold.
func (p *Prober) recordFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.health.LastCheck = time.Now()
	p.health.LastError = err
	p.health.ConsecutiveFailures++

	if p.health.Healthy && p.health.ConsecutiveFailures >= p.cfg.FailureThreshold {
		p.health.Healthy = false
		p.logger.Warn("upstream marked unhealthy",
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
		if p.recorder != nil {
			p.recorder.SetUpstreamHealthy(false)
		}
	}
}

// recordSuccess resets the failure count and restores health.
func (p *Prober) recordSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()

	recovered := !p.health.Healthy || p.health.ConsecutiveFailures > 0

	p.health.LastCheck = time.Now()
	p.health.LastError = nil
	p.health.ConsecutiveFailures = 0

	if !p.health.Healthy {
		p.health.Healthy = true
		if p.recorder != nil {
			p.recorder.SetUpstreamHealthy(true)
		}
	}
	if recovered {
		p.logger.Info("upstream marked healthy")
	}
}

// Healthy reports whether the upstream passed its recent probes.
func (p *Prober) Healthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health.Healthy
}

// ConsecutiveFailures returns the current failure streak.
func (p *Prober) ConsecutiveFailures() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health.ConsecutiveFailures
}

// Status returns a snapshot of the probe state.
func (p *Prober) Status() Health {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// Stop halts scheduled probing and waits for a running probe callback to
// finish.
func (p *Prober) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		stopCtx := p.cron.Stop()
		<-stopCtx.Done()
		p.running = false
		p.logger.Info("upstream prober stopped")
	}
}
