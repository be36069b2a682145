package usecase

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
)

var (
	// ErrCycleInProgress is returned when another cycle holds the guard.
	ErrCycleInProgress = errors.New("relay cycle already in progress")
	// ErrCycleThrottled is returned when cycles are triggered faster than the minimum interval.
	ErrCycleThrottled = errors.New("relay cycle triggered too soon")
)

// RelayConfig controls what a cycle collects and how it is rendered.
type RelayConfig struct {
	Targets     []model.Target
	Labels      map[string]string
	Mode        MessageMode
	MaxParts    int
	MinInterval time.Duration
}

// RelayHooks receives cycle observations. Fields may be nil.
type RelayHooks struct {
	OnCycle   func(duration time.Duration, status model.DeliveryStatus)
	OnSkipped func(reason string)
}

// CycleResult describes one completed cycle.
type CycleResult struct {
	Report   model.Report
	Message  model.OutboundMessage
	Delivery model.DeliveryResult
	Duration time.Duration
}

// Relay runs collect, format and deliver as one guarded cycle.
type Relay struct {
	aggregator *Aggregator
	notifier   ports.Notifier
	lock       ports.CycleLock
	limiter    *rate.Limiter
	logger     ports.Logger
	cfg        RelayConfig
	hooks      RelayHooks
}

// NewRelay constructs a Relay.
func NewRelay(
	aggregator *Aggregator,
	notifier ports.Notifier,
	lock ports.CycleLock,
	logger ports.Logger,
	cfg RelayConfig,
	hooks RelayHooks,
) *Relay {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeCombined
	}
	return &Relay{
		aggregator: aggregator,
		notifier:   notifier,
		lock:       lock,
		limiter:    limiter,
		logger:     logger,
		cfg:        cfg,
		hooks:      hooks,
	}
}

// Targets returns the configured targets.
func (r *Relay) Targets() []model.Target {
	return r.cfg.Targets
}

// Labels returns the label map used for rendering.
func (r *Relay) Labels() map[string]string {
	return r.cfg.Labels
}

// Collect aggregates every target without delivering anything.
func (r *Relay) Collect(ctx context.Context) model.Report {
	return r.aggregator.Aggregate(ctx, r.cfg.Targets)
}

// Run executes one cycle. Delivery failures are logged and reported in the
// result, not returned as errors; the only errors are ErrCycleInProgress and
// ErrCycleThrottled, in which case nothing was fetched or sent.
func (r *Relay) Run(ctx context.Context) (CycleResult, error) {
	release, err := r.acquire(ctx)
	if err != nil {
		return CycleResult{}, err
	}
	defer release()

	ctx, span := otel.Tracer("solar-relay/usecase").Start(ctx, "relay.Run")
	defer span.End()

	start := time.Now()
	r.logger.Info(ctx, "starting relay cycle", "targets", len(r.cfg.Targets))

	report := r.Collect(ctx)
	msg := BuildMessage(report, r.cfg.Labels, r.cfg.Mode, r.cfg.MaxParts)
	delivery := r.notifier.Deliver(ctx, msg)

	result := CycleResult{
		Report:   report,
		Message:  msg,
		Delivery: delivery,
		Duration: time.Since(start),
	}
	span.SetAttributes(attribute.String("relay.delivery", string(delivery.Status)))

	if r.hooks.OnCycle != nil {
		r.hooks.OnCycle(result.Duration, delivery.Status)
	}
	if !delivery.OK() {
		r.logger.Error(ctx, "relay cycle delivery failed",
			"status", delivery.StatusCode,
			"body", delivery.Body,
			"error", delivery.Err,
		)
		return result, nil
	}

	r.logger.Info(ctx, "relay cycle completed", "duration", result.Duration)
	return result, nil
}

func (r *Relay) acquire(ctx context.Context) (func(), error) {
	release, ok, err := r.lock.TryLock(ctx)
	if err != nil {
		// lock errors fail open
		r.logger.Warn(ctx, "cycle lock unavailable, running unguarded", "error", err)
		release, ok = func() {}, true
	}
	if !ok {
		r.skipped(ctx, "in_progress")
		return nil, ErrCycleInProgress
	}
	if !r.limiter.Allow() {
		release()
		r.skipped(ctx, "throttled")
		return nil, ErrCycleThrottled
	}
	return release, nil
}

func (r *Relay) skipped(ctx context.Context, reason string) {
	r.logger.Warn(ctx, "relay cycle skipped", "reason", reason)
	if r.hooks.OnSkipped != nil {
		r.hooks.OnSkipped(reason)
	}
}
