package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
)

// AggregatorHooks receives observations from a collection run. Fields may be nil.
type AggregatorHooks struct {
	OnTarget func(target model.Target, faults int, latency time.Duration)
}

// Aggregator fetches and extracts every target concurrently.
type Aggregator struct {
	fetcher        ports.PageFetcher
	extractor      ports.FieldExtractor
	locale         model.Locale
	logger         ports.Logger
	maxConcurrency int
	hooks          AggregatorHooks
}

// NewAggregator constructs an Aggregator. maxConcurrency <= 0 runs every target at once.
func NewAggregator(
	fetcher ports.PageFetcher,
	extractor ports.FieldExtractor,
	locale model.Locale,
	logger ports.Logger,
	maxConcurrency int,
	hooks AggregatorHooks,
) *Aggregator {
	return &Aggregator{
		fetcher:        fetcher,
		extractor:      extractor,
		locale:         locale,
		logger:         logger,
		maxConcurrency: maxConcurrency,
		hooks:          hooks,
	}
}

// Aggregate collects one TargetResult per target. The report always has
// len(targets) entries in input order; failed targets carry fault values.
func (a *Aggregator) Aggregate(ctx context.Context, targets []model.Target) model.Report {
	ctx, span := otel.Tracer("solar-relay/usecase").Start(ctx, "relay.Aggregate")
	defer span.End()
	span.SetAttributes(attribute.Int("relay.targets", len(targets)))

	results := make([]model.TargetResult, len(targets))

	var g errgroup.Group
	if limit := a.maxConcurrency; limit > 0 && limit < len(targets) {
		g.SetLimit(limit)
	}
	for i, target := range targets {
		g.Go(func() error {
			// each task owns results[i]
			results[i] = a.collect(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	return model.Report{Results: results}
}

func (a *Aggregator) collect(ctx context.Context, target model.Target) (result model.TargetResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			a.logger.Error(ctx, "target collection panic",
				"correlation_id", correlationID,
				"url", target.URL,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			result = a.faulted(target, fmt.Errorf("internal error (correlation_id: %s)", correlationID))
		}
		if a.hooks.OnTarget != nil {
			a.hooks.OnTarget(target, result.Faults(), time.Since(start))
		}
	}()

	body, err := a.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		a.logger.Error(ctx, "failed to fetch target", "target", target.Name, "url", target.URL, "error", err)
		return a.faulted(target, err)
	}

	doc, err := a.extractor.Parse(body)
	if err != nil {
		a.logger.Error(ctx, "failed to parse target", "target", target.Name, "url", target.URL, "error", err)
		return a.faulted(target, err)
	}

	fields := a.extractor.Extract(doc, target.ElementTag(), target.Fields)
	result = model.TargetResult{Target: target, Fields: fields}
	if missing := result.Faults(); missing > 0 {
		a.logger.Warn(ctx, "fields missing from target", "target", target.Name, "missing", missing)
	}
	a.logger.Debug(ctx, "collected target", "target", target.Name, "duration", time.Since(start))
	return result
}

// faulted maps every field of target to a fault string describing err.
func (a *Aggregator) faulted(target model.Target, err error) model.TargetResult {
	text := a.locale.FetchFaultText(err)
	fields := make([]model.FieldValue, 0, len(target.Fields))
	for _, id := range target.Fields {
		fields = append(fields, model.FieldValue{ID: id, Value: text, Fault: true})
	}
	return model.TargetResult{Target: target, Fields: fields}
}
