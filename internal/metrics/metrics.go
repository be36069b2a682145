package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"solar-relay/internal/adapter/scrape"
	"solar-relay/internal/domain/model"
	"solar-relay/internal/usecase"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	FetchAttempts *prometheus.CounterVec
	FetchFaults   *prometheus.CounterVec
	FieldsMissing prometheus.Counter
	TargetLatency *prometheus.HistogramVec
	Deliveries    *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	CyclesSkipped *prometheus.CounterVec
}

// New registers all instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solar_fetch_attempts_total",
			Help: "Status page fetch attempts by outcome.",
		}, []string{"outcome"}),

		FetchFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solar_fetch_faults_total",
			Help: "Fetches that failed after retries, by fault kind.",
		}, []string{"kind"}),

		FieldsMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solar_fields_missing_total",
			Help: "Fields rendered as fault strings.",
		}),

		TargetLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solar_target_collect_seconds",
			Help:    "Time to fetch and extract one target.",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),

		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solar_deliveries_total",
			Help: "Relay cycle deliveries by result.",
		}, []string{"result"}),

		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solar_cycle_duration_seconds",
			Help:    "End-to-end duration of a relay cycle.",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),

		CyclesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solar_cycles_skipped_total",
			Help: "Triggers rejected by the cycle guard, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.FetchAttempts,
		m.FetchFaults,
		m.FieldsMissing,
		m.TargetLatency,
		m.Deliveries,
		m.CycleDuration,
		m.CyclesSkipped,
	)

	return m
}

// FetchHooks returns the observation callbacks for the scrape fetcher.
func (m *Metrics) FetchHooks() scrape.FetchHooks {
	return scrape.FetchHooks{
		OnAttempt: func(outcome string) {
			m.FetchAttempts.WithLabelValues(outcome).Inc()
		},
		OnFault: func(kind model.FetchErrorKind) {
			m.FetchFaults.WithLabelValues(string(kind)).Inc()
		},
	}
}

// AggregatorHooks returns the per-target callbacks for the aggregator.
func (m *Metrics) AggregatorHooks() usecase.AggregatorHooks {
	return usecase.AggregatorHooks{
		OnTarget: func(target model.Target, faults int, latency time.Duration) {
			m.FieldsMissing.Add(float64(faults))
			m.TargetLatency.WithLabelValues(target.Name).Observe(latency.Seconds())
		},
	}
}

// RelayHooks returns the cycle callbacks for the relay.
func (m *Metrics) RelayHooks() usecase.RelayHooks {
	return usecase.RelayHooks{
		OnCycle: func(d time.Duration, status model.DeliveryStatus) {
			m.CycleDuration.Observe(d.Seconds())
			m.Deliveries.WithLabelValues(string(status)).Inc()
		},
		OnSkipped: func(reason string) {
			m.CyclesSkipped.WithLabelValues(reason).Inc()
		},
	}
}
