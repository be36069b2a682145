package di

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"solar-relay/internal/adapter/line"
	"solar-relay/internal/adapter/lock"
	"solar-relay/internal/adapter/logging"
	"solar-relay/internal/adapter/scrape"
	"solar-relay/internal/api"
	"solar-relay/internal/api/handler"
	"solar-relay/internal/app"
	"solar-relay/internal/config"
	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
	"solar-relay/internal/metrics"
	"solar-relay/internal/observability"
	"solar-relay/internal/usecase"
)

// Version is reported in traces; set from the CLI build info.
var Version = "dev"

// RelaySet provides everything needed to run a relay cycle.
var RelaySet = wire.NewSet(
	provideLogger,
	provideRegistry,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	metrics.New,
	provideFetcher,
	provideExtractor,
	provideAggregator,
	provideNotifier,
	provideCycleLock,
	provideRelayConfig,
	provideRelay,
)

func provideLogger(cfg *config.Config) (ports.Logger, func(), error) {
	if cfg.LogBackend == "zap" {
		zl, err := logging.NewZapProduction(cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		logger := logging.NewZap(zl)
		return logger, func() { _ = logger.Sync() }, nil
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})
	return logging.New(slog.New(h)), func() {}, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideFetcher(cfg *config.Config, logger ports.Logger, m *metrics.Metrics) ports.PageFetcher {
	return scrape.NewFetcher(scrape.FetcherConfig{
		Timeout:    cfg.FetchTimeout,
		Attempts:   cfg.FetchAttempts,
		RetryDelay: cfg.FetchRetryDelay,
	}, logger, m.FetchHooks())
}

func provideExtractor(cfg *config.Config) ports.FieldExtractor {
	return scrape.NewExtractor(cfg.Locale)
}

func provideAggregator(cfg *config.Config, fetcher ports.PageFetcher, extractor ports.FieldExtractor, logger ports.Logger, m *metrics.Metrics) *usecase.Aggregator {
	return usecase.NewAggregator(fetcher, extractor, cfg.Locale, logger, cfg.MaxConcurrency, m.AggregatorHooks())
}

func provideNotifier(cfg *config.Config, logger ports.Logger) ports.Notifier {
	return line.NewPushClient(cfg.PushURL, cfg.ChannelAccessToken, cfg.RecipientID, cfg.RequestTimeout, logger)
}

func provideCycleLock(cfg *config.Config, logger ports.Logger) (ports.CycleLock, func(), error) {
	if cfg.RedisAddr == "" {
		return lock.NewLocal(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error(context.Background(), "failed to close redis client", "error", err)
		}
	}
	return lock.NewRedis(client, lock.DefaultKey, cfg.LockTTL, logger), cleanup, nil
}

func provideRelayConfig(cfg *config.Config) usecase.RelayConfig {
	return usecase.RelayConfig{
		Targets:     cfg.Targets,
		Labels:      cfg.Locale.Labels,
		Mode:        cfg.MessageMode,
		MaxParts:    line.MaxMessages,
		MinInterval: cfg.TriggerMinInterval,
	}
}

func provideRelay(aggregator *usecase.Aggregator, notifier ports.Notifier, cycleLock ports.CycleLock, logger ports.Logger, relayCfg usecase.RelayConfig, m *metrics.Metrics) *usecase.Relay {
	return usecase.NewRelay(aggregator, notifier, cycleLock, logger, relayCfg, m.RelayHooks())
}

func provideCommands(cfg *config.Config, relay *usecase.Relay, notifier ports.Notifier, logger ports.Logger) *usecase.CommandDispatcher {
	return usecase.NewCommandDispatcher(relay, notifier, cfg.TriggerPhrase, logger)
}

func provideHandlers(cfg *config.Config, relay *usecase.Relay, commands *usecase.CommandDispatcher, logger ports.Logger) api.Handlers {
	labels := cfg.Locale.Labels
	if labels == nil {
		labels = model.LocaleZhTW.Labels
	}
	return api.Handlers{
		Relay:   handler.NewRelayHandler(relay, logger),
		Webhook: handler.NewWebhookHandler(commands, logger),
		View:    handler.NewViewHandler(relay, labels, logger),
		Health:  handler.NewHealthHandler(),
	}
}

func provideHTTPServer(cfg *config.Config, handlers api.Handlers, reg prometheus.Gatherer, logger ports.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers, reg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideTracing(cfg *config.Config) (observability.Shutdown, error) {
	return observability.SetupTracing(context.Background(), observability.TracingConfig{
		ServiceName:    "solar-relay",
		ServiceVersion: Version,
		Endpoint:       cfg.OTLPEndpoint,
	})
}

func provideApp(cfg *config.Config, relay *usecase.Relay, server *http.Server, logger ports.Logger, tracing observability.Shutdown) *app.App {
	a := app.New(relay, server, logger, app.Options{
		Schedule:        cfg.ScheduleCron,
		RunOnStart:      cfg.RunOnStart,
		ShutdownTimeout: cfg.ShutdownTimeout,
		CycleTimeout:    cycleTimeout(cfg),
	})
	a.OnShutdown(tracing)
	return a
}

// cycleTimeout bounds a scheduled cycle: every attempt of a fetch plus the push.
func cycleTimeout(cfg *config.Config) time.Duration {
	fetch := time.Duration(cfg.FetchAttempts)*(cfg.FetchTimeout+cfg.FetchRetryDelay) + cfg.RequestTimeout
	return fetch + 30*time.Second
}
