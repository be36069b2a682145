package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"solar-relay/internal/adapter/line"
	"solar-relay/internal/domain/model"
	"solar-relay/internal/usecase"
)

// Config contains runtime configuration values.
type Config struct {
	ChannelAccessToken string
	RecipientID        string
	PushURL            string

	HTTPAddr        string
	ShutdownTimeout time.Duration

	ScheduleCron string
	RunOnStart   bool

	FetchTimeout    time.Duration
	FetchAttempts   int
	FetchRetryDelay time.Duration
	MaxConcurrency  int
	RequestTimeout  time.Duration

	Locale             model.Locale
	MessageMode        usecase.MessageMode
	TriggerPhrase      string
	TriggerMinInterval time.Duration

	Targets []model.Target

	RedisAddr string
	LockTTL   time.Duration

	LogBackend string
	LogLevel   string

	OTLPEndpoint string
}

const (
	defaultHTTPAddr        = ":5000"
	defaultShutdownTimeout = 10 * time.Second
	defaultFetchTimeout    = 10 * time.Second
	defaultFetchAttempts   = 3
	defaultRetryDelay      = 500 * time.Millisecond
	defaultRequestTimeout  = 10 * time.Second
	defaultLockTTL         = 2 * time.Minute
	defaultLogBackend      = "slog"
	defaultLogLevel        = "info"
)

// Load builds a Config from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ChannelAccessToken: strings.TrimSpace(os.Getenv("CHANNEL_ACCESS_TOKEN")),
		RecipientID:        strings.TrimSpace(os.Getenv("GROUP_ID")),
		PushURL:            getenvDefault("LINE_PUSH_URL", line.DefaultPushURL),
		HTTPAddr:           getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		ShutdownTimeout:    parseDurationDefault("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		ScheduleCron:       strings.TrimSpace(os.Getenv("SCHEDULE_CRON")),
		RunOnStart:         parseBoolDefault("RUN_ON_START", false),
		FetchTimeout:       parseDurationDefault("FETCH_TIMEOUT", defaultFetchTimeout),
		FetchAttempts:      parseIntDefault("FETCH_ATTEMPTS", defaultFetchAttempts),
		FetchRetryDelay:    parseDurationDefault("FETCH_RETRY_DELAY", defaultRetryDelay),
		MaxConcurrency:     parseIntDefault("MAX_CONCURRENCY", 0),
		RequestTimeout:     parseDurationDefault("REQUEST_TIMEOUT", defaultRequestTimeout),
		TriggerPhrase:      getenvDefault("TRIGGER_PHRASE", usecase.DefaultTriggerPhrase),
		TriggerMinInterval: parseDurationDefault("TRIGGER_MIN_INTERVAL", 0),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		LockTTL:            parseDurationDefault("LOCK_TTL", defaultLockTTL),
		LogBackend:         strings.ToLower(getenvDefault("LOG_BACKEND", defaultLogBackend)),
		LogLevel:           getenvDefault("LOG_LEVEL", defaultLogLevel),
		OTLPEndpoint:       strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	locale, ok := model.LookupLocale(os.Getenv("LOCALE"))
	if !ok {
		return nil, fmt.Errorf("LOCALE %q is not supported", os.Getenv("LOCALE"))
	}
	cfg.Locale = locale

	mode, ok := usecase.ParseMessageMode(os.Getenv("MESSAGE_MODE"))
	if !ok {
		return nil, fmt.Errorf("MESSAGE_MODE %q is not supported", os.Getenv("MESSAGE_MODE"))
	}
	cfg.MessageMode = mode

	cfg.Targets = DefaultTargets()
	if path := strings.TrimSpace(os.Getenv("TARGETS_FILE")); path != "" {
		targets, err := LoadTargets(path)
		if err != nil {
			return nil, err
		}
		cfg.Targets = targets
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values a relay cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.ChannelAccessToken == "" {
		errs = append(errs, fmt.Errorf("CHANNEL_ACCESS_TOKEN is required"))
	}
	if c.RecipientID == "" {
		errs = append(errs, fmt.Errorf("GROUP_ID is required"))
	}
	if c.ScheduleCron != "" {
		if err := validateCron(c.ScheduleCron); err != nil {
			errs = append(errs, err)
		}
	}
	if err := ValidateTargets(c.Targets); err != nil {
		errs = append(errs, err)
	}

	if c.FetchAttempts <= 0 {
		c.FetchAttempts = defaultFetchAttempts
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaultLockTTL
	}
	switch c.LogBackend {
	case "slog", "zap":
	default:
		errs = append(errs, fmt.Errorf("LOG_BACKEND %q is not supported", c.LogBackend))
	}

	return errors.Join(errs...)
}

func getenvDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func parseIntDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseBoolDefault(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func parseDurationDefault(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
