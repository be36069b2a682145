package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
)

const maxBodySize = 1 << 20 // 1MB

const (
	defaultAttempts = 3
	defaultTimeout  = 10 * time.Second
	userAgent       = "Mozilla/5.0 (compatible; SolarRelay/1.0)"
)

// retryableStatus lists the responses worth another attempt.
var retryableStatus = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// FetchHooks receives per-attempt observations. Either field may be nil.
type FetchHooks struct {
	OnAttempt func(outcome string)
	OnFault   func(kind model.FetchErrorKind)
}

// FetcherConfig controls timeouts and the retry policy.
type FetcherConfig struct {
	Timeout    time.Duration
	Attempts   int
	RetryDelay time.Duration
}

// Fetcher retrieves status pages with a per-attempt timeout and a fixed retry policy.
type Fetcher struct {
	httpClient *http.Client
	cfg        FetcherConfig
	logger     ports.Logger
	hooks      FetchHooks
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// NewFetcher builds a Fetcher. The timeout is applied per attempt via context,
// so the client itself carries none.
func NewFetcher(cfg FetcherConfig, logger ports.Logger, hooks FetchHooks) *Fetcher {
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	return &Fetcher{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		cfg:    cfg,
		logger: logger,
		hooks:  hooks,
	}
}

// Fetch GETs url. Transient failures (429, 5xx gateway errors, timeouts and
// connection resets) are retried up to the configured attempt count; any other
// failure returns immediately. The returned error is always a *model.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, span := otel.Tracer("solar-relay/scrape").Start(ctx, "scrape.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", url))

	var lastErr *model.FetchError
	for attempt := 1; attempt <= f.cfg.Attempts; attempt++ {
		body, fetchErr := f.attempt(ctx, url)
		if fetchErr == nil {
			f.observeAttempt("success")
			span.SetAttributes(attribute.Int("fetch.attempts", attempt))
			return body, nil
		}

		fetchErr.Attempts = attempt
		lastErr = fetchErr
		f.observeAttempt(string(fetchErr.Kind))

		if !fetchErr.Retryable() || attempt == f.cfg.Attempts {
			break
		}

		if f.logger != nil {
			f.logger.Warn(ctx, "fetch attempt failed, retrying", "url", url, "attempt", attempt, "error", fetchErr)
		}
		if err := sleep(ctx, f.cfg.RetryDelay); err != nil {
			lastErr = model.NewFetchError(model.FetchUnknown, 0, err, false)
			lastErr.Attempts = attempt
			break
		}
	}

	if f.hooks.OnFault != nil {
		f.hooks.OnFault(lastErr.Kind)
	}
	span.SetAttributes(attribute.Int("fetch.attempts", lastErr.Attempts))
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return nil, lastErr
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, *model.FetchError) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, model.NewFetchError(model.FetchUnknown, 0, fmt.Errorf("create request: %w", err), false)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		_, retry := retryableStatus[resp.StatusCode]
		return nil, model.NewFetchError(model.FetchHTTPStatus, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode), retry)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxBodySize {
		body = body[:maxBodySize]
		if f.logger != nil {
			f.logger.Warn(ctx, "response body truncated, fields past the limit will be missing", "url", url, "limit_bytes", maxBodySize)
		}
	}
	return body, nil
}

// classify maps a transport error onto the fetch fault taxonomy.
func classify(ctx context.Context, err error) *model.FetchError {
	if ctx != nil && errors.Is(ctx.Err(), context.Canceled) {
		return model.NewFetchError(model.FetchUnknown, 0, err, false)
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return model.NewFetchError(model.FetchTimeout, 0, err, true)
	case errors.As(err, &netErr) && netErr.Timeout():
		return model.NewFetchError(model.FetchTimeout, 0, err, true)
	case errors.Is(err, syscall.ECONNRESET):
		return model.NewFetchError(model.FetchConnection, 0, err, true)
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.Is(err, syscall.ECONNREFUSED) {
		return model.NewFetchError(model.FetchConnection, 0, err, false)
	}
	return model.NewFetchError(model.FetchUnknown, 0, err, false)
}

func (f *Fetcher) observeAttempt(outcome string) {
	if f.hooks.OnAttempt != nil {
		f.hooks.OnAttempt(outcome)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
