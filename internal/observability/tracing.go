package observability

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown flushes and stops a tracer provider.
type Shutdown func(context.Context) error

// tracesPath is appended to a base collector URL, as for OTEL_EXPORTER_OTLP_ENDPOINT.
const tracesPath = "/v1/traces"

// TracingConfig controls trace export. Endpoint is the collector base URL
// (http://collector:4318); an http scheme exports without TLS. An empty
// Endpoint keeps the global no-op tracer provider.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
}

// SetupTracing installs an OTLP/HTTP tracer provider. The returned shutdown
// flushes pending spans and is always safe to call.
func SetupTracing(ctx context.Context, cfg TracingConfig) (Shutdown, error) {
	noop := Shutdown(func(context.Context) error { return nil })
	if cfg.Endpoint == "" {
		return noop, nil
	}

	endpoint, err := tracesURL(cfg.Endpoint)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(otlptracehttp.WithEndpointURL(endpoint)))
	if err != nil {
		return noop, fmt.Errorf("create exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider.Shutdown, nil
}

// tracesURL resolves a collector base URL to its trace export URL.
func tracesURL(endpoint string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", fmt.Errorf("parse otlp endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("otlp endpoint %q must be an http(s) URL", endpoint)
	}
	if !strings.HasSuffix(u.Path, tracesPath) {
		u.Path = strings.TrimSuffix(u.Path, "/") + tracesPath
	}
	return u.String(), nil
}
