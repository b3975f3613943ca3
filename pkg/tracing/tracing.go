// Package tracing wires OpenTelemetry tracing for the estimator service.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Supported exporters.
const (
	ExporterOTLP   = "otlp"
	ExporterZipkin = "zipkin"
)

const (
	defaultServiceName    = "drunkyet"
	defaultOTLPEndpoint   = "localhost:4318"
	defaultZipkinEndpoint = "http://localhost:9411/api/v2/spans"
	instrumentationName   = "github.com/okian/drunkyet"
)

// Sentinel errors.
var (
	ErrUnsupportedExporter = errors.New("unsupported trace exporter")
	ErrCreateExporter      = errors.New("failed to create trace exporter")
)

// Config configures the tracer provider.
type Config struct {
	Enabled        bool
	Exporter       string  // otlp or zipkin
	Endpoint       string  // exporter specific; empty selects the local default
	SampleRate     float64 // fraction of root traces kept; <= 0 keeps none, >= 1 keeps all
	ServiceName    string
	ServiceVersion string
}

// Provider owns the tracer and, when tracing is enabled, the SDK provider
// that must be shut down to flush spans.
type Provider struct {
	sdk    *sdktrace.TracerProvider
	tracer trace.Tracer
}

// New builds a Provider. A disabled config yields a noop tracer and never fails.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	sdk := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return &Provider{sdk: sdk, tracer: sdk.Tracer(instrumentationName)}, nil
}

// sampler honours the parent decision and samples root spans at rate.
func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case rate >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Noop returns a provider whose spans are discarded.
func Noop() *Provider {
	return &Provider{tracer: noop.NewTracerProvider().Tracer(instrumentationName)}
}

// NewWithSDK wraps an existing SDK provider. Used by tests with in-memory exporters.
func NewWithSDK(sdk *sdktrace.TracerProvider) *Provider {
	return &Provider{sdk: sdk, tracer: sdk.Tracer(instrumentationName)}
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch strings.ToLower(cfg.Exporter) {
	case "", ExporterOTLP:
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
	case ExporterZipkin:
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultZipkinEndpoint
		}
		exporter, err = zipkin.New(endpoint)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExporter, cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateExporter, err)
	}
	return exporter, nil
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Shutdown flushes pending spans. It is a no-op for the noop provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}

// RecordError marks span as failed with err.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
}
