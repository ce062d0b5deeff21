package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OtlpConfig points the span exporter at a collector. Tracing stays off while
// both endpoints are empty.
type OtlpConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (c OtlpConfig) Enabled() bool {
	return c.GrpcEndpoint != "" || c.HttpEndpoint != ""
}

// Tracing owns the tracer provider installed as the otel global.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

// NewTracing installs a tracer provider built from opts as the global one.
func NewTracing(serviceName string, opts ...sdktrace.TracerProviderOption) (Tracing, error) {
	r, err := newResource(serviceName)
	if err != nil {
		return Tracing{}, err
	}
	opts = append(opts, sdktrace.WithResource(r))
	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	return Tracing{provider: provider}, nil
}

func otlpExporter(ctx context.Context, c OtlpConfig) (sdktrace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	if c.GrpcEndpoint != "" {
		slog.Info("tracer export initialized", "type", "grpc", "endpoint", c.GrpcEndpoint)
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.GrpcEndpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	}
	slog.Info("tracer export initialized", "type", "http", "endpoint", c.HttpEndpoint)
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(c.HttpEndpoint),
		otlptracehttp.WithHeaders(c.Headers),
	)
}

// SetupTracing exports spans to the configured collector. A disabled config
// returns a Tracing whose Shutdown does nothing.
func SetupTracing(ctx context.Context, serviceName string, c OtlpConfig) (Tracing, error) {
	if !c.Enabled() {
		return Tracing{}, nil
	}
	exporter, err := otlpExporter(ctx, c)
	if err != nil {
		return Tracing{}, err
	}
	return NewTracing(serviceName, sdktrace.WithBatcher(exporter))
}

// Shutdown flushes pending spans.
func (t Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	return t.provider.Shutdown(ctx)
}
