// Package telemetry wires OpenTelemetry tracing into the server and CLI.
package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// Config enables tracing when Endpoint is set.
type Config struct {
	// Endpoint is an OTLP/HTTP collector URL, e.g. http://localhost:4318.
	Endpoint    string
	ServiceName string
	Insecure    bool
}

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a global tracer provider exporting over OTLP/HTTP through a
// batch span processor. Without an endpoint it installs nothing and returns
// a no-op shutdown, leaving the default no-op provider in place.
func Setup(ctx context.Context, cfg *Config) (ShutdownFunc, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return noop, nil
	}
	if cfg.ServiceName == "" {
		return noop, errors.InvalidArgument("service name is required for tracing")
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return noop, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to create trace exporter")
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return noop, errors.Wrap(err, "failed to build trace resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.InfoContext(ctx, "tracing enabled",
		"endpoint", cfg.Endpoint,
		"service_name", cfg.ServiceName)
	return tp.Shutdown, nil
}

// ServerOption instruments a gRPC server with the global provider.
func ServerOption() grpc.ServerOption {
	return grpc.StatsHandler(otelgrpc.NewServerHandler())
}

// DialOption instruments a gRPC client with the global provider.
func DialOption() grpc.DialOption {
	return grpc.WithStatsHandler(otelgrpc.NewClientHandler())
}
