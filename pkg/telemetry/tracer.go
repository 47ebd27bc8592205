// Package telemetry initialises the OpenTelemetry SDK.
//
//	shutdown, err := telemetry.SetupTracer(ctx, "fastbite")
//	if err != nil { ... }
//	defer shutdown(context.Background())
//
// OTEL_EXPORTER selects the exporter: "otlp" (gRPC to
// OTEL_EXPORTER_OTLP_ENDPOINT), "stdout", or "none" (no provider installed;
// otelhttp instrumentation becomes a no-op).
package telemetry

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jhonlemus05/FastBite-Delivery/config"
)

// ShutdownFunc flushes buffered spans and closes the exporter.
type ShutdownFunc func(ctx context.Context) error

func noop(context.Context) error { return nil }

// SetupTracer installs the global TracerProvider and the W3C propagators.
func SetupTracer(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	var (
		exporter sdktrace.SpanExporter
		closeFn  = noop
		err      error
	)

	switch config.OTelExporter() {
	case "otlp":
		endpoint := stripScheme(config.OTelEndpoint())
		conn, dialErr := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if dialErr != nil {
			return nil, fmt.Errorf("telemetry: dial collector at %s: %w", endpoint, dialErr)
		}
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("telemetry: create otlp exporter: %w", err)
		}
		closeFn = func(context.Context) error { return conn.Close() }
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return nil, fmt.Errorf("telemetry: create stdout exporter: %w", err)
		}
	default:
		return noop, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(config.AppEnv()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if config.IsProduction() {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.1))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutdown tracer provider: %w", err)
		}
		return closeFn(ctx)
	}, nil
}

// stripScheme turns "http://host:4317" into "host:4317" for grpc.NewClient.
func stripScheme(endpoint string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if strings.HasPrefix(endpoint, prefix) {
			return strings.TrimPrefix(endpoint, prefix)
		}
	}
	return endpoint
}
