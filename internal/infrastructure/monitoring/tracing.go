// Package monitoring provides distributed tracing via OpenTelemetry
package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/infrastructure/config"
)

// TracerProvider owns the OTLP trace pipeline. When tracing is disabled it
// is an inert holder whose Shutdown is a no-op, so callers never branch.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
}

// NewTracerProvider configures the global tracer provider against the
// configured OTLP endpoint and installs the W3C trace context propagator.
func NewTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*TracerProvider, error) {
	if !cfg.Monitoring.EnableTracing {
		logger.Info("Tracing is disabled")
		return &TracerProvider{logger: logger}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.App.Name),
			semconv.ServiceVersion(cfg.App.Version),
			semconv.DeploymentEnvironment(cfg.App.Environment),
			attribute.String("service.component", "api"),
		),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Monitoring.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.Monitoring.SamplingRate)),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing initialized",
		zap.String("endpoint", cfg.Monitoring.OTLPEndpoint),
		zap.Float64("sampling_rate", cfg.Monitoring.SamplingRate),
	)

	return &TracerProvider{provider: provider, logger: logger}, nil
}

// Shutdown flushes buffered spans and stops the pipeline
func (t *TracerProvider) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}

	t.logger.Info("Shutting down tracer provider")
	return t.provider.Shutdown(ctx)
}
