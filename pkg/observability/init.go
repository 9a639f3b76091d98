package observability

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

var (
	mu            sync.Mutex
	provider      *sdktrace.TracerProvider
	meterProvider *sdkmetric.MeterProvider
	reader        *sdkmetric.ManualReader
)

// Initialize installs a tracer provider and a meter provider built from
// config as the global otel providers. Calling it again replaces the
// previous providers. Recorded metrics are read back with CollectMetrics.
func Initialize(config ObservabilityConfig) error {
	mu.Lock()
	defer mu.Unlock()

	_ = shutdownLocked(context.Background())

	res, err := newResource(config.Tracing)
	if err != nil {
		return err
	}

	tp, err := initTracing(config.Tracing, res)
	if err != nil {
		return err
	}
	provider = tp
	otel.SetTracerProvider(tp)

	reader = sdkmetric.NewManualReader()
	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)
	resetInstruments()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func newResource(config TracingConfig) (*resource.Resource, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// initTracing builds the tracing provider
func initTracing(config TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {

	var sampler sdktrace.Sampler
	if config.SamplingRate <= 0 {
		sampler = sdktrace.NeverSample()
	} else if config.SamplingRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	}

	switch config.ExporterType {
	case "none":
	case "stdout", "":
		writer := config.Writer
		if writer == nil {
			writer = os.Stderr
		}
		exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(writer)}
		if config.PrettyPrint {
			exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
		}
		exporter, err := stdouttrace.New(exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(config.BatchTimeout),
		))
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", config.ExporterType)
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

// DefaultConfig returns a default observability configuration
func DefaultConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Tracing: TracingConfig{
			ServiceName:    "framex",
			ServiceVersion: "dev",
			Environment:    getEnv("ENVIRONMENT", "development"),
			SamplingRate:   1.0,
			ExporterType:   getEnv("TRACING_EXPORTER", "stdout"),
			BatchTimeout:   5 * time.Second,
		},
		Metrics: MetricsConfig{
			Namespace: "framex",
		},
	}
}

// getEnv gets environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// CollectMetrics reads the otel metrics recorded since Initialize
func CollectMetrics(ctx context.Context) (*metricdata.ResourceMetrics, error) {
	mu.Lock()
	r := reader
	mu.Unlock()

	if r == nil {
		return nil, fmt.Errorf("observability is not initialized")
	}
	var rm metricdata.ResourceMetrics
	if err := r.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}
	return &rm, nil
}

// Shutdown flushes pending spans and removes the providers installed by
// Initialize
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()
	return shutdownLocked(ctx)
}

func shutdownLocked(ctx context.Context) error {
	var err error
	if provider != nil {
		if serr := provider.Shutdown(ctx); serr != nil {
			err = fmt.Errorf("failed to shutdown tracer: %w", serr)
		}
		provider = nil
	}
	if meterProvider != nil {
		if serr := meterProvider.Shutdown(ctx); serr != nil && err == nil {
			err = fmt.Errorf("failed to shutdown meter: %w", serr)
		}
		meterProvider = nil
		reader = nil
		otel.SetMeterProvider(noop.NewMeterProvider())
		resetInstruments()
	}
	return err
}
