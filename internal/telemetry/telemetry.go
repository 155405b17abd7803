package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It discards everything until
// InitTelemetry replaces it.
var Logger = zap.NewNop()

var tracerProvider *sdktrace.TracerProvider

type Options struct {
	// LogLevel is a zap level name such as "debug" or "info".
	LogLevel string
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector. Tracing
	// export is disabled when empty.
	OTLPEndpoint string
}

// InitTelemetry installs the production logger and, when an endpoint is
// configured, the OTLP trace exporter.
func InitTelemetry(serviceName string, opts Options) error {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.LogLevel != "" {
		parsed, err := zap.ParseAtomicLevel(opts.LogLevel)
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	logger, err := cfg.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Logger = logger

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if opts.OTLPEndpoint == "" {
		Logger.Info("Trace export disabled, no collector endpoint configured")
		return nil
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(opts.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return fmt.Errorf("create trace exporter: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tracerProvider)

	Logger.Info("Trace export enabled", zap.String("endpoint", opts.OTLPEndpoint))
	return nil
}

// Shutdown flushes pending spans and log entries.
func Shutdown(ctx context.Context) error {
	var errs []error
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	// Sync fails on stderr/stdout for some platforms; nothing to act on.
	_ = Logger.Sync()
	return errors.Join(errs...)
}
