// Package tracing installs the global OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.uber.org/zap"
)

// Exporter names.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
)

// Config configures trace export.
type Config struct {
	Enabled     bool
	Endpoint    string // full OTLP/HTTP URL, e.g. http://127.0.0.1:6006/v1/traces
	Exporter    string // "otlp" (default) or "stdout"
	ServiceName string
	Version     string
}

// ShutdownFunc flushes pending spans and stops the provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init sets the global tracer provider and propagator. When tracing is
// disabled, or the exporter cannot be built, the global no-op provider is
// left in place and the returned shutdown does nothing. Init never fails the
// caller.
func Init(ctx context.Context, cfg Config) ShutdownFunc {
	log := zap.L().Named("tracing")
	if !cfg.Enabled {
		log.Info("tracing disabled")
		return noopShutdown
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "jeopardy-api"
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		log.Warn("tracing: exporter init failed, tracing disabled", zap.Error(err))
		return noopShutdown
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(cfg.Version),
		),
	)
	if err != nil {
		log.Warn("tracing: resource init failed (continuing)", zap.Error(err))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing initialized",
		zap.String("service", serviceName),
		zap.String("exporter", exporterName(cfg)),
		zap.String("endpoint", cfg.Endpoint),
	)
	return tp.Shutdown
}

func exporterName(cfg Config) string {
	name := strings.ToLower(strings.TrimSpace(cfg.Exporter))
	if name == "" {
		return ExporterOTLP
	}
	return name
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch exporterName(cfg) {
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, eris.Wrap(err, "tracing: stdout exporter")
		}
		return exp, nil
	case ExporterOTLP:
		endpoint := strings.TrimSpace(cfg.Endpoint)
		if endpoint == "" {
			return nil, eris.New("tracing: otlp exporter requires an endpoint")
		}
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, eris.Wrap(err, "tracing: otlp exporter")
		}
		return exp, nil
	default:
		return nil, eris.Errorf("tracing: unknown exporter %q", cfg.Exporter)
	}
}
