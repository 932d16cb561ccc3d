// Package observability installs the OpenTelemetry tracer provider.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

// DefaultServiceName is reported when no service name is configured.
const DefaultServiceName = "inkwell"

// TracingConfig selects where spans go.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Version     string
	// OTLPEndpoint sends spans over OTLP/HTTP (host:port). Empty selects the
	// stdout exporter.
	OTLPEndpoint string
	Insecure     bool
	SampleRatio  float64
	// Writer receives stdout-exporter output; nil means os.Stderr so MCP
	// stdio traffic stays clean.
	Writer io.Writer
}

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// SetupTracing installs a global tracer provider and W3C propagators. When
// tracing is disabled the global no-op provider stays in place.
func SetupTracing(ctx context.Context, cfg TracingConfig, log *slog.Logger) (Shutdown, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}
	if log == nil {
		log = slog.Default()
	}

	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = DefaultServiceName
	}
	res := resource.NewSchemaless(
		semconv.ServiceNameKey.String(name),
		semconv.ServiceVersionKey.String(cfg.Version),
		attribute.String("service.component", "workshop"),
	)

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg.SampleRatio)))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	endpoint := cfg.OTLPEndpoint
	if endpoint == "" {
		endpoint = "stdout"
	}
	log.Info("tracing initialized",
		slog.String("service", name),
		slog.String("exporter", endpoint),
		slog.Float64("sample_ratio", sampleRatio(cfg.SampleRatio)))
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.OTLPEndpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	return stdouttrace.New(stdouttrace.WithWriter(w))
}

// sampleRatio clamps r to [0,1]; zero samples everything.
func sampleRatio(r float64) float64 {
	switch {
	case r <= 0 || r > 1:
		return 1
	default:
		return r
	}
}
