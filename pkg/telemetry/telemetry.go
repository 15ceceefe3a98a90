// Package telemetry wires OpenTelemetry tracing into the SDK. A process
// configures one Manager and registers it with SetDefault; the adapters
// then annotate their outbound calls through StartSpan/EndSpan. Without a
// default manager the helpers fall back to the global tracer provider, so
// library code never needs a nil check.
package telemetry

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cexll/llmadapter-go"

// Config describes one telemetry pipeline.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Endpoint is the OTLP/HTTP collector host:port. Empty means the
	// exporter default (localhost:4318 or OTEL_EXPORTER_OTLP_ENDPOINT).
	Endpoint string
	// Insecure disables TLS toward the collector.
	Insecure bool
}

// Manager owns a tracer provider and its exporter.
type Manager struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

var defaultManager atomic.Pointer[Manager]

// NewManager builds an OTLP/HTTP-exporting tracer provider.
func NewManager(cfg Config) (*Manager, error) {
	var exporterOpts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		exporterOpts = append(exporterOpts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(exporterOpts...))
	if err != nil {
		return nil, err
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return &Manager{
		provider: provider,
		tracer:   provider.Tracer(tracerName),
	}, nil
}

// StartSpan begins a span on the manager's tracer.
func (m *Manager) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes and stops the pipeline.
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// SetDefault exposes mgr to the package-level helpers. Passing nil clears
// the default.
func SetDefault(mgr *Manager) {
	defaultManager.Store(mgr)
}

// Default returns the registered manager, or nil.
func Default() *Manager {
	return defaultManager.Load()
}

// StartSpan begins a span on the default manager, falling back to the
// global tracer provider when none is registered.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if mgr := defaultManager.Load(); mgr != nil {
		return mgr.StartSpan(ctx, name, opts...)
	}
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// EndSpan records err (if any) and ends the span.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

var (
	secretKeyPattern   = regexp.MustCompile(`(?i)(api[-_]?key|token|secret|credential|authorization|password)`)
	secretValuePattern = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]+`)
)

const mask = "***"

// SanitizeAttributes masks attribute values that look like credentials so
// secrets never reach the trace backend.
func SanitizeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if secretKeyPattern.MatchString(string(attr.Key)) {
			out = append(out, attribute.String(string(attr.Key), mask))
			continue
		}
		if attr.Value.Type() == attribute.STRING {
			if v := attr.Value.AsString(); secretValuePattern.MatchString(v) {
				out = append(out, attribute.String(string(attr.Key), secretValuePattern.ReplaceAllString(v, mask)))
				continue
			}
		}
		out = append(out, attr)
	}
	return out
}

// MaskText masks secret-looking substrings in free text before it is
// attached to a span.
func MaskText(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	return secretValuePattern.ReplaceAllString(text, mask)
}
