// Package tracing sets up the OpenTelemetry tracer provider.
package tracing

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used across the client
const InstrumentationName = "github.com/amaumene/whirlwatch"

// NewProvider creates a tracer provider. When enabled, every span is sampled
// and logged at debug level when it ends; otherwise nothing is sampled.
func NewProvider(enabled bool, logger *logrus.Logger) *sdktrace.TracerProvider {
	if !enabled {
		return sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(&logProcessor{logger: logger}),
	)
}

// Install registers the provider globally and returns its tracer
func Install(tp *sdktrace.TracerProvider) trace.Tracer {
	otel.SetTracerProvider(tp)
	return tp.Tracer(InstrumentationName)
}

// logProcessor writes finished spans to the logger
type logProcessor struct {
	logger *logrus.Logger
}

func (p *logProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := logrus.Fields{
		"span":     s.Name(),
		"trace_id": s.SpanContext().TraceID().String(),
		"duration": s.EndTime().Sub(s.StartTime()).String(),
		"status":   s.Status().Code.String(),
	}
	for _, kv := range s.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}
	p.logger.WithFields(fields).Debug("Span finished")
}

func (p *logProcessor) Shutdown(context.Context) error { return nil }

func (p *logProcessor) ForceFlush(context.Context) error { return nil }
