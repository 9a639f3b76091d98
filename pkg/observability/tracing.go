// Package observability provides OpenTelemetry tracing and metrics for
// framex. Spans and instruments are always created through the global otel
// providers, so instrumented code works unchanged whether or not Initialize
// has been called.
package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ajitpratap0/framex"

// TracingConfig contains tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	SamplingRate   float64
	ExporterType   string // "stdout" or "none"
	Writer         io.Writer
	PrettyPrint    bool
	BatchTimeout   time.Duration
}

// MetricsConfig contains metrics configuration
type MetricsConfig struct {
	Namespace string
}

// ObservabilityConfig contains all observability configuration
type ObservabilityConfig struct {
	Tracing TracingConfig
	Metrics MetricsConfig
}

// GetTracer returns the framex tracer
func GetTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// GetMeter returns the framex meter
func GetMeter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Span wraps a trace span and records its duration when it ends
type Span struct {
	span       trace.Span
	name       string
	startTime  time.Time
	attributes []attribute.KeyValue
	failed     bool
}

// NewSpan starts a span named operationName
func NewSpan(ctx context.Context, operationName string) (context.Context, *Span) {
	ctx, span := GetTracer().Start(ctx, operationName)

	return ctx, &Span{
		span:      span,
		name:      operationName,
		startTime: time.Now(),
	}
}

// SetAttribute adds an attribute to the span. Attributes are sent when the
// span ends.
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// RecordError marks the span as failed
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.failed = true
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End ends the span and records its duration
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}

	status := "success"
	if s.failed {
		status = "error"
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	RecordDuration(context.Background(), s.name, status, time.Since(s.startTime))

	s.span.End()
}

// StageTracer traces the stages of one pipeline
type StageTracer struct {
	pipeline string
}

// NewStageTracer creates a tracer for the named pipeline
func NewStageTracer(pipeline string) *StageTracer {
	return &StageTracer{pipeline: pipeline}
}

// StartSpan starts a span for a pipeline stage
func (st *StageTracer) StartSpan(ctx context.Context, stage string) (context.Context, *Span) {
	ctx, span := NewSpan(ctx, "pipeline."+stage)
	span.SetAttribute("pipeline.name", st.pipeline)
	span.SetAttribute("pipeline.stage", stage)
	return ctx, span
}

// Trace runs fn inside a stage span
func (st *StageTracer) Trace(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	ctx, span := st.StartSpan(ctx, stage)
	defer span.End()

	err := fn(ctx)
	span.RecordError(err)
	return err
}
