package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type instrumentSet struct {
	operationDuration metric.Float64Histogram
	frames            metric.Int64Counter
}

var (
	instMu sync.Mutex
	inst   *instrumentSet
)

// instruments returns the instruments of the current global meter provider,
// creating them on first use after each provider change
func instruments() *instrumentSet {
	instMu.Lock()
	defer instMu.Unlock()

	if inst != nil {
		return inst
	}
	meter := GetMeter()
	// on error the returned instrument is a no-op
	duration, _ := meter.Float64Histogram("framex.operation.duration",
		metric.WithDescription("Duration of traced operations"),
		metric.WithUnit("s"),
	)
	frames, _ := meter.Int64Counter("framex.frames",
		metric.WithDescription("Frames processed by pipeline runs"),
	)
	inst = &instrumentSet{operationDuration: duration, frames: frames}
	return inst
}

func resetInstruments() {
	instMu.Lock()
	inst = nil
	instMu.Unlock()
}

// RecordDuration records the duration of a traced operation
func RecordDuration(ctx context.Context, operation, status string, duration time.Duration) {
	instruments().operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// RecordFrames counts frames processed by a pipeline
func RecordFrames(ctx context.Context, pipeline string, n int) {
	instruments().frames.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
	))
}
