package node

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/trace"
)

var (
	meter  = global.Meter("nodeflow")
	tracer = otel.GetTracerProvider().Tracer("nodeflow")

	receivedCounter  = metric.Must(meter).NewInt64ValueRecorder("nodeflow.received")
	processedCounter = metric.Must(meter).NewInt64ValueRecorder("nodeflow.processed")
	droppedCounter   = metric.Must(meter).NewInt64ValueRecorder("nodeflow.dropped")
	errorsCounter    = metric.Must(meter).NewInt64ValueRecorder("nodeflow.errors")
	processDuration  = metric.Must(meter).NewInt64ValueRecorder("nodeflow.process_duration")
)

// telemetry bundles the attributes shared by every instrument
// recorded for one node instance, keyed by instance name.
type telemetry struct {
	instance attribute.KeyValue
}

func newTelemetry(instanceName string) *telemetry {
	return &telemetry{instance: attribute.String("instance", instanceName)}
}

func (t *telemetry) recordReceived(ctx context.Context, n int64) {
	receivedCounter.Record(ctx, n, t.instance)
}

func (t *telemetry) recordDropped(ctx context.Context, n int64) {
	droppedCounter.Record(ctx, n, t.instance)
}

func (t *telemetry) recordProcessed(ctx context.Context, byteLength int, duration time.Duration, err error) {
	processedCounter.Record(ctx, 1, t.instance)
	processDuration.Record(ctx, int64(duration), t.instance)

	if err != nil {
		errorsCounter.Record(ctx, 1, t.instance)
	}
}

// startProcessSpan starts a span around one Process call, returning a
// function that ends it.
func (t *telemetry) startProcessSpan(ctx context.Context, frameIndex int) (context.Context, func()) {
	spanCtx, span := tracer.Start(ctx, "process", trace.WithAttributes(
		t.instance,
		attribute.Int("frame_index", frameIndex),
	))
	return spanCtx, func() { span.End() }
}
