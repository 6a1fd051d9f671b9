package ripple

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for the reactive runtime.
const defaultTracerName = "ripple"

// globalTracer is resolved from the global provider by EnableTracing.
// While unset, flush spans are not created.
var globalTracer atomic.Pointer[trace.Tracer]

// EnableTracing turns on OpenTelemetry spans around queue flushes.
//
// The tracer resolves from the global tracer provider; configure it in
// main() before enabling:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	ripple.EnableTracing("my-app")
//
// Passing an empty name uses the default tracer name.
func EnableTracing(name string) {
	if name == "" {
		name = defaultTracerName
	}
	t := otel.Tracer(name)
	globalTracer.Store(&t)
}

// startFlushSpan begins a span for one queue flush, or returns nil when
// tracing is disabled.
func startFlushSpan() trace.Span {
	tp := globalTracer.Load()
	if tp == nil {
		return nil
	}
	_, span := (*tp).Start(context.Background(), "ripple.flush",
		trace.WithSpanKind(trace.SpanKindInternal))
	return span
}

// endFlushSpan closes a flush span, recording how many jobs ran and the
// flush outcome.
func endFlushSpan(span trace.Span, jobs int, err error) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Int("ripple.flush_jobs", jobs))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
