// Package telemetry defines the data carried through the export pipeline:
// records, instrumentation scopes, resources, and their value types.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Record is a single structured telemetry event. It stays mutable while it
// travels the processor chain; once a batching processor enqueues it, the
// pipeline owns the stored copy and producers must not expect later mutations
// to be observed.
type Record struct {
	// Timestamp is when the event occurred at the source.
	Timestamp time.Time

	// ObservedTimestamp is when the pipeline first saw the event.
	ObservedTimestamp time.Time

	// TraceContext links the record to an active span, when one exists.
	TraceContext *TraceContext

	// SeverityText is the original severity string from the source.
	SeverityText string

	// Severity is the normalized numeric level.
	Severity Severity

	// Body carries the record payload.
	Body Value

	// Attributes are ordered key-value pairs attached to the record.
	// Processors may append or rewrite entries in place.
	Attributes []KeyValue
}

// TraceContext stores the span linkage for records emitted inside a trace.
type TraceContext struct {
	TraceID    trace.TraceID
	SpanID     trace.SpanID
	TraceFlags trace.TraceFlags
}

// TraceContextFromContext extracts the active span context from ctx, or nil
// when none is present.
func TraceContextFromContext(ctx context.Context) *TraceContext {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}

	return &TraceContext{
		TraceID:    spanCtx.TraceID(),
		SpanID:     spanCtx.SpanID(),
		TraceFlags: spanCtx.TraceFlags(),
	}
}

// AddAttribute appends a key-value pair to the record.
func (r *Record) AddAttribute(key string, value Value) {
	r.Attributes = append(r.Attributes, KeyValue{Key: key, Value: value})
}

// Attribute returns the value stored under key and whether it is present.
// The last occurrence wins when a key was appended more than once.
func (r *Record) Attribute(key string) (Value, bool) {
	for i := len(r.Attributes) - 1; i >= 0; i-- {
		if r.Attributes[i].Key == key {
			return r.Attributes[i].Value, true
		}
	}

	return Value{}, false
}

// Clone returns a deep copy of the record. Batching processors clone on
// enqueue so the caller keeps full ownership of its record.
func (r *Record) Clone() Record {
	cloned := Record{
		Timestamp:         r.Timestamp,
		ObservedTimestamp: r.ObservedTimestamp,
		SeverityText:      r.SeverityText,
		Severity:          r.Severity,
		Body:              r.Body.Clone(),
	}

	if r.TraceContext != nil {
		traceCtx := *r.TraceContext
		cloned.TraceContext = &traceCtx
	}

	if r.Attributes != nil {
		cloned.Attributes = make([]KeyValue, len(r.Attributes))
		for i, pair := range r.Attributes {
			cloned.Attributes[i] = KeyValue{Key: pair.Key, Value: pair.Value.Clone()}
		}
	}

	return cloned
}
