package pipeline

import (
	"context"
	"time"

	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Logger emits records for a single instrumentation scope. It fills in the
// fields the application usually does not set by hand: the observed
// timestamp and the trace context carried in the call's context.
type Logger struct {
	pipeline *Pipeline
	scope    telemetry.Scope
}

// Scope returns the instrumentation scope the logger is bound to.
func (l *Logger) Scope() telemetry.Scope {
	return l.scope
}

// Enabled reports whether the chain wants an event of this level and name.
// Emitting a disabled event is harmless; this is an optimization hook to
// skip record construction entirely.
func (l *Logger) Enabled(level telemetry.Severity, eventName string) bool {
	return l.pipeline.Enabled(level, l.scope.Name, eventName)
}

// Emit completes the record and hands it to the processor chain. The caller
// keeps ownership of record itself, but must not expect mutations made after
// Emit returns to reach the pipeline.
func (l *Logger) Emit(ctx context.Context, record *telemetry.Record) {
	if record == nil {
		return
	}

	now := time.Now()

	if record.ObservedTimestamp.IsZero() {
		record.ObservedTimestamp = now
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = now
	}

	if record.TraceContext == nil {
		record.TraceContext = telemetry.TraceContextFromContext(ctx)
	}

	if record.SeverityText == "" && record.Severity != telemetry.SeverityUndefined {
		record.SeverityText = record.Severity.Text()
	}

	l.pipeline.Emit(record, l.scope)
}

// Log is a convenience helper building a record from a severity, a body, and
// attributes.
func (l *Logger) Log(ctx context.Context, level telemetry.Severity, body telemetry.Value, attrs ...telemetry.KeyValue) {
	record := &telemetry.Record{
		Severity:   level,
		Body:       body,
		Attributes: attrs,
	}

	l.Emit(ctx, record)
}
