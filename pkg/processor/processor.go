// Package processor contains the units pluggable into a pipeline: the
// pass-through SimpleProcessor and the queue-backed BatchProcessor, together
// with the batching configuration.
package processor

import (
	"context"

	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Processor observes every record emitted through a pipeline. Implementations
// may mutate the record in place; downstream processors in the same chain see
// the mutation.
//
// Emit must never block the caller and never panic. ForceFlush and Shutdown
// may block until the processor has drained; they are the only blocking
// surface exposed to applications. Neither may be called from inside an
// exporter, since the worker that runs exporters is the goroutine that
// answers them.
type Processor interface {
	// Emit hands a record and its producing scope to the processor.
	Emit(record *telemetry.Record, scope telemetry.Scope)

	// ForceFlush synchronously exports anything buffered.
	ForceFlush(ctx context.Context) error

	// Shutdown flushes, releases resources, and makes further Emit calls
	// inert no-ops.
	Shutdown(ctx context.Context) error

	// SetResource delivers an owned resource snapshot. Fire-and-forget.
	SetResource(resource *telemetry.Resource)
}

// Filter is optionally implemented by processors that can veto record
// construction ahead of Emit. Processors that do not implement it are treated
// as always enabled.
type Filter interface {
	EventEnabled(level telemetry.Severity, scopeName, eventName string) bool
}
