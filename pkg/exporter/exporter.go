// Package exporter defines the contract between the processing pipeline and
// wire-protocol encoders, plus the batch entry type they exchange.
package exporter

import (
	"context"

	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Entry pairs an exported record with the scope that produced it.
type Entry struct {
	Record telemetry.Record
	Scope  telemetry.Scope
}

// Exporter serializes batches of records onto a wire protocol or sink.
//
// The pipeline guarantees Export is never called concurrently with itself for
// the same instance and always passes a context carrying the configured
// export deadline. Implementations must honor that deadline; the pipeline
// abandons (but cannot cancel) a call that outlives it.
//
// Shutdown is idempotent. After it returns, the pipeline stops calling Export
// and implementations are free to fail any stray call.
//
// SetResource replaces the cached process resource for all subsequent
// exports. It is fire-and-forget: no acknowledgment, no error. The pipeline
// hands over an owned snapshot; implementations may retain it without
// copying.
type Exporter interface {
	Export(ctx context.Context, batch []Entry) error
	Shutdown(ctx context.Context) error
	SetResource(resource *telemetry.Resource)
}
