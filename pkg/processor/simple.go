package processor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/pkg/errsink"
	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// SimpleProcessor exports every record synchronously on the caller's
// goroutine, one record per batch. Useful for debugging and tests; use
// BatchProcessor for throughput.
type SimpleProcessor struct {
	mu       sync.Mutex
	exporter exporter.Exporter
	shutdown atomic.Bool
}

var _ Processor = (*SimpleProcessor)(nil)

// NewSimpleProcessor wraps exp in a pass-through processor.
func NewSimpleProcessor(exp exporter.Exporter) *SimpleProcessor {
	return &SimpleProcessor{exporter: exp}
}

// Emit exports the record immediately. Export failures are reported to the
// error sink, never to the caller. After Shutdown, Emit is a silent no-op.
func (p *SimpleProcessor) Emit(record *telemetry.Record, scope telemetry.Scope) {
	if p.shutdown.Load() {
		return
	}

	batch := []exporter.Entry{{Record: *record, Scope: scope}}

	p.mu.Lock()
	err := p.exporter.Export(context.Background(), batch)
	p.mu.Unlock()

	if err != nil {
		errsink.Handle(ewrap.Wrap(err, "simple processor export"))
	}
}

// ForceFlush is a no-op: nothing is ever buffered.
func (p *SimpleProcessor) ForceFlush(context.Context) error {
	return nil
}

// Shutdown marks the processor shut down and forwards to the exporter.
// Repeated calls return nil without touching the exporter again.
func (p *SimpleProcessor) Shutdown(ctx context.Context) error {
	if !p.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.exporter.Shutdown(ctx)
	if err != nil {
		return ewrap.Wrap(err, "simple processor shutdown")
	}

	return nil
}

// SetResource forwards the snapshot to the exporter.
func (p *SimpleProcessor) SetResource(resource *telemetry.Resource) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.exporter.SetResource(resource)
}
