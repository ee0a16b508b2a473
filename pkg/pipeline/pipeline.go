// Package pipeline assembles processors into an ordered chain and fans every
// emitted record through them. It also provides the scope-bound Logger front
// end applications use to build records.
package pipeline

import (
	"context"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/pkg/processor"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Pipeline holds processors in registration order. The order is significant:
// each emitted record visits every processor sequentially, and mutations made
// by one processor are observed by the next. The processor set is fixed at
// construction; only the resource can change afterwards.
type Pipeline struct {
	processors []processor.Processor
	resource   *telemetry.Resource
}

// Option mutates pipeline construction.
type Option func(*Pipeline)

// WithProcessor appends a processor to the chain. Registration order is
// emission order.
func WithProcessor(proc processor.Processor) Option {
	return func(p *Pipeline) {
		if proc != nil {
			p.processors = append(p.processors, proc)
		}
	}
}

// WithResource sets the process-describing resource broadcast to every
// processor when the pipeline is built.
func WithResource(resource *telemetry.Resource) Option {
	return func(p *Pipeline) {
		p.resource = resource
	}
}

// New builds a pipeline and broadcasts the configured resource to each
// registered processor.
func New(opts ...Option) *Pipeline {
	pipe := &Pipeline{}

	for _, opt := range opts {
		opt(pipe)
	}

	if pipe.resource != nil {
		for _, proc := range pipe.processors {
			proc.SetResource(pipe.resource.Clone())
		}
	}

	return pipe
}

// Emit passes the record through every processor in registration order. All
// processors receive the same mutable record, so they compose as pipeline
// stages: an enrichment stage can rewrite attributes before an export stage
// snapshots the record.
func (p *Pipeline) Emit(record *telemetry.Record, scope telemetry.Scope) {
	if record == nil {
		return
	}

	for _, proc := range p.processors {
		proc.Emit(record, scope)
	}
}

// ForceFlush flushes every processor. The first failure is returned, but
// every processor is still flushed: each owns resources independent of the
// others.
func (p *Pipeline) ForceFlush(ctx context.Context) error {
	var firstErr error

	for _, proc := range p.processors {
		err := proc.ForceFlush(ctx)
		if err != nil && firstErr == nil {
			firstErr = ewrap.Wrap(err, "force flush processor")
		}
	}

	return firstErr
}

// Shutdown shuts every processor down, returning the first failure while
// still calling through to the rest.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	var firstErr error

	for _, proc := range p.processors {
		err := proc.Shutdown(ctx)
		if err != nil && firstErr == nil {
			firstErr = ewrap.Wrap(err, "shutdown processor")
		}
	}

	return firstErr
}

// SetResource replaces the pipeline resource and broadcasts owned snapshots
// to every processor. Propagation is asynchronous and unacknowledged.
func (p *Pipeline) SetResource(resource *telemetry.Resource) {
	p.resource = resource

	for _, proc := range p.processors {
		proc.SetResource(resource.Clone())
	}
}

// Resource returns the current pipeline resource.
func (p *Pipeline) Resource() *telemetry.Resource {
	return p.resource
}

// Logger returns a record front end bound to the given scope.
func (p *Pipeline) Logger(scope telemetry.Scope) *Logger {
	return &Logger{pipeline: p, scope: scope}
}

// Enabled reports whether any registered processor wants an event of the
// given level and name from the scope. Processors that do not implement
// processor.Filter count as always enabled, so an empty chain or a chain of
// plain processors never suppresses anything.
func (p *Pipeline) Enabled(level telemetry.Severity, scopeName, eventName string) bool {
	if len(p.processors) == 0 {
		return true
	}

	for _, proc := range p.processors {
		filter, ok := proc.(processor.Filter)
		if !ok || filter.EventEnabled(level, scopeName, eventName) {
			return true
		}
	}

	return false
}
