package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hyp3rd/telem/pkg/exporter/memory"
	"github.com/hyp3rd/telem/pkg/processor"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// recordingProcessor captures every call so tests can assert ordering and
// shared-pointer semantics across the chain.
type recordingProcessor struct {
	mu        sync.Mutex
	name      string
	onEmit    func(record *telemetry.Record)
	emitted   []*telemetry.Record
	flushErr  error
	closeErr  error
	flushes   int
	shutdowns int
	resource  *telemetry.Resource
	order     *[]string
}

func (p *recordingProcessor) Emit(record *telemetry.Record, _ telemetry.Scope) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.order != nil {
		*p.order = append(*p.order, p.name)
	}

	if p.onEmit != nil {
		p.onEmit(record)
	}

	p.emitted = append(p.emitted, record)
}

func (p *recordingProcessor) ForceFlush(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.flushes++

	return p.flushErr
}

func (p *recordingProcessor) Shutdown(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.shutdowns++

	return p.closeErr
}

func (p *recordingProcessor) SetResource(resource *telemetry.Resource) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resource = resource
}

func testScope() telemetry.Scope {
	return telemetry.NewScope("pipeline-test", "1.0.0")
}

func TestEmitVisitsProcessorsInRegistrationOrder(t *testing.T) {
	t.Parallel()

	var order []string

	first := &recordingProcessor{name: "first", order: &order}
	second := &recordingProcessor{name: "second", order: &order}
	third := &recordingProcessor{name: "third", order: &order}

	p := New(WithProcessor(first), WithProcessor(second), WithProcessor(third))

	record := &telemetry.Record{Body: telemetry.StringValue("hello")}
	p.Emit(record, testScope())

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), order)
	}

	for i, name := range want {
		if order[i] != name {
			t.Fatalf("call %d = %q, want %q", i, order[i], name)
		}
	}
}

func TestEmitSharesRecordAcrossChain(t *testing.T) {
	t.Parallel()

	enricher := &recordingProcessor{
		name: "enricher",
		onEmit: func(record *telemetry.Record) {
			record.AddAttribute("enriched", telemetry.BoolValue(true))
		},
	}
	observer := &recordingProcessor{name: "observer"}

	p := New(WithProcessor(enricher), WithProcessor(observer))

	record := &telemetry.Record{Body: telemetry.StringValue("payload")}
	p.Emit(record, testScope())

	if len(observer.emitted) != 1 {
		t.Fatalf("observer saw %d records, want 1", len(observer.emitted))
	}

	got := observer.emitted[0]
	if got != record {
		t.Fatal("downstream processor received a different record pointer")
	}

	attr, ok := got.Attribute("enriched")
	if !ok || !attr.AsBool() {
		t.Fatal("mutation from the upstream processor was not visible downstream")
	}
}

func TestForceFlushCallsAllAndReturnsFirstError(t *testing.T) {
	t.Parallel()

	errFirst := errors.New("first flush failed")
	errSecond := errors.New("second flush failed")

	first := &recordingProcessor{name: "first", flushErr: errFirst}
	second := &recordingProcessor{name: "second", flushErr: errSecond}
	third := &recordingProcessor{name: "third"}

	p := New(WithProcessor(first), WithProcessor(second), WithProcessor(third))

	err := p.ForceFlush(context.Background())
	if !errors.Is(err, errFirst) {
		t.Fatalf("expected the first error, got %v", err)
	}

	for _, rp := range []*recordingProcessor{first, second, third} {
		if rp.flushes != 1 {
			t.Fatalf("processor %q flushed %d times, want 1", rp.name, rp.flushes)
		}
	}
}

func TestShutdownCallsAllAndReturnsFirstError(t *testing.T) {
	t.Parallel()

	errClose := errors.New("close failed")

	first := &recordingProcessor{name: "first"}
	second := &recordingProcessor{name: "second", closeErr: errClose}
	third := &recordingProcessor{name: "third"}

	p := New(WithProcessor(first), WithProcessor(second), WithProcessor(third))

	err := p.Shutdown(context.Background())
	if !errors.Is(err, errClose) {
		t.Fatalf("expected the shutdown error, got %v", err)
	}

	for _, rp := range []*recordingProcessor{first, second, third} {
		if rp.shutdowns != 1 {
			t.Fatalf("processor %q shut down %d times, want 1", rp.name, rp.shutdowns)
		}
	}
}

func TestNewBroadcastsResource(t *testing.T) {
	t.Parallel()

	first := &recordingProcessor{name: "first"}
	second := &recordingProcessor{name: "second"}

	resource := telemetry.NewResource(
		telemetry.KeyValue{Key: "service.name", Value: telemetry.StringValue("svc")},
	)

	New(WithProcessor(first), WithProcessor(second), WithResource(resource))

	for _, rp := range []*recordingProcessor{first, second} {
		if rp.resource == nil {
			t.Fatalf("processor %q never received the resource", rp.name)
		}

		if rp.resource == resource {
			t.Fatalf("processor %q received the shared resource instead of a clone", rp.name)
		}

		if rp.resource.Len() != 1 {
			t.Fatalf("processor %q received %d attributes, want 1", rp.name, rp.resource.Len())
		}
	}
}

func TestSetResourceBroadcasts(t *testing.T) {
	t.Parallel()

	first := &recordingProcessor{name: "first"}
	second := &recordingProcessor{name: "second"}

	p := New(WithProcessor(first), WithProcessor(second))

	resource := telemetry.NewResource(
		telemetry.KeyValue{Key: "host.name", Value: telemetry.StringValue("node-7")},
	)
	p.SetResource(resource)

	for _, rp := range []*recordingProcessor{first, second} {
		if rp.resource == nil || rp.resource.Len() != 1 {
			t.Fatalf("processor %q did not receive the updated resource", rp.name)
		}
	}
}

func TestPipelineWithBatchProcessorEndToEnd(t *testing.T) {
	t.Parallel()

	sink := memory.New()
	bp := processor.NewBatchProcessor(sink, processor.WithBatchConfig(processor.BatchConfig{
		MaxQueueSize:       64,
		MaxExportBatchSize: 32,
		ScheduledDelay:     time.Hour,
		MaxExportTimeout:   time.Second,
	}))

	p := New(WithProcessor(bp))

	logger := p.Logger(telemetry.NewScope("end-to-end", ""))
	logger.Log(context.Background(), telemetry.SeverityWarn, telemetry.StringValue("disk nearly full"))

	if err := p.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush returned error: %v", err)
	}

	if got := sink.Len(); got != 1 {
		t.Fatalf("expected 1 exported record, got %d", got)
	}

	entry := sink.Entries()[0]
	if entry.Scope.Name != "end-to-end" {
		t.Fatalf("exported scope = %q, want %q", entry.Scope.Name, "end-to-end")
	}

	if entry.Record.Severity != telemetry.SeverityWarn {
		t.Fatalf("exported severity = %d, want %d", entry.Record.Severity, telemetry.SeverityWarn)
	}

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}
