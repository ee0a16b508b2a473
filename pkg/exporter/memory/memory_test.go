package memory

import (
	"context"
	"testing"

	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

func batchOf(bodies ...string) []exporter.Entry {
	batch := make([]exporter.Entry, 0, len(bodies))
	for _, body := range bodies {
		batch = append(batch, exporter.Entry{
			Record: telemetry.Record{Body: telemetry.StringValue(body)},
			Scope:  telemetry.NewScope("memory-test", ""),
		})
	}

	return batch
}

func TestExportAccumulates(t *testing.T) {
	t.Parallel()

	exp := New()

	if err := exp.Export(context.Background(), batchOf("a", "b")); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	if err := exp.Export(context.Background(), batchOf("c")); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	if exp.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", exp.Len())
	}

	if exp.Batches() != 2 {
		t.Fatalf("Batches() = %d, want 2", exp.Batches())
	}

	entries := exp.Entries()
	if entries[2].Record.Body.AsString() != "c" {
		t.Fatalf("entry order lost: %q", entries[2].Record.Body.AsString())
	}

	// Entries returns a copy; mutating it must not affect the exporter.
	entries[0].Record.Body = telemetry.StringValue("mutated")
	if exp.Entries()[0].Record.Body.AsString() != "a" {
		t.Fatal("Entries leaked internal storage")
	}
}

func TestExportAfterShutdownFails(t *testing.T) {
	t.Parallel()

	exp := New()

	if err := exp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}

	if err := exp.Export(context.Background(), batchOf("late")); err == nil {
		t.Fatal("expected export after shutdown to fail")
	}

	if exp.Len() != 0 {
		t.Fatal("record accepted after shutdown")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	exp := New()

	_ = exp.Export(context.Background(), batchOf("a"))
	exp.SetResource(telemetry.NewResource(telemetry.KeyValue{Key: "k", Value: telemetry.IntValue(1)}))

	exp.Reset()

	if exp.Len() != 0 || exp.Batches() != 0 {
		t.Fatal("Reset did not clear captured batches")
	}

	// The resource survives a reset; it is configuration, not captured data.
	if exp.Resource() == nil {
		t.Fatal("Reset discarded the resource")
	}

	if err := exp.Export(context.Background(), batchOf("after-reset")); err != nil {
		t.Fatalf("Export after Reset returned error: %v", err)
	}

	if exp.Len() != 1 {
		t.Fatalf("Len() = %d after reset, want 1", exp.Len())
	}
}
