package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/protobuf/proto"

	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

type fakeWriter struct {
	messages []kafkago.Message
	writeErr error
	closed   int
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.writeErr != nil {
		return f.writeErr
	}

	f.messages = append(f.messages, msgs...)

	return nil
}

func (f *fakeWriter) Close() error {
	f.closed++

	return nil
}

func sampleBatch() []exporter.Entry {
	return []exporter.Entry{
		{
			Record: telemetry.Record{
				Severity: telemetry.SeverityInfo,
				Body:     telemetry.StringValue("kafka-bound"),
			},
			Scope: telemetry.NewScope("kafka-test", "1.0.0"),
		},
	}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Topic: "logs"}); err == nil {
		t.Fatal("expected an error for missing brokers")
	}

	if _, err := New(Config{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Fatal("expected an error for missing topic")
	}

	exp, err := New(Config{Brokers: []string{"localhost:9092"}, Topic: "logs"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if exp == nil {
		t.Fatal("New returned nil exporter")
	}
}

func TestExportPublishesOneMessagePerBatch(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	exp := NewWith(writer)
	exp.SetResource(telemetry.NewResource(
		telemetry.KeyValue{Key: "service.name", Value: telemetry.StringValue("svc")},
	))

	if err := exp.Export(context.Background(), sampleBatch()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(writer.messages))
	}

	var request collogspb.ExportLogsServiceRequest
	if err := proto.Unmarshal(writer.messages[0].Value, &request); err != nil {
		t.Fatalf("payload is not a valid OTLP request: %v", err)
	}

	if len(request.ResourceLogs) != 1 {
		t.Fatalf("ResourceLogs = %d, want 1", len(request.ResourceLogs))
	}

	records := request.ResourceLogs[0].ScopeLogs[0].LogRecords
	if len(records) != 1 || records[0].Body.GetStringValue() != "kafka-bound" {
		t.Fatalf("unexpected log records: %v", records)
	}

	if request.ResourceLogs[0].Resource.Attributes[0].Value.GetStringValue() != "svc" {
		t.Fatal("resource did not reach the payload")
	}
}

func TestExportPropagatesWriteError(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("broker unreachable")
	exp := NewWith(&fakeWriter{writeErr: writeErr})

	err := exp.Export(context.Background(), sampleBatch())
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected the write error, got %v", err)
	}
}

func TestShutdownClosesWriterOnce(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	exp := NewWith(writer)

	if err := exp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}

	if err := exp.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown returned error: %v", err)
	}

	if writer.closed != 1 {
		t.Fatalf("writer closed %d times, want 1", writer.closed)
	}

	if err := exp.Export(context.Background(), sampleBatch()); err == nil {
		t.Fatal("expected export after shutdown to fail")
	}
}
