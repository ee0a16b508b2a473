package telem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyp3rd/telem/pkg/config"
	"github.com/hyp3rd/telem/pkg/exporter/memory"
	"github.com/hyp3rd/telem/pkg/logging"
	"github.com/hyp3rd/telem/pkg/processor"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Service.Name = "client-test"
	cfg.Batch.ScheduleDelay = time.Hour

	return cfg
}

func TestInitEmitFlush(t *testing.T) {
	t.Parallel()

	sink := memory.New()

	client, err := Init(context.Background(),
		WithConfig(testConfig()),
		WithExporter(sink),
		WithLogger(logging.NewNoopAdapter()),
	)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	logger := client.Logger("client-test-scope", "1.0.0")
	logger.Log(context.Background(), telemetry.SeverityInfo, telemetry.StringValue("hello"))

	if err := client.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush returned error: %v", err)
	}

	if sink.Len() != 1 {
		t.Fatalf("exported %d records, want 1", sink.Len())
	}

	entry := sink.Entries()[0]
	if entry.Scope.Name != "client-test-scope" {
		t.Fatalf("scope = %q", entry.Scope.Name)
	}

	if err := client.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}

func TestInitAttachesServiceResource(t *testing.T) {
	t.Parallel()

	sink := memory.New()

	cfg := testConfig()
	cfg.Service.Environment = "staging"
	cfg.Service.Attributes = map[string]string{"team": "platform"}

	client, err := Init(context.Background(),
		WithConfig(cfg),
		WithExporter(sink),
		WithLogger(logging.NewNoopAdapter()),
	)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	defer func() { _ = client.Shutdown(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for sink.Resource() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	resource := sink.Resource()
	if resource == nil {
		t.Fatal("resource never reached the exporter")
	}

	name, _ := resource.Get("service.name")
	if name.AsString() != "client-test" {
		t.Fatalf("service.name = %q", name.AsString())
	}

	env, _ := resource.Get("deployment.environment")
	if env.AsString() != "staging" {
		t.Fatalf("deployment.environment = %q", env.AsString())
	}

	team, _ := resource.Get("team")
	if team.AsString() != "platform" {
		t.Fatalf("team = %q", team.AsString())
	}
}

type redactingProcessor struct{}

var _ processor.Processor = (*redactingProcessor)(nil)

func (p *redactingProcessor) Emit(record *telemetry.Record, _ telemetry.Scope) {
	record.AddAttribute("redacted", telemetry.BoolValue(true))
}

func (p *redactingProcessor) ForceFlush(context.Context) error { return nil }

func (p *redactingProcessor) Shutdown(context.Context) error { return nil }

func (p *redactingProcessor) SetResource(*telemetry.Resource) {}

func TestExtraProcessorsRunBeforeExport(t *testing.T) {
	t.Parallel()

	sink := memory.New()

	client, err := Init(context.Background(),
		WithConfig(testConfig()),
		WithExporter(sink),
		WithProcessors(&redactingProcessor{}),
		WithLogger(logging.NewNoopAdapter()),
	)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	client.Logger("scope", "").Log(context.Background(), telemetry.SeverityInfo, telemetry.StringValue("event"))

	if err := client.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush returned error: %v", err)
	}

	entries := sink.Entries()
	if len(entries) != 1 {
		t.Fatalf("exported %d records, want 1", len(entries))
	}

	flag, ok := entries[0].Record.Attribute("redacted")
	if !ok || !flag.AsBool() {
		t.Fatal("extra processor mutation did not reach the exporter")
	}

	if err := client.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}

func TestSimpleProcessorWhenBatchingDisabled(t *testing.T) {
	t.Parallel()

	sink := memory.New()

	cfg := testConfig()
	cfg.Batch.Enabled = false

	client, err := Init(context.Background(),
		WithConfig(cfg),
		WithExporter(sink),
		WithLogger(logging.NewNoopAdapter()),
	)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	defer func() { _ = client.Shutdown(context.Background()) }()

	client.Logger("scope", "").Log(context.Background(), telemetry.SeverityInfo, telemetry.StringValue("sync"))

	// No flush: the simple processor exports on the caller's goroutine.
	if sink.Len() != 1 {
		t.Fatalf("exported %d records, want 1 without a flush", sink.Len())
	}
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Service.Name = ""

	_, err := Init(context.Background(), WithConfig(cfg), WithLogger(logging.NewNoopAdapter()))
	if err == nil {
		t.Fatal("expected an error for an invalid config")
	}
}

func TestSnapshotReflectsConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Exporter.Kind = "otlp"
	cfg.Exporter.OTLP = &config.OTLPConfig{Endpoint: "collector:4317", Insecure: true}

	client, err := Init(context.Background(),
		WithConfig(cfg),
		WithExporter(memory.New()),
		WithLogger(logging.NewNoopAdapter()),
	)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	defer func() { _ = client.Shutdown(context.Background()) }()

	snapshot := client.Snapshot()

	if snapshot.ServiceName != "client-test" {
		t.Fatalf("service name = %q", snapshot.ServiceName)
	}

	if snapshot.Exporter.Kind != "otlp" || snapshot.Exporter.Endpoint != "collector:4317" {
		t.Fatalf("exporter info = %+v", snapshot.Exporter)
	}

	if !snapshot.Batch.Enabled || snapshot.Batch.MaxQueueSize != cfg.Batch.MaxQueueSize {
		t.Fatalf("batch info = %+v", snapshot.Batch)
	}

	if snapshot.StartTime.IsZero() {
		t.Fatal("start time missing")
	}

	if snapshot.ConfigReloadCount != 0 {
		t.Fatalf("reload count = %d for a fresh client", snapshot.ConfigReloadCount)
	}
}

func TestConfigWatcherReloadsPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "telem.yaml")

	write := func(name string) {
		t.Helper()

		data := []byte("service:\n  name: " + name + "\nbatch:\n  enabled: false\n")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	write("before-reload")

	client, err := Init(context.Background(),
		WithLoaders(config.FileLoader{Path: path}),
		WithConfigWatcher(true),
		WithLogger(logging.NewNoopAdapter()),
	)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	defer func() { _ = client.Shutdown(context.Background()) }()

	if got := client.Config().Service.Name; got != "before-reload" {
		t.Fatalf("service.name = %q", got)
	}

	write("after-reload")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if client.Config().Service.Name == "after-reload" {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("pipeline was not rebuilt; service.name still %q", client.Config().Service.Name)
}
