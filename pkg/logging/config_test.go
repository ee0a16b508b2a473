package logging

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hyp3rd/telem/pkg/config"
)

type countingAdapter struct {
	mu     sync.Mutex
	debugs int
	infos  int
	warns  int
	errors int
}

func (c *countingAdapter) Debug(context.Context, string, ...attribute.KeyValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.debugs++
}

func (c *countingAdapter) Info(context.Context, string, ...attribute.KeyValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.infos++
}

func (c *countingAdapter) Warn(context.Context, string, ...attribute.KeyValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.warns++
}

func (c *countingAdapter) Error(context.Context, error, string, ...attribute.KeyValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors++
}

func TestFromConfigAdapterSelection(t *testing.T) {
	t.Parallel()

	if _, ok := buildBaseAdapter(config.LoggingConfig{Adapter: "none"}).(NoopAdapter); !ok {
		t.Fatal("adapter none should yield the noop adapter")
	}

	// Unknown adapters fall back to slog rather than failing.
	if _, ok := buildBaseAdapter(config.LoggingConfig{Adapter: "unknown"}).(*SlogAdapter); !ok {
		t.Fatal("unknown adapter should fall back to slog")
	}

	if _, ok := buildBaseAdapter(config.LoggingConfig{Adapter: "zerolog"}).(*ZerologAdapter); !ok {
		t.Fatal("zerolog adapter missing")
	}

	if _, ok := buildBaseAdapter(config.LoggingConfig{Adapter: "zap"}).(*ZapAdapter); !ok {
		t.Fatal("zap adapter missing")
	}
}

func TestLevelFilterSuppressesBelowMinimum(t *testing.T) {
	t.Parallel()

	counter := &countingAdapter{}
	filtered := applyLevelFilter(counter, "warn")

	ctx := context.Background()
	filtered.Debug(ctx, "d")
	filtered.Info(ctx, "i")
	filtered.Warn(ctx, "w")
	filtered.Error(ctx, nil, "e")

	if counter.debugs != 0 || counter.infos != 0 {
		t.Fatalf("levels below warn leaked: %d debug, %d info", counter.debugs, counter.infos)
	}

	if counter.warns != 1 {
		t.Fatalf("warns = %d, want 1", counter.warns)
	}

	// Errors always pass the filter.
	if counter.errors != 1 {
		t.Fatalf("errors = %d, want 1", counter.errors)
	}
}

func TestLevelFilterDebugPassesEverything(t *testing.T) {
	t.Parallel()

	counter := &countingAdapter{}
	filtered := applyLevelFilter(counter, "debug")

	ctx := context.Background()
	filtered.Debug(ctx, "d")
	filtered.Info(ctx, "i")

	if counter.debugs != 1 || counter.infos != 1 {
		t.Fatalf("debug level filtered calls: %d debug, %d info", counter.debugs, counter.infos)
	}
}
