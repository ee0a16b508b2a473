package processor

import (
	"testing"
	"time"
)

func TestDefaultBatchConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultBatchConfig()

	if cfg.MaxQueueSize != DefaultMaxQueueSize {
		t.Fatalf("MaxQueueSize = %d, want %d", cfg.MaxQueueSize, DefaultMaxQueueSize)
	}

	if cfg.ScheduledDelay != DefaultScheduledDelay {
		t.Fatalf("ScheduledDelay = %s, want %s", cfg.ScheduledDelay, DefaultScheduledDelay)
	}

	if cfg.MaxExportBatchSize != DefaultMaxExportBatchSize {
		t.Fatalf("MaxExportBatchSize = %d, want %d", cfg.MaxExportBatchSize, DefaultMaxExportBatchSize)
	}

	if cfg.MaxExportTimeout != DefaultMaxExportTimeout {
		t.Fatalf("MaxExportTimeout = %s, want %s", cfg.MaxExportTimeout, DefaultMaxExportTimeout)
	}
}

func TestBatchConfigBuilderClampsBatchSize(t *testing.T) {
	t.Parallel()

	cfg := NewBatchConfigBuilder().
		WithMaxQueueSize(10).
		WithMaxExportBatchSize(50).
		Build()

	if cfg.MaxExportBatchSize != 10 {
		t.Fatalf("MaxExportBatchSize = %d, want clamp to queue size 10", cfg.MaxExportBatchSize)
	}

	if cfg.MaxQueueSize != 10 {
		t.Fatalf("MaxQueueSize = %d, want 10", cfg.MaxQueueSize)
	}
}

func TestBatchConfigBuilderIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	cfg := NewBatchConfigBuilder().
		WithMaxQueueSize(0).
		WithMaxQueueSize(-1).
		WithScheduledDelay(0).
		WithScheduledDelay(-time.Second).
		WithMaxExportBatchSize(-5).
		WithMaxExportTimeout(0).
		Build()

	if cfg != DefaultBatchConfig() {
		t.Fatalf("non-positive settings leaked into config: %+v", cfg)
	}
}

func TestBatchConfigEnvOverrides(t *testing.T) {
	t.Setenv("TELEM_BATCH_MAX_QUEUE_SIZE", "4096")
	t.Setenv("TELEM_BATCH_SCHEDULE_DELAY", "250")
	t.Setenv("TELEM_BATCH_MAX_EXPORT_BATCH_SIZE", "128")
	t.Setenv("TELEM_BATCH_EXPORT_TIMEOUT", "5000")

	cfg := NewBatchConfigBuilder().Build()

	if cfg.MaxQueueSize != 4096 {
		t.Fatalf("MaxQueueSize = %d, want 4096", cfg.MaxQueueSize)
	}

	if cfg.ScheduledDelay != 250*time.Millisecond {
		t.Fatalf("ScheduledDelay = %s, want 250ms", cfg.ScheduledDelay)
	}

	if cfg.MaxExportBatchSize != 128 {
		t.Fatalf("MaxExportBatchSize = %d, want 128", cfg.MaxExportBatchSize)
	}

	if cfg.MaxExportTimeout != 5*time.Second {
		t.Fatalf("MaxExportTimeout = %s, want 5s", cfg.MaxExportTimeout)
	}
}

func TestBatchConfigEnvBeatenBySetters(t *testing.T) {
	t.Setenv("TELEM_BATCH_MAX_QUEUE_SIZE", "4096")

	cfg := NewBatchConfigBuilder().
		WithMaxQueueSize(77).
		Build()

	if cfg.MaxQueueSize != 77 {
		t.Fatalf("MaxQueueSize = %d, want explicit setter to win over env", cfg.MaxQueueSize)
	}
}

func TestBatchConfigEnvInvalidIgnored(t *testing.T) {
	t.Setenv("TELEM_BATCH_MAX_QUEUE_SIZE", "not-a-number")
	t.Setenv("TELEM_BATCH_SCHEDULE_DELAY", "-100")
	t.Setenv("TELEM_BATCH_MAX_EXPORT_BATCH_SIZE", "0")
	t.Setenv("TELEM_BATCH_EXPORT_TIMEOUT", "")

	cfg := NewBatchConfigBuilder().Build()

	if cfg != DefaultBatchConfig() {
		t.Fatalf("invalid env values leaked into config: %+v", cfg)
	}
}

func TestBatchConfigEnvClampStillApplies(t *testing.T) {
	t.Setenv("TELEM_BATCH_MAX_QUEUE_SIZE", "100")
	t.Setenv("TELEM_BATCH_MAX_EXPORT_BATCH_SIZE", "500")

	cfg := NewBatchConfigBuilder().Build()

	if cfg.MaxExportBatchSize != 100 {
		t.Fatalf("MaxExportBatchSize = %d, want clamp to env queue size 100", cfg.MaxExportBatchSize)
	}
}
