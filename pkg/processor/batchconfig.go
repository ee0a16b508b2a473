package processor

import (
	"os"
	"strconv"
	"time"

	"github.com/hyp3rd/telem/internal/constants"
)

// Defaults for BatchConfig, overridable through the TELEM_BATCH_* environment
// variables at construction time.
const (
	DefaultMaxQueueSize       = constants.DefaultBatchMaxQueueSize
	DefaultScheduledDelay     = constants.DefaultBatchScheduledDelay
	DefaultMaxExportBatchSize = constants.DefaultBatchMaxExportBatchSize
	DefaultMaxExportTimeout   = constants.DefaultBatchMaxExportTimeout

	envMaxQueueSize       = "TELEM_BATCH_MAX_QUEUE_SIZE"
	envScheduledDelay     = "TELEM_BATCH_SCHEDULE_DELAY"
	envMaxExportBatchSize = "TELEM_BATCH_MAX_EXPORT_BATCH_SIZE"
	envMaxExportTimeout   = "TELEM_BATCH_EXPORT_TIMEOUT"
)

// BatchConfig holds the validated knobs of a BatchProcessor. Build one
// through NewBatchConfigBuilder; a built config always satisfies
// MaxExportBatchSize <= MaxQueueSize.
type BatchConfig struct {
	// MaxQueueSize bounds the number of records waiting for the worker.
	// Records emitted while the queue is full are dropped.
	MaxQueueSize int

	// ScheduledDelay is the period of the timer that triggers exports
	// regardless of batch size.
	ScheduledDelay time.Duration

	// MaxExportBatchSize is the buffer length that triggers an immediate
	// export, independent of the timer.
	MaxExportBatchSize int

	// MaxExportTimeout is the hard deadline imposed on every exporter call.
	MaxExportTimeout time.Duration
}

// DefaultBatchConfig returns the config produced by an untouched builder:
// compiled defaults overlaid with any valid environment overrides.
func DefaultBatchConfig() BatchConfig {
	return NewBatchConfigBuilder().Build()
}

// BatchConfigBuilder assembles a BatchConfig. The zero value is not usable;
// obtain builders from NewBatchConfigBuilder.
type BatchConfigBuilder struct {
	maxQueueSize       int
	scheduledDelay     time.Duration
	maxExportBatchSize int
	maxExportTimeout   time.Duration
}

// NewBatchConfigBuilder starts from the compiled defaults and then applies
// environment overrides. Unparseable or non-positive environment values are
// ignored in favor of the default; configuration can degrade but never fail.
func NewBatchConfigBuilder() *BatchConfigBuilder {
	builder := &BatchConfigBuilder{
		maxQueueSize:       DefaultMaxQueueSize,
		scheduledDelay:     DefaultScheduledDelay,
		maxExportBatchSize: DefaultMaxExportBatchSize,
		maxExportTimeout:   DefaultMaxExportTimeout,
	}

	return builder.applyEnv()
}

// WithMaxQueueSize sets the queue bound. Non-positive values are ignored.
func (b *BatchConfigBuilder) WithMaxQueueSize(size int) *BatchConfigBuilder {
	if size > 0 {
		b.maxQueueSize = size
	}

	return b
}

// WithScheduledDelay sets the export timer period. Non-positive values are
// ignored.
func (b *BatchConfigBuilder) WithScheduledDelay(delay time.Duration) *BatchConfigBuilder {
	if delay > 0 {
		b.scheduledDelay = delay
	}

	return b
}

// WithMaxExportBatchSize sets the size-trigger threshold. Non-positive values
// are ignored; values above the queue size are clamped at Build time.
func (b *BatchConfigBuilder) WithMaxExportBatchSize(size int) *BatchConfigBuilder {
	if size > 0 {
		b.maxExportBatchSize = size
	}

	return b
}

// WithMaxExportTimeout sets the per-export deadline. Non-positive values are
// ignored.
func (b *BatchConfigBuilder) WithMaxExportTimeout(timeout time.Duration) *BatchConfigBuilder {
	if timeout > 0 {
		b.maxExportTimeout = timeout
	}

	return b
}

// Build finalizes the config. The batch size is silently clamped to the queue
// size so the invariant holds for every constructed config.
func (b *BatchConfigBuilder) Build() BatchConfig {
	maxExportBatchSize := b.maxExportBatchSize
	if maxExportBatchSize > b.maxQueueSize {
		maxExportBatchSize = b.maxQueueSize
	}

	return BatchConfig{
		MaxQueueSize:       b.maxQueueSize,
		ScheduledDelay:     b.scheduledDelay,
		MaxExportBatchSize: maxExportBatchSize,
		MaxExportTimeout:   b.maxExportTimeout,
	}
}

func (b *BatchConfigBuilder) applyEnv() *BatchConfigBuilder {
	if size, ok := envInt(envMaxQueueSize); ok {
		b.maxQueueSize = size
	}

	if size, ok := envInt(envMaxExportBatchSize); ok {
		b.maxExportBatchSize = size
	}

	if millis, ok := envInt(envScheduledDelay); ok {
		b.scheduledDelay = time.Duration(millis) * time.Millisecond
	}

	if millis, ok := envInt(envMaxExportTimeout); ok {
		b.maxExportTimeout = time.Duration(millis) * time.Millisecond
	}

	return b
}

func envInt(key string) (int, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, false
	}

	return value, true
}
