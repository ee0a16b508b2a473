// Package constants provides common constants used across the telem project.
package constants

import "time"

const (
	// DefaultFlushTimeout bounds client-initiated force flushes.
	DefaultFlushTimeout = 10 * time.Second
	// DefaultShutdownTimeout is the default timeout for shutdown operations.
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultReadHeaderTimeout bounds header reads on the diagnostics server.
	DefaultReadHeaderTimeout = 10 * time.Second
)

// Batch processor defaults shared by the processor and config packages.
const (
	DefaultBatchMaxQueueSize       = 2048
	DefaultBatchScheduledDelay     = 1000 * time.Millisecond
	DefaultBatchMaxExportBatchSize = 512
	DefaultBatchMaxExportTimeout   = 30000 * time.Millisecond
)
