package config

import (
	"github.com/hyp3rd/telem/internal/constants"
)

// DefaultConfig returns a Config populated with production-safe defaults:
// batched export to stdout with the standard batching knobs.
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Name:        "telem-service",
			Namespace:   "default",
			Version:     "0.0.1",
			Environment: "development",
			Attributes:  map[string]string{},
		},
		Exporter: ExporterConfig{
			Kind: "stdout",
		},
		Batch: BatchSettings{
			Enabled:            true,
			MaxQueueSize:       constants.DefaultBatchMaxQueueSize,
			ScheduleDelay:      constants.DefaultBatchScheduledDelay,
			MaxExportBatchSize: constants.DefaultBatchMaxExportBatchSize,
			ExportTimeout:      constants.DefaultBatchMaxExportTimeout,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "json",
			Adapter: "slog",
		},
	}
}
