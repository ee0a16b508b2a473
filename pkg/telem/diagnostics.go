package telem

import (
	"strings"

	"github.com/hyp3rd/telem/pkg/diagnostics"
)

// Snapshot implements diagnostics.SnapshotProvider, exposing the active
// configuration and reload history for the status endpoint.
func (c *Client) Snapshot() diagnostics.Snapshot {
	c.mu.RLock()
	cfg := c.cfg
	startTime := c.startTime
	lastReload := c.lastReload
	reloads := c.reloadCount
	c.mu.RUnlock()

	info := diagnostics.ExporterInfo{Kind: cfg.Exporter.Kind}

	switch cfg.Exporter.Kind {
	case "otlp":
		if cfg.Exporter.OTLP != nil {
			info.Endpoint = cfg.Exporter.OTLP.Endpoint
		}
	case "kafka":
		if cfg.Exporter.Kafka != nil {
			info.Endpoint = strings.Join(cfg.Exporter.Kafka.Brokers, ",")
		}
	}

	return diagnostics.Snapshot{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		Exporter:       info,
		Batch: diagnostics.BatchInfo{
			Enabled:            cfg.Batch.Enabled,
			MaxQueueSize:       cfg.Batch.MaxQueueSize,
			ScheduleDelayMs:    cfg.Batch.ScheduleDelay.Milliseconds(),
			MaxExportBatchSize: cfg.Batch.MaxExportBatchSize,
			ExportTimeoutMs:    cfg.Batch.ExportTimeout.Milliseconds(),
		},
		StartTime:         startTime,
		LastReloadTime:    lastReload,
		ConfigReloadCount: reloads,
	}
}
