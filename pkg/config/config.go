// Package config defines the configuration surface of the telemetry pipeline
// and the layered loaders that populate it.
package config

import (
	"time"
)

// Config is the canonical configuration consumed when building a pipeline.
type Config struct {
	Service  ServiceConfig  `yaml:"service"  json:"service"`
	Exporter ExporterConfig `yaml:"exporter" json:"exporter"`
	Batch    BatchSettings  `yaml:"batch"    json:"batch"`
	Logging  LoggingConfig  `yaml:"logging"  json:"logging"`
}

// ServiceConfig captures metadata published as the pipeline resource.
type ServiceConfig struct {
	Name        string            `yaml:"name"        json:"name"`
	Namespace   string            `yaml:"namespace"   json:"namespace"`
	Version     string            `yaml:"version"     json:"version"`
	Environment string            `yaml:"environment" json:"environment"`
	Attributes  map[string]string `yaml:"attributes"  json:"attributes"`
}

// ExporterConfig selects and configures the export destination.
type ExporterConfig struct {
	// Kind is one of "stdout", "otlp", or "kafka".
	Kind  string       `yaml:"kind"  json:"kind"`
	OTLP  *OTLPConfig  `yaml:"otlp"  json:"otlp"`
	Kafka *KafkaConfig `yaml:"kafka" json:"kafka"`
}

// OTLPConfig defines gRPC export settings.
type OTLPConfig struct {
	Endpoint string            `yaml:"endpoint" json:"endpoint"`
	Insecure bool              `yaml:"insecure" json:"insecure"`
	Headers  map[string]string `yaml:"headers"  json:"headers"`
}

// KafkaConfig defines topic producer settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" json:"brokers"`
	Topic   string   `yaml:"topic"   json:"topic"`
}

// BatchSettings controls the batching processor. Disabled means records are
// exported synchronously through the simple processor instead.
type BatchSettings struct {
	Enabled            bool          `yaml:"enabled"               json:"enabled"`
	MaxQueueSize       int           `yaml:"max_queue_size"        json:"max_queue_size"`
	ScheduleDelay      time.Duration `yaml:"schedule_delay"        json:"schedule_delay"`
	MaxExportBatchSize int           `yaml:"max_export_batch_size" json:"max_export_batch_size"`
	ExportTimeout      time.Duration `yaml:"export_timeout"        json:"export_timeout"`
}

// LoggingConfig controls the pipeline's own diagnostic logging.
type LoggingConfig struct {
	Level   string `yaml:"level"   json:"level"`
	Format  string `yaml:"format"  json:"format"`
	Adapter string `yaml:"adapter" json:"adapter"`
}
