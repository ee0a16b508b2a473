package config

import "github.com/hyp3rd/ewrap"

// Validate asserts that the config meets baseline expectations.
func Validate(cfg Config) error {
	if cfg.Service.Name == "" {
		return invalidConfigError("service.name is required")
	}

	switch cfg.Exporter.Kind {
	case "stdout":
	case "otlp":
		if cfg.Exporter.OTLP == nil || cfg.Exporter.OTLP.Endpoint == "" {
			return invalidConfigError("exporter.otlp.endpoint is required")
		}
	case "kafka":
		if cfg.Exporter.Kafka == nil || len(cfg.Exporter.Kafka.Brokers) == 0 {
			return invalidConfigError("exporter.kafka.brokers is required")
		}

		if cfg.Exporter.Kafka.Topic == "" {
			return invalidConfigError("exporter.kafka.topic is required")
		}
	default:
		return invalidConfigError("unsupported exporter.kind %q", cfg.Exporter.Kind)
	}

	return nil
}

func invalidConfigError(format string, args ...any) error {
	return ewrap.Newf("invalid configuration: "+format, args...)
}
