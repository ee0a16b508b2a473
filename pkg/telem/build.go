package telem

import (
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/pkg/config"
	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/exporter/kafka"
	"github.com/hyp3rd/telem/pkg/exporter/otlp"
	"github.com/hyp3rd/telem/pkg/exporter/writer"
	"github.com/hyp3rd/telem/pkg/pipeline"
	"github.com/hyp3rd/telem/pkg/processor"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

func buildPipeline(cfg config.Config, settings options) (*pipeline.Pipeline, error) {
	exp := settings.exporterOverride
	if exp == nil {
		built, err := buildExporter(cfg.Exporter)
		if err != nil {
			return nil, err
		}

		exp = built
	}

	opts := make([]pipeline.Option, 0, len(settings.extraProcessors)+2)
	for _, proc := range settings.extraProcessors {
		opts = append(opts, pipeline.WithProcessor(proc))
	}

	opts = append(opts,
		pipeline.WithProcessor(buildExportProcessor(cfg.Batch, exp)),
		pipeline.WithResource(resourceFromService(cfg.Service)),
	)

	return pipeline.New(opts...), nil
}

func buildExporter(cfg config.ExporterConfig) (exporter.Exporter, error) {
	switch cfg.Kind {
	case "otlp":
		exp, err := otlp.New(otlp.Config{
			Endpoint: cfg.OTLP.Endpoint,
			Insecure: cfg.OTLP.Insecure,
			Headers:  cfg.OTLP.Headers,
		})
		if err != nil {
			return nil, ewrap.Wrap(err, "build otlp exporter")
		}

		return exp, nil
	case "kafka":
		exp, err := kafka.New(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if err != nil {
			return nil, ewrap.Wrap(err, "build kafka exporter")
		}

		return exp, nil
	case "stdout":
		return writer.New(nil), nil
	default:
		return nil, ewrap.Newf("unsupported exporter kind %q", cfg.Kind)
	}
}

func buildExportProcessor(cfg config.BatchSettings, exp exporter.Exporter) processor.Processor {
	if !cfg.Enabled {
		return processor.NewSimpleProcessor(exp)
	}

	batchCfg := processor.NewBatchConfigBuilder().
		WithMaxQueueSize(cfg.MaxQueueSize).
		WithScheduledDelay(cfg.ScheduleDelay).
		WithMaxExportBatchSize(cfg.MaxExportBatchSize).
		WithMaxExportTimeout(cfg.ExportTimeout).
		Build()

	return processor.NewBatchProcessor(exp, processor.WithBatchConfig(batchCfg))
}

func resourceFromService(svc config.ServiceConfig) *telemetry.Resource {
	attrs := make([]telemetry.KeyValue, 0, len(svc.Attributes)+4)
	attrs = append(attrs,
		telemetry.KeyValue{Key: "service.name", Value: telemetry.StringValue(svc.Name)},
	)

	if svc.Namespace != "" {
		attrs = append(attrs, telemetry.KeyValue{Key: "service.namespace", Value: telemetry.StringValue(svc.Namespace)})
	}

	if svc.Version != "" {
		attrs = append(attrs, telemetry.KeyValue{Key: "service.version", Value: telemetry.StringValue(svc.Version)})
	}

	if svc.Environment != "" {
		attrs = append(attrs, telemetry.KeyValue{Key: "deployment.environment", Value: telemetry.StringValue(svc.Environment)})
	}

	for key, value := range svc.Attributes {
		attrs = append(attrs, telemetry.KeyValue{Key: key, Value: telemetry.StringValue(value)})
	}

	return telemetry.NewResource(attrs...)
}
