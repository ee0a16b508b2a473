// Package kafka exports batches as OTLP-framed protobuf messages on a Kafka
// topic, one message per batch.
package kafka

import (
	"context"
	"sync"

	"github.com/hyp3rd/ewrap"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"

	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/exporter/otlp"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Config holds the producer settings for the Kafka exporter.
type Config struct {
	Brokers []string
	Topic   string
}

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Exporter publishes marshaled OTLP export requests to a topic.
type Exporter struct {
	mu       sync.Mutex
	writer   kafkaWriter
	resource *telemetry.Resource
	shutdown bool
}

var _ exporter.Exporter = (*Exporter)(nil)

// New builds an exporter producing to the configured brokers and topic.
func New(cfg Config) (*Exporter, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ewrap.New("kafka brokers are required")
	}

	if cfg.Topic == "" {
		return nil, ewrap.New("kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Exporter{writer: writer}, nil
}

// NewWith builds an exporter around an existing writer. Used by tests and by
// callers that need custom producer tuning.
func NewWith(writer kafkaWriter) *Exporter {
	return &Exporter{writer: writer}
}

// Export marshals the batch as one OTLP protobuf message and publishes it.
func (e *Exporter) Export(ctx context.Context, batch []exporter.Entry) error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()

		return ewrap.New("kafka exporter shut down")
	}

	request := otlp.RequestFromBatch(batch, e.resource)
	e.mu.Unlock()

	payload, err := proto.Marshal(request)
	if err != nil {
		return ewrap.Wrap(err, "marshal otlp request")
	}

	err = e.writer.WriteMessages(ctx, kafka.Message{Value: payload})
	if err != nil {
		return ewrap.Wrap(err, "publish batch")
	}

	return nil
}

// Shutdown closes the producer. Idempotent.
func (e *Exporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.shutdown {
		return nil
	}

	e.shutdown = true

	err := e.writer.Close()
	if err != nil {
		return ewrap.Wrap(err, "close kafka writer")
	}

	return nil
}

// SetResource replaces the resource attached to subsequent messages.
func (e *Exporter) SetResource(resource *telemetry.Resource) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resource = resource
}
