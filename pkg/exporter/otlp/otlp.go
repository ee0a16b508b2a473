// Package otlp exports batches over OTLP/gRPC to a collector endpoint, and
// provides the record-to-OTLP wire transform shared with other OTLP-framed
// exporters.
package otlp

import (
	"context"
	"sync"

	"github.com/hyp3rd/ewrap"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Config holds the dial settings for the OTLP exporter.
type Config struct {
	// Endpoint is the collector host:port.
	Endpoint string

	// Insecure disables transport security.
	Insecure bool

	// Headers are attached to every export request as gRPC metadata.
	Headers map[string]string
}

// Exporter sends batches to an OTLP logs collector over gRPC.
type Exporter struct {
	mu       sync.Mutex
	client   collogspb.LogsServiceClient
	conn     *grpc.ClientConn
	headers  map[string]string
	resource *telemetry.Resource
	shutdown bool
}

var _ exporter.Exporter = (*Exporter)(nil)

// New dials the collector endpoint. The connection is lazy; dial errors
// surface on the first export.
func New(cfg Config) (*Exporter, error) {
	if cfg.Endpoint == "" {
		return nil, ewrap.New("otlp endpoint is required")
	}

	creds := credentials.NewTLS(nil)
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}

	conn, err := grpc.NewClient(cfg.Endpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, ewrap.Wrapf(err, "dial otlp endpoint %q", cfg.Endpoint)
	}

	return &Exporter{
		client:  collogspb.NewLogsServiceClient(conn),
		conn:    conn,
		headers: cfg.Headers,
	}, nil
}

// Export converts the batch to OTLP and sends it. The caller's context
// carries the export deadline.
func (e *Exporter) Export(ctx context.Context, batch []exporter.Entry) error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()

		return ewrap.New("otlp exporter shut down")
	}

	request := RequestFromBatch(batch, e.resource)
	e.mu.Unlock()

	if len(e.headers) > 0 {
		ctx = metadata.NewOutgoingContext(ctx, metadata.New(e.headers))
	}

	_, err := e.client.Export(ctx, request)
	if err != nil {
		return ewrap.Wrap(err, "otlp export")
	}

	return nil
}

// Shutdown closes the underlying connection. Idempotent.
func (e *Exporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.shutdown {
		return nil
	}

	e.shutdown = true

	if e.conn != nil {
		err := e.conn.Close()
		if err != nil {
			return ewrap.Wrap(err, "close otlp connection")
		}
	}

	return nil
}

// SetResource replaces the resource attached to subsequent requests.
func (e *Exporter) SetResource(resource *telemetry.Resource) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resource = resource
}
