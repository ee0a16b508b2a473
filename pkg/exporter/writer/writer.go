// Package writer provides an exporter that encodes each batch as JSON lines
// on an io.Writer, stdout by default. Intended for development and
// debugging, not for high-volume production export.
package writer

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Exporter writes one JSON object per record.
type Exporter struct {
	mu       sync.Mutex
	out      io.Writer
	resource *telemetry.Resource
	shutdown atomic.Bool
}

var _ exporter.Exporter = (*Exporter)(nil)

// New returns an exporter writing to out. A nil out defaults to stdout.
func New(out io.Writer) *Exporter {
	if out == nil {
		out = os.Stdout
	}

	return &Exporter{out: out}
}

type line struct {
	Timestamp         time.Time         `json:"timestamp,omitzero"`
	ObservedTimestamp time.Time         `json:"observed_timestamp,omitzero"`
	Severity          string            `json:"severity,omitempty"`
	SeverityNumber    int               `json:"severity_number,omitempty"`
	Body              any               `json:"body,omitempty"`
	Attributes        map[string]any    `json:"attributes,omitempty"`
	TraceID           string            `json:"trace_id,omitempty"`
	SpanID            string            `json:"span_id,omitempty"`
	Scope             map[string]string `json:"scope,omitempty"`
	Resource          map[string]any    `json:"resource,omitempty"`
}

// Export encodes the batch as JSON lines.
func (e *Exporter) Export(_ context.Context, batch []exporter.Entry) error {
	if e.shutdown.Load() {
		return ewrap.New("writer exporter shut down")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	encoder := json.NewEncoder(e.out)

	for _, entry := range batch {
		err := encoder.Encode(e.toLine(entry))
		if err != nil {
			return ewrap.Wrap(err, "encode record")
		}
	}

	return nil
}

// Shutdown makes further Export calls fail. Idempotent.
func (e *Exporter) Shutdown(context.Context) error {
	e.shutdown.Store(true)

	return nil
}

// SetResource replaces the resource attached to subsequent lines.
func (e *Exporter) SetResource(resource *telemetry.Resource) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resource = resource
}

func (e *Exporter) toLine(entry exporter.Entry) line {
	record := entry.Record

	out := line{
		Timestamp:         record.Timestamp,
		ObservedTimestamp: record.ObservedTimestamp,
		SeverityNumber:    int(record.Severity),
		Body:              jsonValue(record.Body),
	}

	if record.SeverityText != "" {
		out.Severity = record.SeverityText
	} else if record.Severity != telemetry.SeverityUndefined {
		out.Severity = record.Severity.Text()
	}

	if len(record.Attributes) > 0 {
		out.Attributes = make(map[string]any, len(record.Attributes))
		for _, pair := range record.Attributes {
			out.Attributes[pair.Key] = jsonValue(pair.Value)
		}
	}

	if record.TraceContext != nil {
		out.TraceID = record.TraceContext.TraceID.String()
		out.SpanID = record.TraceContext.SpanID.String()
	}

	out.Scope = map[string]string{"name": entry.Scope.Name}
	if entry.Scope.Version != "" {
		out.Scope["version"] = entry.Scope.Version
	}

	if e.resource.Len() > 0 {
		out.Resource = make(map[string]any, e.resource.Len())
		for _, pair := range e.resource.Attributes() {
			out.Resource[pair.Key] = jsonValue(pair.Value)
		}
	}

	return out
}

func jsonValue(value telemetry.Value) any {
	switch value.Kind() {
	case telemetry.KindBool:
		return value.AsBool()
	case telemetry.KindInt64:
		return value.AsInt64()
	case telemetry.KindFloat64:
		return value.AsFloat64()
	case telemetry.KindString:
		return value.AsString()
	case telemetry.KindBytes:
		return value.AsBytes()
	case telemetry.KindList:
		items := make([]any, len(value.AsList()))
		for i, item := range value.AsList() {
			items[i] = jsonValue(item)
		}

		return items
	case telemetry.KindMap:
		pairs := make(map[string]any, len(value.AsMap()))
		for _, pair := range value.AsMap() {
			pairs[pair.Key] = jsonValue(pair.Value)
		}

		return pairs
	default:
		return nil
	}
}
