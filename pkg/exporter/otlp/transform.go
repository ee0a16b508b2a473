package otlp

import (
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"

	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// RequestFromBatch converts a batch into an OTLP logs export request.
// Entries are grouped per scope, preserving first-seen scope order and record
// order within each scope.
func RequestFromBatch(batch []exporter.Entry, resource *telemetry.Resource) *collogspb.ExportLogsServiceRequest {
	scopeLogs := make([]*logspb.ScopeLogs, 0, 1)
	byScope := make(map[telemetry.Scope]*logspb.ScopeLogs)

	for _, entry := range batch {
		group, ok := byScope[entry.Scope]
		if !ok {
			group = &logspb.ScopeLogs{
				Scope:     toScope(entry.Scope),
				SchemaUrl: entry.Scope.SchemaURL,
			}
			byScope[entry.Scope] = group
			scopeLogs = append(scopeLogs, group)
		}

		group.LogRecords = append(group.LogRecords, toLogRecord(entry.Record))
	}

	return &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{
			{
				Resource:  toResource(resource),
				ScopeLogs: scopeLogs,
			},
		},
	}
}

func toScope(scope telemetry.Scope) *commonpb.InstrumentationScope {
	return &commonpb.InstrumentationScope{
		Name:    scope.Name,
		Version: scope.Version,
	}
}

func toResource(resource *telemetry.Resource) *resourcepb.Resource {
	if resource.Len() == 0 {
		return nil
	}

	return &resourcepb.Resource{
		Attributes: toKeyValues(resource.Attributes()),
	}
}

func toLogRecord(record telemetry.Record) *logspb.LogRecord {
	out := &logspb.LogRecord{
		SeverityNumber: logspb.SeverityNumber(record.Severity),
		SeverityText:   record.SeverityText,
		Body:           toAnyValue(record.Body),
		Attributes:     toKeyValues(record.Attributes),
	}

	if !record.Timestamp.IsZero() {
		out.TimeUnixNano = uint64(record.Timestamp.UnixNano())
	}

	if !record.ObservedTimestamp.IsZero() {
		out.ObservedTimeUnixNano = uint64(record.ObservedTimestamp.UnixNano())
	}

	if record.TraceContext != nil {
		traceID := record.TraceContext.TraceID
		spanID := record.TraceContext.SpanID
		out.TraceId = traceID[:]
		out.SpanId = spanID[:]
		out.Flags = uint32(record.TraceContext.TraceFlags)
	}

	return out
}

func toKeyValues(pairs []telemetry.KeyValue) []*commonpb.KeyValue {
	if len(pairs) == 0 {
		return nil
	}

	out := make([]*commonpb.KeyValue, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, &commonpb.KeyValue{
			Key:   pair.Key,
			Value: toAnyValue(pair.Value),
		})
	}

	return out
}

func toAnyValue(value telemetry.Value) *commonpb.AnyValue {
	switch value.Kind() {
	case telemetry.KindBool:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: value.AsBool()}}
	case telemetry.KindInt64:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: value.AsInt64()}}
	case telemetry.KindFloat64:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: value.AsFloat64()}}
	case telemetry.KindString:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: value.AsString()}}
	case telemetry.KindBytes:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_BytesValue{BytesValue: value.AsBytes()}}
	case telemetry.KindList:
		items := make([]*commonpb.AnyValue, 0, len(value.AsList()))
		for _, item := range value.AsList() {
			items = append(items, toAnyValue(item))
		}

		return &commonpb.AnyValue{
			Value: &commonpb.AnyValue_ArrayValue{ArrayValue: &commonpb.ArrayValue{Values: items}},
		}
	case telemetry.KindMap:
		return &commonpb.AnyValue{
			Value: &commonpb.AnyValue_KvlistValue{KvlistValue: &commonpb.KeyValueList{Values: toKeyValues(value.AsMap())}},
		}
	default:
		return nil
	}
}
