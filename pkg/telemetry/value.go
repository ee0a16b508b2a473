package telemetry

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies the variant stored in a Value.
type ValueKind int

// Value variants. A Value holds exactly one of these at a time.
const (
	KindEmpty ValueKind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindList
	KindMap
)

// Value is a recursive tagged value carried in a record body or attribute.
// The zero Value is empty.
type Value struct {
	kind   ValueKind
	intv   int64
	floatv float64
	boolv  bool
	strv   string
	bytesv []byte
	listv  []Value
	mapv   []KeyValue
}

// KeyValue is a single ordered attribute pair.
type KeyValue struct {
	Key   string
	Value Value
}

// BoolValue returns a Value holding a boolean.
func BoolValue(v bool) Value {
	return Value{kind: KindBool, boolv: v}
}

// IntValue returns a Value holding an int64.
func IntValue(v int64) Value {
	return Value{kind: KindInt64, intv: v}
}

// FloatValue returns a Value holding a float64.
func FloatValue(v float64) Value {
	return Value{kind: KindFloat64, floatv: v}
}

// StringValue returns a Value holding a string.
func StringValue(v string) Value {
	return Value{kind: KindString, strv: v}
}

// BytesValue returns a Value holding a byte slice. The slice is retained, not
// copied; callers hand over ownership.
func BytesValue(v []byte) Value {
	return Value{kind: KindBytes, bytesv: v}
}

// ListValue returns a Value holding an ordered list of values.
func ListValue(values ...Value) Value {
	return Value{kind: KindList, listv: values}
}

// MapValue returns a Value holding an ordered set of key-value pairs.
func MapValue(pairs ...KeyValue) Value {
	return Value{kind: KindMap, mapv: pairs}
}

// Kind reports which variant the value holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Empty reports whether the value holds nothing.
func (v Value) Empty() bool {
	return v.kind == KindEmpty
}

// AsBool returns the boolean variant, or false for other kinds.
func (v Value) AsBool() bool {
	return v.boolv
}

// AsInt64 returns the integer variant, or zero for other kinds.
func (v Value) AsInt64() int64 {
	return v.intv
}

// AsFloat64 returns the float variant, or zero for other kinds.
func (v Value) AsFloat64() float64 {
	return v.floatv
}

// AsString returns the string variant, or the empty string for other kinds.
func (v Value) AsString() string {
	return v.strv
}

// AsBytes returns the bytes variant, or nil for other kinds.
func (v Value) AsBytes() []byte {
	return v.bytesv
}

// AsList returns the list variant, or nil for other kinds.
func (v Value) AsList() []Value {
	return v.listv
}

// AsMap returns the map variant, or nil for other kinds.
func (v Value) AsMap() []KeyValue {
	return v.mapv
}

// Clone returns a deep copy. Bytes, lists, and maps get fresh backing storage
// so mutations of the copy never alias the original.
func (v Value) Clone() Value {
	switch v.kind {
	case KindBytes:
		cloned := make([]byte, len(v.bytesv))
		copy(cloned, v.bytesv)

		return Value{kind: KindBytes, bytesv: cloned}
	case KindList:
		cloned := make([]Value, len(v.listv))
		for i, item := range v.listv {
			cloned[i] = item.Clone()
		}

		return Value{kind: KindList, listv: cloned}
	case KindMap:
		cloned := make([]KeyValue, len(v.mapv))
		for i, pair := range v.mapv {
			cloned[i] = KeyValue{Key: pair.Key, Value: pair.Value.Clone()}
		}

		return Value{kind: KindMap, mapv: cloned}
	default:
		return v
	}
}

// Equal reports deep equality of two values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindEmpty:
		return true
	case KindBool:
		return v.boolv == other.boolv
	case KindInt64:
		return v.intv == other.intv
	case KindFloat64:
		return v.floatv == other.floatv
	case KindString:
		return v.strv == other.strv
	case KindBytes:
		return string(v.bytesv) == string(other.bytesv)
	case KindList:
		if len(v.listv) != len(other.listv) {
			return false
		}

		for i := range v.listv {
			if !v.listv[i].Equal(other.listv[i]) {
				return false
			}
		}

		return true
	case KindMap:
		if len(v.mapv) != len(other.mapv) {
			return false
		}

		for i := range v.mapv {
			if v.mapv[i].Key != other.mapv[i].Key || !v.mapv[i].Value.Equal(other.mapv[i].Value) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// String renders the value for debugging output.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return "<empty>"
	case KindBool:
		return strconv.FormatBool(v.boolv)
	case KindInt64:
		return strconv.FormatInt(v.intv, 10)
	case KindFloat64:
		return strconv.FormatFloat(v.floatv, 'g', -1, 64)
	case KindString:
		return v.strv
	case KindBytes:
		return fmt.Sprintf("%x", v.bytesv)
	case KindList:
		parts := make([]string, len(v.listv))
		for i, item := range v.listv {
			parts[i] = item.String()
		}

		return "[" + strings.Join(parts, ",") + "]"
	case KindMap:
		parts := make([]string, len(v.mapv))
		for i, pair := range v.mapv {
			parts[i] = pair.Key + ":" + pair.Value.String()
		}

		return "{" + strings.Join(parts, ",") + "}"
	default:
		return "<unknown>"
	}
}
