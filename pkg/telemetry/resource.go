package telemetry

// Resource is a static key-value set describing the emitting process. It is
// set once on a pipeline and broadcast to processors and exporters as owned
// snapshots; no shared mutable resource object ever exists.
type Resource struct {
	attrs []KeyValue
}

// NewResource builds a resource from attribute pairs. Later occurrences of a
// key replace earlier ones; first-occurrence order is preserved.
func NewResource(attrs ...KeyValue) *Resource {
	deduped := make([]KeyValue, 0, len(attrs))
	index := make(map[string]int, len(attrs))

	for _, pair := range attrs {
		if at, ok := index[pair.Key]; ok {
			deduped[at] = pair

			continue
		}

		index[pair.Key] = len(deduped)
		deduped = append(deduped, pair)
	}

	return &Resource{attrs: deduped}
}

// Attributes returns the resource attributes in order. The returned slice is
// shared; callers must treat it as read-only.
func (r *Resource) Attributes() []KeyValue {
	if r == nil {
		return nil
	}

	return r.attrs
}

// Len returns the number of attributes.
func (r *Resource) Len() int {
	if r == nil {
		return 0
	}

	return len(r.attrs)
}

// Get returns the value stored under key and whether it is present.
func (r *Resource) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}

	for _, pair := range r.attrs {
		if pair.Key == key {
			return pair.Value, true
		}
	}

	return Value{}, false
}

// Clone returns an owned deep copy, suitable for handing across goroutines.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}

	attrs := make([]KeyValue, len(r.attrs))
	for i, pair := range r.attrs {
		attrs[i] = KeyValue{Key: pair.Key, Value: pair.Value.Clone()}
	}

	return &Resource{attrs: attrs}
}

// Merge returns a new resource with other's attributes layered over r.
func (r *Resource) Merge(other *Resource) *Resource {
	if other == nil || other.Len() == 0 {
		return r.Clone()
	}

	if r == nil || len(r.attrs) == 0 {
		return other.Clone()
	}

	combined := make([]KeyValue, 0, len(r.attrs)+len(other.attrs))
	combined = append(combined, r.attrs...)
	combined = append(combined, other.attrs...)

	return NewResource(combined...)
}
