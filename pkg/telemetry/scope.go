package telemetry

// Scope identifies the instrumentation component that produced a record.
// Scopes are immutable after creation and shared by value through the
// pipeline.
type Scope struct {
	Name      string
	Version   string
	SchemaURL string
}

// NewScope returns a scope for the named producer.
func NewScope(name, version string) Scope {
	return Scope{Name: name, Version: version}
}
