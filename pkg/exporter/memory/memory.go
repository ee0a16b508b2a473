// Package memory provides an in-memory capture exporter for tests and
// examples: batches are appended to a slice instead of leaving the process.
package memory

import (
	"context"
	"sync"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Exporter collects every exported entry. All methods are safe for
// concurrent use.
type Exporter struct {
	mu       sync.Mutex
	entries  []exporter.Entry
	batches  int
	resource *telemetry.Resource
	shutdown bool
}

var _ exporter.Exporter = (*Exporter)(nil)

// New returns an empty capture exporter.
func New() *Exporter {
	return &Exporter{}
}

// Export appends the batch to the captured entries.
func (e *Exporter) Export(_ context.Context, batch []exporter.Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.shutdown {
		return ewrap.New("memory exporter shut down")
	}

	e.entries = append(e.entries, batch...)
	e.batches++

	return nil
}

// Shutdown stops further captures. Idempotent; captured entries remain
// readable.
func (e *Exporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.shutdown = true

	return nil
}

// SetResource records the latest resource snapshot.
func (e *Exporter) SetResource(resource *telemetry.Resource) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resource = resource
}

// Entries returns a copy of everything captured so far.
func (e *Exporter) Entries() []exporter.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]exporter.Entry, len(e.entries))
	copy(out, e.entries)

	return out
}

// Len returns the number of captured entries.
func (e *Exporter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.entries)
}

// Batches returns how many Export calls carried data.
func (e *Exporter) Batches() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.batches
}

// Resource returns the last snapshot delivered via SetResource.
func (e *Exporter) Resource() *telemetry.Resource {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.resource
}

// Reset discards captured entries but keeps the exporter usable.
func (e *Exporter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.entries = nil
	e.batches = 0
}
