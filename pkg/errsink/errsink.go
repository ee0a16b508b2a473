// Package errsink provides the pipeline error taxonomy and the process-wide
// fallback sink for errors that have no synchronous caller to return to:
// dropped records, tick-triggered export failures, and similar asynchronous
// outcomes.
package errsink

import (
	"context"
	"sync"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/pkg/logging"
)

// Taxonomy sentinels. Wrap them with ewrap to add context; match them with
// errors.Is.
var (
	// ErrQueueFull signals a backpressure drop: the bounded queue was full at
	// enqueue time and the record was discarded instead of blocking.
	ErrQueueFull = ewrap.New("telemetry queue full")

	// ErrExportTimeout signals that an exporter exceeded its deadline and the
	// in-flight batch was discarded.
	ErrExportTimeout = ewrap.New("export timed out")

	// ErrAlreadyShutdown signals an operation attempted after the processor
	// terminated.
	ErrAlreadyShutdown = ewrap.New("processor already shut down")

	// ErrChannelClosed signals an internal protocol violation: the worker went
	// away without answering.
	ErrChannelClosed = ewrap.New("processor worker gone")
)

// Handler receives errors reported through the sink.
type Handler interface {
	Handle(err error)
}

// HandlerFunc adapts ordinary functions into Handler.
type HandlerFunc func(err error)

// Handle implements Handler.
func (hf HandlerFunc) Handle(err error) {
	hf(err)
}

//nolint:gochecknoglobals // the sink is deliberately process-wide; see package doc.
var (
	mu      sync.RWMutex
	current Handler = loggingHandler{adapter: logging.NewSlogAdapter(nil)}
)

// Handle reports err to the current sink. Nil errors are ignored. Handle never
// panics and never blocks the caller beyond the handler itself.
func Handle(err error) {
	if err == nil {
		return
	}

	mu.RLock()
	handler := current
	mu.RUnlock()

	if handler != nil {
		handler.Handle(err)
	}
}

// SetHandler replaces the process-wide sink. Passing nil silences the sink.
func SetHandler(handler Handler) {
	mu.Lock()
	defer mu.Unlock()

	current = handler
}

// SetLogger routes sink errors to the given logging adapter.
func SetLogger(adapter logging.Adapter) {
	if adapter == nil {
		SetHandler(nil)

		return
	}

	SetHandler(loggingHandler{adapter: adapter})
}

// Reset restores the default logging sink.
func Reset() {
	SetHandler(loggingHandler{adapter: logging.NewSlogAdapter(nil)})
}

type loggingHandler struct {
	adapter logging.Adapter
}

func (h loggingHandler) Handle(err error) {
	h.adapter.Error(context.Background(), err, "telemetry pipeline error")
}
