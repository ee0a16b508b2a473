// Package httplog provides HTTP middleware that emits one telemetry record
// per handled request through the export pipeline.
package httplog

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Emitter receives the completed request records. Both pipeline.Logger and
// telem.Logger satisfy it.
type Emitter interface {
	Emit(ctx context.Context, record *telemetry.Record)
}

// Middleware wraps HTTP handlers and emits an access record per request.
type Middleware struct {
	emitter       Emitter
	ignoredRoutes map[string]struct{}
}

// Option mutates middleware construction.
type Option func(*Middleware)

// WithIgnoredRoutes suppresses records for exact-match request paths, such as
// health and readiness probes.
func WithIgnoredRoutes(routes ...string) Option {
	return func(m *Middleware) {
		for _, route := range routes {
			route = strings.TrimSpace(route)
			if route == "" {
				continue
			}

			m.ignoredRoutes[route] = struct{}{}
		}
	}
}

// NewMiddleware builds a request-logging middleware emitting through emitter.
func NewMiddleware(emitter Emitter, opts ...Option) (*Middleware, error) {
	if emitter == nil {
		return nil, ewrap.New("emitter is required")
	}

	m := &Middleware{
		emitter:       emitter,
		ignoredRoutes: map[string]struct{}{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Handler wraps next so every non-ignored request produces a record carrying
// the method, route, status, duration, and client address. The record is
// emitted with the request context, so trace linkage is captured when the
// request carries an active span.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeFromRequest(r)
		if m.shouldIgnore(route) {
			next.ServeHTTP(w, r)

			return
		}

		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rr, r)

		duration := time.Since(start)

		record := &telemetry.Record{
			Timestamp: start,
			Severity:  severityFromStatus(rr.status),
			Body:      telemetry.StringValue(r.Method + " " + route),
			Attributes: []telemetry.KeyValue{
				{Key: "http.request.method", Value: telemetry.StringValue(r.Method)},
				{Key: "http.route", Value: telemetry.StringValue(route)},
				{Key: "http.response.status_code", Value: telemetry.IntValue(int64(rr.status))},
				{Key: "http.server.duration_ms", Value: telemetry.FloatValue(float64(duration.Microseconds()) / 1000)},
			},
		}

		if host := clientIP(r); host != "" {
			record.AddAttribute("client.address", telemetry.StringValue(host))
		}

		m.emitter.Emit(r.Context(), record)
	})
}

func (m *Middleware) shouldIgnore(route string) bool {
	_, ok := m.ignoredRoutes[route]

	return ok
}

func severityFromStatus(status int) telemetry.Severity {
	switch {
	case status >= http.StatusInternalServerError:
		return telemetry.SeverityError
	case status >= http.StatusBadRequest:
		return telemetry.SeverityWarn
	default:
		return telemetry.SeverityInfo
	}
}

func routeFromRequest(r *http.Request) string {
	if r == nil || r.URL == nil {
		return "/"
	}

	path := r.URL.Path
	if path == "" {
		return "/"
	}

	return path
}

func clientIP(r *http.Request) string {
	if r == nil || r.RemoteAddr == "" {
		return ""
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader records the status code and delegates to the underlying ResponseWriter.
func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Write delegates to the underlying ResponseWriter.
func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	if err != nil {
		return n, ewrap.Wrap(err, "write response")
	}

	return n, nil
}
