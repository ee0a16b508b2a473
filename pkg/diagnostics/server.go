// Package diagnostics provides an HTTP endpoint exposing the state of the
// telemetry pipeline for operational inspection.
package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/internal/constants"
)

// Config holds the diagnostics server settings.
type Config struct {
	// HTTPAddr is the listen address, e.g. "127.0.0.1:8777".
	HTTPAddr string

	// AuthToken, when set, requires a matching bearer token on every request.
	AuthToken string
}

// Snapshot captures the pipeline state served by the status endpoint.
type Snapshot struct {
	ServiceName       string       `json:"service_name"`
	ServiceVersion    string       `json:"service_version"`
	Environment       string       `json:"environment"`
	Exporter          ExporterInfo `json:"exporter"`
	Batch             BatchInfo    `json:"batch"`
	StartTime         time.Time    `json:"start_time"`
	LastReloadTime    time.Time    `json:"last_reload_time,omitzero"`
	ConfigReloadCount int64        `json:"config_reload_count"`
	Timestamp         time.Time    `json:"timestamp"`
}

// ExporterInfo describes the configured export destination.
type ExporterInfo struct {
	Kind     string `json:"kind"`
	Endpoint string `json:"endpoint,omitempty"`
}

// BatchInfo describes the batching processor settings in effect.
type BatchInfo struct {
	Enabled            bool  `json:"enabled"`
	MaxQueueSize       int   `json:"max_queue_size"`
	ScheduleDelayMs    int64 `json:"schedule_delay_ms"`
	MaxExportBatchSize int   `json:"max_export_batch_size"`
	ExportTimeoutMs    int64 `json:"export_timeout_ms"`
}

// SnapshotProvider supplies pipeline snapshots.
type SnapshotProvider interface {
	Snapshot() Snapshot
}

// Server exposes pipeline status over HTTP.
type Server struct {
	cfg      Config
	provider SnapshotProvider

	server *http.Server
	mu     sync.Mutex
	start  sync.Once
	stop   sync.Once
}

// NewServer constructs a diagnostics server.
func NewServer(cfg Config, provider SnapshotProvider) *Server {
	return &Server{
		cfg:      cfg,
		provider: provider,
	}
}

// Start begins serving the status endpoint until the supplied context is
// canceled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.HTTPAddr == "" {
		return ewrap.New("diagnostics http addr is required")
	}

	var startErr error

	s.start.Do(func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/telem/status", s.HandleStatus)

		s.server = &http.Server{
			Addr:              s.cfg.HTTPAddr,
			Handler:           mux,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		}

		lc := net.ListenConfig{}

		ln, err := lc.Listen(ctx, "tcp", s.cfg.HTTPAddr)
		if err != nil {
			startErr = ewrap.Wrap(err, "listen diagnostics")

			return
		}

		go func() {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
			defer cancel()

			_ = s.Shutdown(shutdownCtx)
		}()

		go func() {
			err := s.server.Serve(ln)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				_ = ewrap.Wrap(err, "diagnostics server stopped")
			}
		}()
	})

	return startErr
}

// Shutdown stops the diagnostics server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.stop.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.server == nil {
			return
		}

		ctxShutdown, cancel := context.WithTimeout(ctx, constants.DefaultShutdownTimeout)
		defer cancel()

		shutdownErr = s.server.Shutdown(ctxShutdown)
		s.server = nil
	})

	if shutdownErr != nil {
		return ewrap.Wrap(shutdownErr, "shutdown diagnostics server")
	}

	return nil
}

// HandleStatus serves the /telem/status endpoint with a JSON snapshot of the
// pipeline state.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthToken != "" {
		if !validAuth(r.Header.Get("Authorization"), s.cfg.AuthToken) {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}
	}

	snapshot := s.provider.Snapshot()
	snapshot.Timestamp = time.Now().UTC()

	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(snapshot)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func validAuth(header, token string) bool {
	const prefix = "Bearer "

	if header == "" {
		return false
	}

	if !strings.HasPrefix(header, prefix) {
		return false
	}

	return strings.TrimSpace(header[len(prefix):]) == token
}
