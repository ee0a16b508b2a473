// Package telem bootstraps a telemetry pipeline from configuration sources
// and manages its lifecycle, including optional rebuild on config change.
package telem

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyp3rd/ewrap"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hyp3rd/telem/internal/constants"
	"github.com/hyp3rd/telem/pkg/config"
	"github.com/hyp3rd/telem/pkg/errsink"
	"github.com/hyp3rd/telem/pkg/logging"
	"github.com/hyp3rd/telem/pkg/pipeline"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// Client owns the active pipeline and useful helpers around it.
type Client struct {
	mu          sync.RWMutex
	pipeline    *pipeline.Pipeline
	cfg         config.Config
	opts        options
	logger      logging.Adapter
	watchCancel context.CancelFunc
	startTime   time.Time
	lastReload  time.Time
	reloadCount int64
}

// Init bootstraps a pipeline from configuration sources. Callers must invoke
// Shutdown when finished, or buffered records are lost on process exit.
func Init(ctx context.Context, opts ...Option) (*Client, error) {
	settings := defaultOptions()
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := settings.loadConfig(ctx)
	if err != nil {
		return nil, ewrap.Wrap(err, "load config")
	}

	logger := settings.logger
	if !settings.loggerOverride {
		logger = logging.FromConfig(cfg.Logging)
	}

	if logger == nil {
		logger = logging.NewNoopAdapter()
	}

	settings.logger = logger
	errsink.SetLogger(logger)

	pipe, err := buildPipeline(cfg, settings)
	if err != nil {
		return nil, ewrap.Wrap(err, "build pipeline")
	}

	client := &Client{
		pipeline:  pipe,
		cfg:       cfg,
		opts:      settings,
		logger:    logger,
		startTime: time.Now().UTC(),
	}

	err = client.startConfigWatcher(ctx)
	if err != nil {
		client.logger.Error(ctx, err, "config watcher disabled")
	}

	return client, nil
}

// Shutdown flushes telemetry, stops watchers, and releases resources.
func (c *Client) Shutdown(ctx context.Context) error {
	if c.watchCancel != nil {
		c.watchCancel()
	}

	return c.Pipeline().Shutdown(ctx)
}

// ForceFlush synchronously drains everything buffered in the pipeline.
func (c *Client) ForceFlush(ctx context.Context) error {
	return c.Pipeline().ForceFlush(ctx)
}

// Pipeline exposes the active pipeline for advanced integrations.
func (c *Client) Pipeline() *pipeline.Pipeline {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.pipeline
}

// Logger returns a record front end bound to the named scope. The logger
// follows pipeline swaps: records always reach the active pipeline.
func (c *Client) Logger(name, version string) *Logger {
	return &Logger{client: c, scope: telemetry.NewScope(name, version)}
}

// Config returns the active configuration snapshot.
func (c *Client) Config() config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cfg
}

// Logger is a scope-bound record front end that follows pipeline swaps.
type Logger struct {
	client *Client
	scope  telemetry.Scope
}

// Enabled reports whether the active chain wants an event of this level.
func (l *Logger) Enabled(level telemetry.Severity, eventName string) bool {
	return l.client.Pipeline().Logger(l.scope).Enabled(level, eventName)
}

// Emit hands the record to the active pipeline.
func (l *Logger) Emit(ctx context.Context, record *telemetry.Record) {
	l.client.Pipeline().Logger(l.scope).Emit(ctx, record)
}

// Log builds and emits a record from a severity, body, and attributes.
func (l *Logger) Log(ctx context.Context, level telemetry.Severity, body telemetry.Value, attrs ...telemetry.KeyValue) {
	l.client.Pipeline().Logger(l.scope).Log(ctx, level, body, attrs...)
}

func (c *Client) startConfigWatcher(ctx context.Context) error {
	if !c.opts.watchConfig {
		return nil
	}

	path := c.opts.fileWatcherPath()
	if path == "" {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ewrap.Wrap(err, "resolve config path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ewrap.Wrap(err, "create config watcher")
	}

	dir := filepath.Dir(abs)

	err = watcher.Add(dir)
	if err != nil {
		closeErr := watcher.Close()
		if closeErr != nil {
			c.logger.Error(ctx, closeErr, "close config watcher after add failure")
		}

		return ewrap.Wrap(err, "watch config directory")
	}

	ctx, cancel := context.WithCancel(ctx)

	c.watchCancel = cancel
	go c.watchLoop(ctx, watcher, abs)

	return nil
}

// watchLoop monitors configuration changes and triggers pipeline rebuilds.
func (c *Client) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string) {
	defer func() {
		closeErr := watcher.Close()
		if closeErr != nil {
			c.logger.Error(ctx, closeErr, "close config watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Name != target {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			c.logger.Info(ctx, "configuration change detected", attribute.String("path", target))
			c.rebuildPipeline(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			c.logger.Error(ctx, err, "config watcher error")
		}
	}
}

func (c *Client) rebuildPipeline(ctx context.Context) {
	cfg, err := c.opts.loadConfig(ctx)
	if err != nil {
		c.logger.Error(ctx, err, "reload config failed")

		return
	}

	if !c.opts.loggerOverride {
		if logger := logging.FromConfig(cfg.Logging); logger != nil {
			c.logger = logger
			c.opts.logger = logger
			errsink.SetLogger(logger)
		}
	}

	pipe, err := buildPipeline(cfg, c.opts)
	if err != nil {
		c.logger.Error(ctx, err, "pipeline rebuild failed")

		return
	}

	c.swapPipeline(ctx, pipe, cfg)
	c.logger.Info(ctx, "pipeline reloaded")
}

func (c *Client) swapPipeline(ctx context.Context, next *pipeline.Pipeline, cfg config.Config) {
	c.mu.Lock()
	old := c.pipeline
	c.pipeline = next
	c.cfg = cfg
	c.lastReload = time.Now().UTC()
	c.reloadCount++
	c.mu.Unlock()

	if old != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, constants.DefaultShutdownTimeout)
		defer cancel()

		err := old.Shutdown(shutdownCtx)
		if err != nil {
			c.logger.Error(shutdownCtx, err, "shutdown previous pipeline")
		}
	}
}
