package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hyp3rd/telem/pkg/config"
)

// FromConfig builds an Adapter from logging configuration.
func FromConfig(cfg config.LoggingConfig) Adapter {
	base := buildBaseAdapter(cfg)

	return applyLevelFilter(base, cfg.Level)
}

func buildBaseAdapter(cfg config.LoggingConfig) Adapter {
	switch strings.ToLower(cfg.Adapter) {
	case "none":
		return NewNoopAdapter()
	case "zap":
		logger, err := newZapLogger(cfg)
		if err == nil {
			return NewZapAdapter(logger)
		}
	case "zerolog":
		return NewZerologAdapter(zerolog.New(os.Stderr).With().Timestamp().Logger())
	default:
		return newSlogFromConfig(cfg)
	}

	return newSlogFromConfig(cfg)
}

func newSlogFromConfig(cfg config.LoggingConfig) Adapter {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slogLevel(cfg.Level),
	}
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return NewSlogAdapter(slog.New(handler))
}

func newZapLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapLevel(cfg.Level))
	configZap := zap.NewProductionConfig()
	configZap.Level = level

	switch strings.ToLower(cfg.Format) {
	case "text":
		configZap.Encoding = "console"
	default:
		configZap.Encoding = "json"
	}

	zapLogger, err := configZap.Build()
	if err != nil {
		return nil, ewrap.Wrap(err, "build zap logger")
	}

	return zapLogger, nil
}

// levelRank orders the supported diagnostic levels for filtering.
func levelRank(level string) int {
	switch strings.ToLower(level) {
	case "debug":
		return 0
	case "warn", "warning":
		return 2
	case "error":
		return 3
	default:
		return 1
	}
}

func applyLevelFilter(adapter Adapter, level string) Adapter {
	if adapter == nil {
		return NewNoopAdapter()
	}

	rank := levelRank(level)
	if rank == 0 {
		return adapter
	}

	return leveledAdapter{inner: adapter, min: rank}
}

type leveledAdapter struct {
	inner Adapter
	min   int
}

func (a leveledAdapter) Debug(ctx context.Context, msg string, attrs ...attribute.KeyValue) {
	if a.min <= 0 {
		a.inner.Debug(ctx, msg, attrs...)
	}
}

func (a leveledAdapter) Info(ctx context.Context, msg string, attrs ...attribute.KeyValue) {
	if a.min <= 1 {
		a.inner.Info(ctx, msg, attrs...)
	}
}

func (a leveledAdapter) Warn(ctx context.Context, msg string, attrs ...attribute.KeyValue) {
	if a.min <= 2 {
		a.inner.Warn(ctx, msg, attrs...)
	}
}

func (a leveledAdapter) Error(ctx context.Context, err error, msg string, attrs ...attribute.KeyValue) {
	a.inner.Error(ctx, err, msg, attrs...)
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func zapLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "error":
		return zapcore.ErrorLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
