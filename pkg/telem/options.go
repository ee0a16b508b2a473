package telem

import (
	"context"

	"github.com/hyp3rd/telem/pkg/config"
	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/logging"
	"github.com/hyp3rd/telem/pkg/processor"
)

// Option mutates initialization settings.
type Option func(*options)

type options struct {
	overrideConfig   *config.Config
	loaders          []config.Loader
	logger           logging.Adapter
	loggerOverride   bool
	watchConfig      bool
	exporterOverride exporter.Exporter
	extraProcessors  []processor.Processor
}

func defaultOptions() options {
	return options{
		loaders: []config.Loader{
			config.FileLoader{},
			config.EnvLoader{},
		},
		logger:      nil,
		watchConfig: false,
	}
}

func (o options) loadConfig(ctx context.Context) (config.Config, error) {
	if o.overrideConfig != nil {
		err := config.Validate(*o.overrideConfig)
		if err != nil {
			return config.Config{}, err
		}

		return *o.overrideConfig, nil
	}

	return config.Load(ctx, o.loaders...)
}

// WithConfig provides a fully resolved configuration and bypasses loaders.
func WithConfig(cfg config.Config) Option {
	return func(opt *options) {
		opt.overrideConfig = &cfg
	}
}

// WithLoaders replaces the default loader chain.
func WithLoaders(loaders ...config.Loader) Option {
	return func(opt *options) {
		opt.loaders = append([]config.Loader{}, loaders...)
	}
}

// WithLogger specifies the logging adapter used for pipeline diagnostics.
func WithLogger(adapter logging.Adapter) Option {
	return func(opt *options) {
		opt.logger = adapter
		opt.loggerOverride = true
	}
}

// WithConfigWatcher toggles file-based config hot reload. Disabled by
// default; a reload rebuilds the whole pipeline and shuts the old one down.
func WithConfigWatcher(enabled bool) Option {
	return func(opt *options) {
		opt.watchConfig = enabled
	}
}

// WithExporter bypasses the configured exporter kind and uses exp instead.
func WithExporter(exp exporter.Exporter) Option {
	return func(opt *options) {
		opt.exporterOverride = exp
	}
}

// WithProcessors registers additional processors ahead of the export
// processor; they observe and may mutate every record before it is exported.
func WithProcessors(procs ...processor.Processor) Option {
	return func(opt *options) {
		opt.extraProcessors = append(opt.extraProcessors, procs...)
	}
}

func (o options) fileWatcherPath() string {
	for _, loader := range o.loaders {
		if fl, ok := loader.(config.FileLoader); ok {
			if fl.Path != "" {
				return fl.Path
			}

			return "telem.yaml"
		}
	}

	return ""
}
